package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/chatfront/backend/internal/model/catalog"
	"github.com/zhouzirui/chatfront/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/chatfront/backend/internal/service/chat"
)

type stubEndpoint struct {
	err error
}

func (s *stubEndpoint) SendTurn(_ context.Context, text string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "reply: " + text, nil
}

func setupRouter(credential string, endpoint *stubEndpoint) (*chi.Mux, *chatservice.Service) {
	models := catalog.NewMemoryStore(catalog.FromIDs([]string{"model-a", "model-b"}, ""))
	factory := func(_ context.Context, modelID, _ string) (ai.Endpoint, error) {
		if _, ok := models.FindByID(modelID); !ok {
			return nil, ai.ErrUnknownModel
		}
		return endpoint, nil
	}
	chatSvc := chatservice.NewService(factory, "model-a", credential)
	handler := New(chatSvc, models)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, r http.Handler) string {
	t.Helper()
	resp := doJSON(r, http.MethodPost, "/session", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var info struct {
		ID    string `json:"id"`
		Model string `json:"model"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if info.Model != "model-a" {
		t.Fatalf("expected default model, got %s", info.Model)
	}
	return info.ID
}

func TestListModels(t *testing.T) {
	r, _ := setupRouter("server-key", &stubEndpoint{})
	resp := doJSON(r, http.MethodGet, "/models", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Models        []catalog.Model `json:"models"`
		HasCredential bool            `json:"hasCredential"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Models) != 2 || !body.HasCredential {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestCreateSessionWithoutCredential(t *testing.T) {
	r, _ := setupRouter("", &stubEndpoint{})
	resp := doJSON(r, http.MethodPost, "/session", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	resp = doJSON(r, http.MethodPost, "/session", map[string]string{"apiKey": "user-key"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 with caller key, got %d", resp.Code)
	}
}

func TestCreateSessionUnknownModel(t *testing.T) {
	r, _ := setupRouter("server-key", &stubEndpoint{})
	resp := doJSON(r, http.MethodPost, "/session", map[string]string{"model": "model-z"})
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte(`"kind":"endpoint_init"`)) {
		t.Fatalf("expected endpoint_init kind, got %s", resp.Body.String())
	}
}

func TestCreateSessionRejectsUnknownFields(t *testing.T) {
	r, _ := setupRouter("server-key", &stubEndpoint{})
	resp := doJSON(r, http.MethodPost, "/session", map[string]string{"temperature": "0.2"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSendAndHistory(t *testing.T) {
	r, _ := setupRouter("server-key", &stubEndpoint{})
	id := createSession(t, r)

	resp := doJSON(r, http.MethodPost, "/session/"+id+"/messages", map[string]string{"text": "Hello"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(r, http.MethodGet, "/session/"+id+"/history", nil)
	var history historyResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(history.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(history.Turns))
	}
	if history.Turns[1].Content != "reply: Hello" {
		t.Fatalf("unexpected reply: %s", history.Turns[1].Content)
	}
}

func TestSendFailureReturnsUserTurn(t *testing.T) {
	endpoint := &stubEndpoint{err: errors.New("quota exceeded")}
	r, _ := setupRouter("server-key", endpoint)
	id := createSession(t, r)

	resp := doJSON(r, http.MethodPost, "/session/"+id+"/messages", map[string]string{"text": "X"})
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Kind != "remote_call" {
		t.Fatalf("unexpected kind: %s", body.Kind)
	}
	if len(body.Turns) != 1 || body.Turns[0].Content != "X" {
		t.Fatalf("expected the user turn to be kept, got %+v", body.Turns)
	}
}

func TestSendBlankText(t *testing.T) {
	r, _ := setupRouter("server-key", &stubEndpoint{})
	id := createSession(t, r)

	resp := doJSON(r, http.MethodPost, "/session/"+id+"/messages", map[string]string{"text": " "})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestResetClearsHistory(t *testing.T) {
	r, _ := setupRouter("server-key", &stubEndpoint{})
	id := createSession(t, r)
	doJSON(r, http.MethodPost, "/session/"+id+"/messages", map[string]string{"text": "Hello"})

	resp := doJSON(r, http.MethodPost, "/session/"+id+"/reset", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var history historyResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(history.Turns) != 0 {
		t.Fatalf("expected empty history, got %d", len(history.Turns))
	}
}

func TestUnknownSession(t *testing.T) {
	r, _ := setupRouter("server-key", &stubEndpoint{})

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/session/missing"},
		{http.MethodGet, "/session/missing/history"},
		{http.MethodPost, "/session/missing/reset"},
		{http.MethodDelete, "/session/missing"},
	} {
		resp := doJSON(r, tc.method, tc.path, nil)
		if resp.Code != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404, got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestDeleteSession(t *testing.T) {
	r, svc := setupRouter("server-key", &stubEndpoint{})
	id := createSession(t, r)

	resp := doJSON(r, http.MethodDelete, "/session/"+id, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if svc.Count() != 0 {
		t.Fatalf("expected no sessions, got %d", svc.Count())
	}
}
