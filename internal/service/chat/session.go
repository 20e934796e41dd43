package chat

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/chatfront/backend/internal/model/chat"
	"github.com/zhouzirui/chatfront/backend/internal/service/ai"
)

// Session pairs a transcript with the remote endpoint that holds the same
// conversation. Both are replaced together on Reset. Send and Reset are
// serialized by callMu so turns never interleave; mu only guards state, so
// History stays readable while a remote call is in flight.
type Session struct {
	callMu     sync.Mutex
	mu         sync.RWMutex
	id         string
	modelID    string
	credential string
	createdAt  time.Time
	factory    ai.Factory
	endpoint   ai.Endpoint
	transcript []chat.Turn
}

// Start validates the inputs, creates the endpoint and returns a session with
// an empty transcript.
func Start(ctx context.Context, modelID, credential string, factory ai.Factory) (*Session, error) {
	modelID = strings.TrimSpace(modelID)
	credential = strings.TrimSpace(credential)

	if credential == "" {
		return nil, newError(KindConfiguration, "api key is required", nil)
	}
	if modelID == "" {
		return nil, newError(KindConfiguration, "model id is required", nil)
	}
	if factory == nil {
		return nil, newError(KindConfiguration, "no endpoint factory configured", nil)
	}

	endpoint, err := factory(ctx, modelID, credential)
	if err != nil {
		return nil, newError(KindEndpointInit, "failed to initialize model "+modelID, err)
	}

	session := &Session{
		id:         uuid.NewString(),
		modelID:    modelID,
		credential: credential,
		createdAt:  time.Now().UTC(),
		factory:    factory,
		endpoint:   endpoint,
		transcript: make([]chat.Turn, 0, 16),
	}

	log.Printf("[chat] session started id=%s model=%s", session.id, modelID)
	return session, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// ModelID returns the model the session is bound to.
func (s *Session) ModelID() string { return s.modelID }

// CreatedAt returns when the session was started.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Send appends the user turn, forwards it and appends the reply. On a remote
// failure the user turn is kept and a RemoteCallError is returned.
func (s *Session) Send(ctx context.Context, userText string) (string, error) {
	if strings.TrimSpace(userText) == "" {
		return "", newError(KindInvalidInput, "message must not be empty", nil)
	}

	s.callMu.Lock()
	defer s.callMu.Unlock()

	s.mu.Lock()
	s.transcript = append(s.transcript, chat.UserTurn(userText))
	endpoint := s.endpoint
	s.mu.Unlock()

	reply, err := endpoint.SendTurn(ctx, userText)
	if err != nil {
		log.Printf("[chat] send failed session=%s model=%s: %v", s.id, s.modelID, err)
		return "", newError(KindRemoteCall, "model call failed", err)
	}

	s.mu.Lock()
	s.transcript = append(s.transcript, chat.AssistantTurn(reply))
	s.mu.Unlock()
	return reply, nil
}

// Reset replaces the endpoint and clears the transcript. If a new endpoint
// cannot be built, the session is left exactly as it was.
func (s *Session) Reset(ctx context.Context) error {
	s.callMu.Lock()
	defer s.callMu.Unlock()

	endpoint, err := s.factory(ctx, s.modelID, s.credential)
	if err != nil {
		return newError(KindEndpointInit, "failed to reinitialize model "+s.modelID, err)
	}

	s.mu.Lock()
	s.endpoint = endpoint
	s.transcript = make([]chat.Turn, 0, 16)
	s.mu.Unlock()

	log.Printf("[chat] session reset id=%s", s.id)
	return nil
}

// History returns a copy of the transcript in turn order.
func (s *Session) History() []chat.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]chat.Turn, len(s.transcript))
	copy(copied, s.transcript)
	return copied
}

// Info summarizes the session for listings.
func (s *Session) Info() chat.SessionInfo {
	s.mu.RLock()
	turns := len(s.transcript)
	s.mu.RUnlock()

	return chat.SessionInfo{
		ID:        s.id,
		Model:     s.modelID,
		Turns:     turns,
		CreatedAt: s.createdAt,
	}
}
