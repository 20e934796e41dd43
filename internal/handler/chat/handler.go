package chat

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/chatfront/backend/internal/model/catalog"
	"github.com/zhouzirui/chatfront/backend/internal/model/chat"
	chatService "github.com/zhouzirui/chatfront/backend/internal/service/chat"
	"github.com/zhouzirui/chatfront/backend/internal/view"
	"github.com/zhouzirui/chatfront/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
	models  catalog.Store
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, models catalog.Store) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		models:  models,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/models", h.handleListModels)
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Delete("/", h.handleDeleteSession)
		r.Get("/history", h.handleHistory)
		r.Post("/messages", h.handleSend)
		r.Post("/reset", h.handleReset)
	})
}

type historyResponse struct {
	SessionID string      `json:"sessionId"`
	Turns     []chat.Turn `json:"turns"`
}

type sendResponse struct {
	SessionID string      `json:"sessionId"`
	Reply     chat.Turn   `json:"reply"`
	Turns     []chat.Turn `json:"turns"`
}

type errorResponse struct {
	Error string      `json:"error"`
	Kind  string      `json:"kind,omitempty"`
	Turns []chat.Turn `json:"turns,omitempty"`
}

// handleListModels 列出可选模型
func (h *Handler) handleListModels(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"models":        h.models.List(),
		"hasCredential": h.chatSvc.HasCredential(),
	})
}

// handleCreateSession 创建会话
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Model  string `json:"model"`
		APIKey string `json:"apiKey"`
	}

	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.chatSvc.CreateSession(r.Context(), payload.Model, payload.APIKey)
	if err != nil {
		respondSessionError(w, err, nil)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session.Info())
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, session.Info())
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondSessionError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHistory 返回会话历史
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, historyResponse{
		SessionID: session.ID(),
		Turns:     session.History(),
	})
}

// handleSend 发送一条用户消息并返回模型回复
func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := session.Send(r.Context(), payload.Text)
	if err != nil {
		respondSessionError(w, err, session.History())
		return
	}

	utils.RespondJSON(w, http.StatusOK, sendResponse{
		SessionID: session.ID(),
		Reply:     chat.AssistantTurn(reply),
		Turns:     session.History(),
	})
}

// handleReset 清空会话并重建模型连接
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := session.Reset(r.Context()); err != nil {
		respondSessionError(w, err, session.History())
		return
	}

	utils.RespondJSON(w, http.StatusOK, historyResponse{
		SessionID: session.ID(),
		Turns:     session.History(),
	})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*chatService.Session, bool) {
	session, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondSessionError(w, err, nil)
		return nil, false
	}
	return session, true
}

// respondSessionError 根据错误类型映射 HTTP 状态码，失败时附带当前历史便于前端保留用户输入。
func respondSessionError(w http.ResponseWriter, err error, turns []chat.Turn) {
	if errors.Is(err, chatService.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	kind := chatService.KindOf(err)
	utils.RespondJSON(w, statusFor(kind), errorResponse{
		Error: view.Describe(err),
		Kind:  string(kind),
		Turns: turns,
	})
}

func statusFor(kind chatService.ErrorKind) int {
	switch kind {
	case chatService.KindConfiguration, chatService.KindInvalidInput:
		return http.StatusBadRequest
	case chatService.KindEndpointInit, chatService.KindRemoteCall:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
