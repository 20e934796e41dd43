package web

import (
	"bytes"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/chatfront/backend/internal/model/catalog"
	chatservice "github.com/zhouzirui/chatfront/backend/internal/service/chat"
	"github.com/zhouzirui/chatfront/backend/internal/view"
)

const sessionCookie = "chat_session"

// Options 控制页面文案。
type Options struct {
	Title       string
	Caption     string
	Placeholder string
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "Chatbot"
	}
	if o.Caption == "" {
		o.Caption = "A chatbot powered by a hosted language model"
	}
	if o.Placeholder == "" {
		o.Placeholder = "Ask me anything..."
	}
	return o
}

// Handler serves the browser chat page. Each browser is bound to one session
// through a cookie.
type Handler struct {
	chatSvc *chatservice.Service
	models  catalog.Store
	opts    Options
}

// New 创建网页处理器
func New(chatSvc *chatservice.Service, models catalog.Store, opts Options) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		models:  models,
		opts:    opts.withDefaults(),
	}
}

// RegisterRoutes 注册页面路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Route("/chat", func(r chi.Router) {
		r.Post("/send", h.handleSend)
		r.Post("/reset", h.handleReset)
		r.Post("/model", h.handleModel)
		r.Post("/key", h.handleKey)
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	// 只读页面不创建会话，第一次提交时才创建
	h.render(w, h.currentSession(r), "")
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	prompt := r.FormValue("prompt")
	session := h.currentSession(r)
	if session == nil {
		if !h.chatSvc.HasCredential() || strings.TrimSpace(prompt) == "" {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		created, err := h.chatSvc.CreateSession(r.Context(), "", "")
		if err != nil {
			h.render(w, nil, view.Describe(err))
			return
		}
		setSessionCookie(w, created.ID())
		session = created
	}

	tv := view.New(session)
	if err := tv.Submit(r.Context(), prompt); err != nil {
		h.render(w, session, tv.Notice())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	session := h.currentSession(r)
	if session == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	tv := view.New(session)
	if err := tv.Reset(r.Context()); err != nil {
		h.render(w, session, tv.Notice())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleModel(w http.ResponseWriter, r *http.Request) {
	modelID := r.FormValue("model")
	session := h.currentSession(r)
	if session == nil {
		if !h.chatSvc.HasCredential() {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		created, err := h.chatSvc.CreateSession(r.Context(), modelID, "")
		if err != nil {
			h.render(w, nil, view.Describe(err))
			return
		}
		setSessionCookie(w, created.ID())
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if modelID == session.ModelID() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	switched, err := h.chatSvc.SwitchModel(r.Context(), session.ID(), modelID)
	if err != nil {
		h.render(w, session, view.Describe(err))
		return
	}
	setSessionCookie(w, switched.ID())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleKey(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context(), "", r.FormValue("apiKey"))
	if err != nil {
		h.render(w, nil, view.Describe(err))
		return
	}

	if old := h.currentSession(r); old != nil {
		_ = h.chatSvc.DeleteSession(r.Context(), old.ID())
	}
	setSessionCookie(w, session.ID())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) currentSession(r *http.Request) *chatservice.Session {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	session, err := h.chatSvc.GetSession(r.Context(), cookie.Value)
	if err != nil {
		return nil
	}
	return session
}

func (h *Handler) render(w http.ResponseWriter, session *chatservice.Session, notice string) {
	data := pageData{
		Title:       h.opts.Title,
		Caption:     h.opts.Caption,
		Placeholder: h.opts.Placeholder,
		Notice:      notice,
		NeedsKey:    session == nil && !h.chatSvc.HasCredential(),
		CanChat:     session != nil || h.chatSvc.HasCredential(),
	}

	selected := h.chatSvc.DefaultModel()
	if session != nil {
		selected = session.ModelID()
		for _, line := range view.New(session).Lines() {
			data.Lines = append(data.Lines, lineData{
				Role:    string(line.Role),
				Label:   line.Label,
				Content: line.Content,
			})
		}
	}
	if data.CanChat {
		for _, m := range h.models.List() {
			data.Models = append(data.Models, modelOption{
				ID:       m.ID,
				Name:     m.Name,
				Selected: m.ID == selected,
			})
		}
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		log.Printf("[web] render failed: %v", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[web] write failed: %v", err)
	}
}

func setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
