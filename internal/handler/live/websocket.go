package live

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/chatfront/backend/internal/model/chat"
	chatservice "github.com/zhouzirui/chatfront/backend/internal/service/chat"
	"github.com/zhouzirui/chatfront/backend/internal/view"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// Handler WebSocket 会话处理器：一个连接绑定一个会话。
type Handler struct {
	chatSvc     *chatservice.Service
	upgrader    websocket.Upgrader
	readTimeout time.Duration
}

// New 创建 WebSocket 处理器
func New(chatSvc *chatservice.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		readTimeout: readTimeout,
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// SendMessage is the payload of an inbound "send".
type SendMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorPayload describes a failed action. Turns carries the transcript after
// the failure so clients can show the kept user turn.
type ErrorPayload struct {
	Kind    string      `json:"kind,omitempty"`
	Message string      `json:"message"`
	Turns   []chat.Turn `json:"turns,omitempty"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.readTimeout))
		return nil
	})

	go pingLoop(ctx, conn)

	h.send(conn, sessionID, "history", session.History())

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}

		h.handleMessage(ctx, conn, session, &msg)
		// 模型调用期间不读取，pong 无法续期，处理完再刷新读超时
		conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	}
}

func (h *Handler) handleMessage(ctx context.Context, conn *websocket.Conn, session *chatservice.Session, msg *inboundMessage) {
	switch msg.Type {
	case "send":
		var payload SendMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			h.sendError(conn, session.ID(), ErrorPayload{Message: "invalid send payload"})
			return
		}
		reply, err := session.Send(ctx, payload.Text)
		if err != nil {
			h.sendSessionError(conn, session, err)
			return
		}
		h.send(conn, session.ID(), "reply", chat.AssistantTurn(reply))
	case "reset":
		if err := session.Reset(ctx); err != nil {
			h.sendSessionError(conn, session, err)
			return
		}
		h.send(conn, session.ID(), "reset", session.History())
	case "history":
		h.send(conn, session.ID(), "history", session.History())
	default:
		h.sendError(conn, session.ID(), ErrorPayload{Message: "unsupported message type: " + msg.Type})
	}
}

func (h *Handler) sendSessionError(conn *websocket.Conn, session *chatservice.Session, err error) {
	payload := ErrorPayload{
		Kind:    string(chatservice.KindOf(err)),
		Message: view.Describe(err),
	}
	if errors.Is(err, context.Canceled) {
		payload.Message = "request cancelled"
	}
	payload.Turns = session.History()
	h.sendError(conn, session.ID(), payload)
}

func (h *Handler) send(conn *websocket.Conn, sessionID, kind string, data interface{}) {
	msg := outgoingMessage{
		Type:      kind,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write %s failed: %v", kind, err)
	}
}

func (h *Handler) sendError(conn *websocket.Conn, sessionID string, payload ErrorPayload) {
	h.send(conn, sessionID, "error", payload)
}

// pingLoop 定期发送ping消息。WriteControl 可以与 WriteJSON 并发调用。
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
