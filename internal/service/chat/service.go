package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/zhouzirui/chatfront/backend/internal/model/chat"
	"github.com/zhouzirui/chatfront/backend/internal/service/ai"
)

// Service keeps one Session per logical conversation. Sessions are never
// shared between ids.
type Service struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	factory      ai.Factory
	defaultModel string
	credential   string
}

// NewService 创建会话注册表。credential 为服务端配置的默认 API Key，可以为空，
// 此时调用方必须在创建会话时提供。
func NewService(factory ai.Factory, defaultModel, credential string) *Service {
	return &Service{
		sessions:     make(map[string]*Session),
		factory:      factory,
		defaultModel: strings.TrimSpace(defaultModel),
		credential:   strings.TrimSpace(credential),
	}
}

// HasCredential reports whether sessions can start without a caller-supplied key.
func (s *Service) HasCredential() bool {
	return s.credential != ""
}

// DefaultModel returns the model used when none is requested.
func (s *Service) DefaultModel() string {
	return s.defaultModel
}

// CreateSession starts and registers a session. Blank modelID and credential
// fall back to the configured defaults.
func (s *Service) CreateSession(ctx context.Context, modelID, credential string) (*Session, error) {
	if strings.TrimSpace(modelID) == "" {
		modelID = s.defaultModel
	}
	if strings.TrimSpace(credential) == "" {
		credential = s.credential
	}

	session, err := Start(ctx, modelID, credential, s.factory)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// DeleteSession drops a session and its transcript.
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// LoadTranscript returns the history of the given session.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.History(), nil
}

// Count returns the number of live sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SwitchModel replaces a session with a new one bound to modelID, reusing the
// credential of the old session. The old session is dropped only when the new
// one started; if another switch or a delete removed it first,
// ErrSessionNotFound is returned and nothing is registered.
func (s *Service) SwitchModel(ctx context.Context, sessionID, modelID string) (*Session, error) {
	old, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session, err := Start(ctx, modelID, old.credential, s.factory)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// 并发切换时只有第一个生效，后来者的新会话直接丢弃
	if current, ok := s.sessions[old.ID()]; !ok || current != old {
		return nil, ErrSessionNotFound
	}
	delete(s.sessions, old.ID())
	s.sessions[session.ID()] = session

	return session, nil
}
