// Package view renders a chat transcript for a UI host and turns the host's
// submit and reset events into session calls. It knows nothing about HTML or
// terminals; the web and terminal hosts draw the Lines it produces.
package view

import (
	"context"
	"errors"

	"github.com/zhouzirui/chatfront/backend/internal/model/chat"
	chatservice "github.com/zhouzirui/chatfront/backend/internal/service/chat"
)

// Conversation is the part of a chat session a view needs.
type Conversation interface {
	History() []chat.Turn
	Send(ctx context.Context, userText string) (string, error)
	Reset(ctx context.Context) error
}

// Line is one rendered turn.
type Line struct {
	Role    chat.Role
	Label   string
	Content string
}

// TranscriptView presents one conversation.
type TranscriptView struct {
	conv   Conversation
	notice string
}

// New binds a view to a conversation.
func New(conv Conversation) *TranscriptView {
	return &TranscriptView{conv: conv}
}

// Lines returns the transcript in turn order, each tagged by role.
func (v *TranscriptView) Lines() []Line {
	history := v.conv.History()
	lines := make([]Line, 0, len(history))
	for _, turn := range history {
		lines = append(lines, Line{
			Role:    turn.Role,
			Label:   Label(turn.Role),
			Content: turn.Content,
		})
	}
	return lines
}

// Submit forwards user text. Failures are kept as a notice for the host to
// show; the transcript itself is only ever changed by the session.
func (v *TranscriptView) Submit(ctx context.Context, text string) error {
	v.notice = ""
	if _, err := v.conv.Send(ctx, text); err != nil {
		v.notice = Describe(err)
		return err
	}
	return nil
}

// Reset clears the conversation.
func (v *TranscriptView) Reset(ctx context.Context) error {
	v.notice = ""
	if err := v.conv.Reset(ctx); err != nil {
		v.notice = Describe(err)
		return err
	}
	return nil
}

// Notice returns the message left by the last failed action, if any.
func (v *TranscriptView) Notice() string {
	return v.notice
}

// Label returns the display name of a role.
func Label(role chat.Role) string {
	switch role {
	case chat.RoleUser:
		return "You"
	case chat.RoleAssistant:
		return "Assistant"
	default:
		return string(role)
	}
}

// Describe turns a session error into a message fit for the user.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var chatErr *chatservice.Error
	if !errors.As(err, &chatErr) {
		if errors.Is(err, chatservice.ErrSessionNotFound) {
			return "This conversation has expired. Start a new one."
		}
		return "Something went wrong: " + err.Error()
	}

	switch chatErr.Kind {
	case chatservice.KindConfiguration:
		return "Configuration problem: " + chatErr.Reason + "."
	case chatservice.KindEndpointInit:
		return "Could not reach the model: " + causeOf(chatErr)
	case chatservice.KindRemoteCall:
		return "An error occurred: " + causeOf(chatErr) + ". Your message was kept; send it again to retry."
	case chatservice.KindInvalidInput:
		return "Please enter a message."
	default:
		return chatErr.Error()
	}
}

func causeOf(err *chatservice.Error) string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Reason
}
