package view

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/chatfront/backend/internal/model/chat"
	"github.com/zhouzirui/chatfront/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/chatfront/backend/internal/service/chat"
)

type scriptedEndpoint struct {
	err error
}

func (e *scriptedEndpoint) SendTurn(_ context.Context, text string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return "answer: " + text, nil
}

func startSession(t *testing.T, endpoint *scriptedEndpoint, resetErr *error) *chatservice.Session {
	t.Helper()
	started := false
	factory := func(context.Context, string, string) (ai.Endpoint, error) {
		if started && resetErr != nil && *resetErr != nil {
			return nil, *resetErr
		}
		started = true
		return endpoint, nil
	}
	session, err := chatservice.Start(context.Background(), "model-a", "key1", factory)
	require.NoError(t, err)
	return session
}

func TestLinesFollowTurnOrder(t *testing.T) {
	session := startSession(t, &scriptedEndpoint{}, nil)
	v := New(session)
	ctx := context.Background()

	require.NoError(t, v.Submit(ctx, "A"))
	require.NoError(t, v.Submit(ctx, "B"))

	lines := v.Lines()
	require.Len(t, lines, 4)
	assert.Equal(t, Line{Role: chat.RoleUser, Label: "You", Content: "A"}, lines[0])
	assert.Equal(t, Line{Role: chat.RoleAssistant, Label: "Assistant", Content: "answer: A"}, lines[1])
	assert.Equal(t, "B", lines[2].Content)
	assert.Equal(t, "answer: B", lines[3].Content)
	assert.Empty(t, v.Notice())
}

func TestSubmitFailureShowsNoticeAndKeepsUserTurn(t *testing.T) {
	endpoint := &scriptedEndpoint{err: errors.New("429 quota exceeded")}
	session := startSession(t, endpoint, nil)
	v := New(session)

	err := v.Submit(context.Background(), "X")
	require.Error(t, err)
	assert.Contains(t, v.Notice(), "429 quota exceeded")
	assert.Contains(t, v.Notice(), "retry")

	lines := v.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, chat.RoleUser, lines[0].Role)
	assert.Equal(t, "X", lines[0].Content)

	endpoint.err = nil
	require.NoError(t, v.Submit(context.Background(), "X"))
	assert.Empty(t, v.Notice(), "a successful submit clears the notice")
}

func TestSubmitBlankText(t *testing.T) {
	v := New(startSession(t, &scriptedEndpoint{}, nil))

	require.Error(t, v.Submit(context.Background(), ""))
	assert.Equal(t, "Please enter a message.", v.Notice())
	assert.Empty(t, v.Lines())
}

func TestResetClearsLines(t *testing.T) {
	v := New(startSession(t, &scriptedEndpoint{}, nil))
	ctx := context.Background()

	require.NoError(t, v.Submit(ctx, "hello"))
	require.NoError(t, v.Reset(ctx))
	assert.Empty(t, v.Lines())
}

func TestResetFailureShowsNotice(t *testing.T) {
	resetErr := errors.New("dial tcp: connection refused")
	v := New(startSession(t, &scriptedEndpoint{}, &resetErr))
	ctx := context.Background()

	require.NoError(t, v.Submit(ctx, "hello"))
	require.Error(t, v.Reset(ctx))
	assert.True(t, strings.HasPrefix(v.Notice(), "Could not reach the model"))
	assert.Len(t, v.Lines(), 2)
}

func TestDescribe(t *testing.T) {
	_, err := chatservice.Start(context.Background(), "model-a", "", nil)
	assert.Equal(t, "Configuration problem: api key is required.", Describe(err))

	assert.Equal(t, "This conversation has expired. Start a new one.", Describe(chatservice.ErrSessionNotFound))
	assert.Equal(t, "Something went wrong: boom", Describe(errors.New("boom")))
	assert.Empty(t, Describe(nil))
}
