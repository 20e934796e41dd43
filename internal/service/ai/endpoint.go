package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

var (
	ErrUnknownModel  = errors.New("unknown model")
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// Endpoint is a conversation bound to one remote model and one credential.
// It keeps the remote-side context and is not safe for concurrent use.
type Endpoint interface {
	SendTurn(ctx context.Context, text string) (string, error)
}

// Factory creates a fresh Endpoint with empty context.
type Factory func(ctx context.Context, modelID, credential string) (Endpoint, error)

type chainEndpoint struct {
	modelID string
	system  string
	chain   compose.Runnable[map[string]any, *schema.Message]
	history []*schema.Message
}

// newChainEndpoint 编译 prompt -> chat model 的调用链。
func newChainEndpoint(ctx context.Context, modelID, system string, chatModel model.BaseChatModel) (*chainEndpoint, error) {
	messages := make([]schema.MessagesTemplate, 0, 3)
	if system != "" {
		messages = append(messages, schema.SystemMessage("{system}"))
	}
	messages = append(messages,
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(prompt.FromMessages(schema.FString, messages...))
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &chainEndpoint{
		modelID: modelID,
		system:  system,
		chain:   runnable,
	}, nil
}

// SendTurn forwards text with the accumulated context. The context only grows
// when the model produced a usable reply.
func (e *chainEndpoint) SendTurn(ctx context.Context, text string) (string, error) {
	input := map[string]any{
		"history": append([]*schema.Message(nil), e.history...),
		"query":   text,
	}
	if e.system != "" {
		input["system"] = e.system
	}

	response, err := e.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run chat chain: %w", err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return "", ErrEmptyResponse
	}

	e.history = append(e.history,
		schema.UserMessage(text),
		schema.AssistantMessage(response.Content, nil),
	)

	log.Printf("[ai] model=%s reply length=%d context=%d", e.modelID, len(response.Content), len(e.history))
	return response.Content, nil
}
