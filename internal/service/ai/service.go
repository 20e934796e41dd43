package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"

	"github.com/zhouzirui/chatfront/backend/internal/config"
	"github.com/zhouzirui/chatfront/backend/internal/model/catalog"
)

// ModelBuilder creates the underlying chat model client.
type ModelBuilder func(ctx context.Context, modelID, apiKey string) (model.BaseChatModel, error)

// Service builds endpoints for the models listed in the catalog.
type Service struct {
	models   catalog.Store
	system   string
	newModel ModelBuilder
}

// NewService 使用 Ark 配置创建端点工厂。
func NewService(cfg config.AIConfig, models catalog.Store) *Service {
	return NewServiceWithBuilder(models, cfg.SystemPrompt, func(ctx context.Context, modelID, apiKey string) (model.BaseChatModel, error) {
		chatModel, err := cfg.NewChatModel(ctx, modelID, apiKey)
		if err != nil {
			return nil, err
		}
		return chatModel, nil
	})
}

// NewServiceWithBuilder allows a custom model client, mainly for tests.
func NewServiceWithBuilder(models catalog.Store, systemPrompt string, builder ModelBuilder) *Service {
	return &Service{
		models:   models,
		system:   systemPrompt,
		newModel: builder,
	}
}

// NewEndpoint satisfies Factory.
func (s *Service) NewEndpoint(ctx context.Context, modelID, credential string) (Endpoint, error) {
	if _, ok := s.models.FindByID(modelID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, modelID)
	}

	chatModel, err := s.newModel(ctx, modelID, credential)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	endpoint, err := newChainEndpoint(ctx, modelID, s.system, chatModel)
	if err != nil {
		return nil, err
	}
	return endpoint, nil
}
