package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	AI     AIConfig
	UI     UIConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, UI: loadUIConfig()}, nil
}

// UIConfig 描述聊天页面的文案。
type UIConfig struct {
	Title       string
	Caption     string
	Placeholder string
}

func loadUIConfig() UIConfig {
	return UIConfig{
		Title:       getEnvOrDefault("UI_TITLE", "Chatbot"),
		Caption:     getEnvOrDefault("UI_CAPTION", "A chatbot powered by a hosted language model"),
		Placeholder: getEnvOrDefault("UI_PLACEHOLDER", "Ask me anything..."),
	}
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	APIKey       string
	APIKeyParam  string
	AWSRegion    string
	Model        string
	Models       []string
	SystemPrompt string
	BaseURL      string
	Region       string
	Temperature  *float64
	TopP         *float64
	MaxTokens    *int
}

// ParamGetter reads a secret parameter by name, e.g. from AWS SSM.
type ParamGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// NeedsParamStore reports whether the API key has to be fetched from the parameter store.
func (c AIConfig) NeedsParamStore() bool {
	return c.APIKey == "" && c.APIKeyParam != ""
}

// ResolveAPIKey 返回最终使用的 API Key：优先环境变量，其次参数仓库。
// 两者都没有时返回空字符串，由前端页面提示用户输入。
func (c AIConfig) ResolveAPIKey(ctx context.Context, params ParamGetter) (string, error) {
	if c.APIKey != "" {
		return c.APIKey, nil
	}
	if c.APIKeyParam == "" {
		return "", nil
	}
	if params == nil {
		return "", fmt.Errorf("ARK_API_KEY_PARAM=%q set but no parameter store available", c.APIKeyParam)
	}

	value, err := params.GetParameter(ctx, c.APIKeyParam)
	if err != nil {
		return "", fmt.Errorf("failed to read api key parameter: %w", err)
	}
	return strings.TrimSpace(value), nil
}

// NewChatModel 使用配置为指定模型和凭证创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context, modelID, apiKey string) (model.ChatModel, error) {
	if strings.TrimSpace(modelID) == "" || strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("model id and api key are required")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      apiKey,
		Model:       modelID,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}
	if maxTokens != nil && *maxTokens < 1 {
		return AIConfig{}, fmt.Errorf("invalid ARK_MAX_TOKENS value %d: must be positive", *maxTokens)
	}

	return AIConfig{
		APIKey:       strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		APIKeyParam:  strings.TrimSpace(os.Getenv("ARK_API_KEY_PARAM")),
		AWSRegion:    strings.TrimSpace(os.Getenv("AWS_REGION")),
		Model:        strings.TrimSpace(os.Getenv("Model")),
		Models:       parseListEnv("AI_MODELS"),
		SystemPrompt: strings.TrimSpace(os.Getenv("AI_SYSTEM_PROMPT")),
		BaseURL:      getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:       getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:  temperature,
		TopP:         topP,
		MaxTokens:    maxTokens,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseListEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}

	var items []string
	for _, part := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
