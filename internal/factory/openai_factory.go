package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/adapters/openai"
	"github.com/mikey/applytrack/internal/config"
	"github.com/mikey/applytrack/internal/core"
)

// OpenAIFactory creates OpenAI LLM clients
type OpenAIFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewOpenAIFactory creates a new OpenAI factory
func NewOpenAIFactory(cfg *config.Config, logger *zap.Logger) *OpenAIFactory {
	return &OpenAIFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates an OpenAI LLM client
func (f *OpenAIFactory) CreateLLMClient(apiKey string) (core.LLMClient, error) {
	openaiCfg := f.cfg.GetOpenAI()

	if apiKey == "" {
		apiKey = openaiCfg.APIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	return openai.NewOpenAIClient(
		apiKey,
		openaiCfg.BaseURL,
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		f.logger,
	), nil
}
