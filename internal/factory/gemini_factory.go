package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/adapters/gemini"
	"github.com/mikey/applytrack/internal/config"
	"github.com/mikey/applytrack/internal/core"
)

// GeminiFactory creates Gemini LLM clients
type GeminiFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewGeminiFactory creates a new Gemini factory
func NewGeminiFactory(cfg *config.Config, logger *zap.Logger) *GeminiFactory {
	return &GeminiFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates a Gemini LLM client
func (f *GeminiFactory) CreateLLMClient(apiKey string) (core.LLMClient, error) {
	geminiCfg := f.cfg.GetGemini()

	if apiKey == "" {
		apiKey = geminiCfg.APIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := gemini.NewGeminiClient(
		apiKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}
