package factory

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/config"
	"github.com/mikey/applytrack/internal/core"
)

// ProviderNone disables the delegate entirely
const ProviderNone = "none"

// ErrNoDelegate is returned when no delegate provider is configured
var ErrNoDelegate = errors.New("no delegate provider configured")

// LLMFactory creates LLM clients
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// Provider returns the configured provider name
func (f *LLMFactory) Provider() string {
	return f.cfg.GetLLM().Provider
}

// NeedsAPIKey reports whether the provider authenticates with an API key
func (f *LLMFactory) NeedsAPIKey() bool {
	return f.Provider() != "bedrock"
}

// ConfiguredAPIKey returns the key from the provider's config section, if any
func (f *LLMFactory) ConfiguredAPIKey() string {
	switch f.Provider() {
	case "gemini":
		return f.cfg.GetGemini().APIKey
	case "openai":
		return f.cfg.GetOpenAI().APIKey
	default:
		return ""
	}
}

// CreateLLMClient creates a client for the configured provider.
// apiKey overrides the key from the provider's config section.
func (f *LLMFactory) CreateLLMClient(apiKey string) (core.LLMClient, error) {
	provider := f.Provider()

	switch provider {
	case "bedrock":
		return NewBedrockFactory(f.cfg, f.logger).CreateLLMClient()
	case "gemini":
		return NewGeminiFactory(f.cfg, f.logger).CreateLLMClient(apiKey)
	case "openai":
		return NewOpenAIFactory(f.cfg, f.logger).CreateLLMClient(apiKey)
	case ProviderNone, "":
		return nil, ErrNoDelegate
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
