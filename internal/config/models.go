package config

import (
	"fmt"
	"time"
)

// LLMConfig selects the delegate provider
type LLMConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GmailConfig holds the provider access token and an optional API endpoint override
type GmailConfig struct {
	AccessToken string
	Endpoint    string
}

// SearchConfig describes the mailbox search
type SearchConfig struct {
	After    string
	Subjects []string
}

// TrackerConfig controls a run
type TrackerConfig struct {
	CallTimeout    time.Duration
	MinInterval    time.Duration
	Location       *time.Location
	IgnoredDomains []string
}

// SettingsConfig selects the settings backend
type SettingsConfig struct {
	Type           string
	SQLitePath     string
	MySQLDSN       string
	KeyringService string
}

// NotifyConfig is the SMTP relay used for run summaries
type NotifyConfig struct {
	SMTPAddress string
	Helo        string
	From        string
	To          []string
	Username    string
	Password    string
}

// ServerConfig selects the frontend
type ServerConfig struct {
	Frontend      string
	ListenAddress string
}

// AutoSyncConfig controls the background poller
type AutoSyncConfig struct {
	Interval time.Duration
}

// ExportConfig controls file exports
type ExportConfig struct {
	CSVPath string
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetGmail returns the Gmail configuration
func (c *Config) GetGmail() GmailConfig {
	return GmailConfig{
		AccessToken: c.GetString("gmail.access_token"),
		Endpoint:    c.GetString("gmail.endpoint"),
	}
}

// GetSearch returns the search configuration
func (c *Config) GetSearch() SearchConfig {
	return SearchConfig{
		After:    c.GetString("search.after"),
		Subjects: c.GetStringSlice("search.subjects"),
	}
}

// GetTracker returns the run configuration
func (c *Config) GetTracker() (TrackerConfig, error) {
	callTimeout, err := c.GetDuration("tracker.call_timeout")
	if err != nil {
		return TrackerConfig{}, fmt.Errorf("invalid tracker.call_timeout: %w", err)
	}
	minInterval, err := c.GetDuration("tracker.min_interval")
	if err != nil {
		return TrackerConfig{}, fmt.Errorf("invalid tracker.min_interval: %w", err)
	}
	loc, err := time.LoadLocation(c.GetString("tracker.location"))
	if err != nil {
		return TrackerConfig{}, fmt.Errorf("invalid tracker.location: %w", err)
	}

	return TrackerConfig{
		CallTimeout:    callTimeout,
		MinInterval:    minInterval,
		Location:       loc,
		IgnoredDomains: c.GetStringSlice("tracker.ignored_domains"),
	}, nil
}

// GetSettings returns the settings backend configuration
func (c *Config) GetSettings() SettingsConfig {
	return SettingsConfig{
		Type:           c.GetString("settings.type"),
		SQLitePath:     c.GetString("settings.sqlite_path"),
		MySQLDSN:       c.GetString("settings.mysql_dsn"),
		KeyringService: c.GetString("settings.keyring_service"),
	}
}

// GetNotify returns the notification configuration
func (c *Config) GetNotify() NotifyConfig {
	return NotifyConfig{
		SMTPAddress: c.GetString("notify.smtp_address"),
		Helo:        c.GetString("notify.helo"),
		From:        c.GetString("notify.from"),
		To:          c.GetStringSlice("notify.to"),
		Username:    c.GetString("notify.username"),
		Password:    c.GetString("notify.password"),
	}
}

// GetServer returns the frontend configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		Frontend:      c.GetString("server.frontend"),
		ListenAddress: c.GetString("server.listen_address"),
	}
}

// GetAutoSync returns the poller configuration
func (c *Config) GetAutoSync() (AutoSyncConfig, error) {
	interval, err := c.GetDuration("autosync.interval")
	if err != nil {
		return AutoSyncConfig{}, fmt.Errorf("invalid autosync.interval: %w", err)
	}
	return AutoSyncConfig{Interval: interval}, nil
}

// GetExport returns the export configuration
func (c *Config) GetExport() ExportConfig {
	return ExportConfig{
		CSVPath: c.GetString("export.csv_path"),
	}
}
