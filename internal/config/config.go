package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/applytrack/")
	v.AddConfigPath("$HOME/.applytrack")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)
	BindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromFile reads the configuration from an explicit file. The file must exist.
func NewFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	setDefaults(v)
	BindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return &Config{v: v}, nil
}

// BindEnv lets APPLYTRACK_* environment variables override any key, e.g. APPLYTRACK_GMAIL_ACCESS_TOKEN
func BindEnv(v *viper.Viper) {
	v.AutomaticEnv()
	v.SetEnvPrefix("APPLYTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Delegate provider: gemini, openai, bedrock or none
	v.SetDefault("llm.provider", "gemini")

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 500)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.0)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 500)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.0)

	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")
	v.SetDefault("bedrock.max_tokens", 500)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)

	v.SetDefault("gmail.access_token", "")
	v.SetDefault("gmail.endpoint", "")

	v.SetDefault("search.after", "2025/09/01")
	v.SetDefault("search.subjects", []string{
		"application", "interview", "next steps", "assessment", "offer", "rejection",
	})

	v.SetDefault("tracker.call_timeout", "30s")
	v.SetDefault("tracker.min_interval", "0s")
	v.SetDefault("tracker.location", "Local")
	v.SetDefault("tracker.ignored_domains", []string{})

	// Settings backend: memory, sqlite, mysql or keyring
	v.SetDefault("settings.type", "sqlite")
	v.SetDefault("settings.sqlite_path", "applytrack.db")
	v.SetDefault("settings.mysql_dsn", "user:password@tcp(localhost:3306)/applytrack")
	v.SetDefault("settings.keyring_service", "applytrack")

	v.SetDefault("notify.smtp_address", "localhost:25")
	v.SetDefault("notify.helo", "localhost")
	v.SetDefault("notify.from", "applytrack@localhost")
	v.SetDefault("notify.to", "")
	v.SetDefault("notify.username", "")
	v.SetDefault("notify.password", "")

	// Frontend: dashboard or cli
	v.SetDefault("server.frontend", "dashboard")
	v.SetDefault("server.listen_address", "127.0.0.1:8080")
	v.SetDefault("cli.verbose", false)

	v.SetDefault("autosync.interval", "15m")

	v.SetDefault("export.csv_path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
