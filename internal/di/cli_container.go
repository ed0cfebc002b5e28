package di

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/config"
	"github.com/mikey/applytrack/internal/core"
	"github.com/mikey/applytrack/internal/factory"
	"github.com/mikey/applytrack/internal/logging"
	"github.com/mikey/applytrack/internal/ports"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Provider flags
	Provider    string
	Token       string
	After       string
	GmailURL    string
	CallTimeout string

	// Settings flags
	SettingsType  string
	SettingsPath  string
	SaveAPIKey    string
	ForgetAPIKey  bool
	Notifications string
	AutoSync      string

	// Output flags
	CSVPath    string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	// flag.CommandLine exits on error
	flags, _ := ParseFlagSet(flag.CommandLine, os.Args[1:])
	return flags
}

// ParseFlagSet registers the CLI flags on fs and parses args
func ParseFlagSet(fs *flag.FlagSet, args []string) (*CLIFlags, error) {
	flags := &CLIFlags{}

	fs.StringVar(&flags.Provider, "provider", "gemini", "Delegate provider (gemini, openai, bedrock, none)")
	fs.StringVar(&flags.Token, "token", "", "Gmail access token")
	fs.StringVar(&flags.After, "after", "2025/09/01", "Only search mail received after this date (YYYY/MM/DD)")
	fs.StringVar(&flags.GmailURL, "gmail-endpoint", "", "Override the Gmail API endpoint")
	fs.StringVar(&flags.CallTimeout, "call-timeout", "30s", "Timeout for each outbound call")

	fs.StringVar(&flags.SettingsType, "settings", "sqlite", "Settings backend (memory, sqlite, keyring)")
	fs.StringVar(&flags.SettingsPath, "settings-path", "applytrack.db", "SQLite settings file")
	fs.StringVar(&flags.SaveAPIKey, "save-api-key", "", "Store a delegate API key and exit")
	fs.BoolVar(&flags.ForgetAPIKey, "forget-api-key", false, "Remove the stored delegate API key and exit")
	fs.StringVar(&flags.Notifications, "notifications", "", "Set the notifications preference (true or false) and exit")
	fs.StringVar(&flags.AutoSync, "auto-sync", "", "Set the auto-sync preference (true or false) and exit")

	fs.StringVar(&flags.CSVPath, "csv", "", "Also export the records to this CSV file")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}

// HasSettingsAction reports whether the flags ask to change settings rather than run
func (f *CLIFlags) HasSettingsAction() bool {
	return f.SaveAPIKey != "" || f.ForgetAPIKey || f.Notifications != "" || f.AutoSync != ""
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags, out io.Writer) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			cfg.GetViper().Set("server.frontend", "cli")
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	if err := provideCommon(container); err != nil {
		return nil, err
	}

	// Register presenter with the terminal table
	if err := container.Provide(func(f *factory.PresenterFactory) ports.Presenter {
		return f.CreatePresenter(out)
	}); err != nil {
		return nil, err
	}

	// Register frontend
	if err := container.Provide(func(f *factory.FrontendFactory) (ports.Frontend, error) {
		return f.CreateFrontend(out)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// ApplySettingsFlags performs the settings actions requested on the command line
func ApplySettingsFlags(ctx context.Context, flags *CLIFlags, repo core.SettingsRepository, out io.Writer) error {
	if flags.SaveAPIKey != "" {
		if err := core.SaveAPIKey(ctx, repo, flags.SaveAPIKey); err != nil {
			return err
		}
		fmt.Fprintln(out, "API key saved.")
	}

	if flags.ForgetAPIKey {
		if err := core.ForgetAPIKey(ctx, repo); err != nil {
			return err
		}
		fmt.Fprintln(out, "API key removed.")
	}

	if flags.Notifications == "" && flags.AutoSync == "" {
		return nil
	}

	prefs, err := core.LoadSettings(ctx, repo)
	if err != nil {
		return err
	}
	notifications, err := parseToggle(flags.Notifications, prefs.Notifications)
	if err != nil {
		return fmt.Errorf("invalid -notifications: %w", err)
	}
	autoSync, err := parseToggle(flags.AutoSync, prefs.AutoSync)
	if err != nil {
		return fmt.Errorf("invalid -auto-sync: %w", err)
	}

	if err := core.SavePreferences(ctx, repo, notifications, autoSync); err != nil {
		return err
	}
	fmt.Fprintf(out, "Preferences saved: notifications=%t auto-sync=%t\n", notifications, autoSync)
	return nil
}

// parseToggle keeps current when value is empty
func parseToggle(value string, current bool) (bool, error) {
	if value == "" {
		return current, nil
	}
	return strconv.ParseBool(value)
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()
	config.BindEnv(v)

	// Set some cli specific settings
	v.Set("server.frontend", "cli")
	v.Set("cli.verbose", flags.Verbose)

	v.Set("llm.provider", flags.Provider)
	v.Set("search.after", flags.After)
	v.Set("tracker.call_timeout", flags.CallTimeout)

	if flags.Token != "" {
		v.Set("gmail.access_token", flags.Token)
	}
	if flags.GmailURL != "" {
		v.Set("gmail.endpoint", flags.GmailURL)
	}

	v.Set("settings.type", flags.SettingsType)
	v.Set("settings.sqlite_path", flags.SettingsPath)

	if flags.CSVPath != "" {
		v.Set("export.csv_path", flags.CSVPath)
	}

	return config.NewFromViper(v)
}
