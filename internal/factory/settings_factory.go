package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/adapters/settings"
	"github.com/mikey/applytrack/internal/config"
	"github.com/mikey/applytrack/internal/ports"
)

// SettingsFactory creates settings repositories based on configuration
type SettingsFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSettingsFactory creates a new settings factory
func NewSettingsFactory(cfg *config.Config, logger *zap.Logger) *SettingsFactory {
	return &SettingsFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSettingsStore creates the configured settings backend
func (f *SettingsFactory) CreateSettingsStore() (ports.SettingsStore, error) {
	settingsCfg := f.cfg.GetSettings()

	switch settingsCfg.Type {
	case "memory":
		return settings.NewMemorySettings(f.logger), nil
	case "sqlite":
		if dir := filepath.Dir(settingsCfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
			}
		}
		store, err := settings.NewSQLiteSettings(settingsCfg.SQLitePath, f.logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "mysql":
		store, err := settings.NewMySQLSettings(settingsCfg.MySQLDSN, f.logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "keyring":
		return settings.NewKeyringSettings(settingsCfg.KeyringService, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported settings type: %s", settingsCfg.Type)
	}
}
