package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/core"
)

// DefaultKeyringService groups the settings in the OS keychain
const DefaultKeyringService = "applytrack"

// KeyringSettings stores each setting as one OS keychain entry under a shared service name
type KeyringSettings struct {
	service string
	logger  *zap.Logger
}

// NewKeyringSettings creates a keyring-backed settings repository
func NewKeyringSettings(service string, logger *zap.Logger) *KeyringSettings {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringSettings{
		service: service,
		logger:  logger,
	}
}

// Get returns the value stored under key
func (s *KeyringSettings) Get(ctx context.Context, key string) (string, error) {
	value, err := keyring.Get(s.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", core.ErrSettingNotFound
		}
		return "", fmt.Errorf("failed to read keyring entry: %w", err)
	}
	return value, nil
}

// Set stores value under key
func (s *KeyringSettings) Set(ctx context.Context, key, value string) error {
	if err := keyring.Set(s.service, key, value); err != nil {
		return fmt.Errorf("failed to write keyring entry: %w", err)
	}

	s.logger.Debug("Setting stored", zap.String("key", key), zap.String("service", s.service))
	return nil
}

// Delete removes key. A missing entry is not an error.
func (s *KeyringSettings) Delete(ctx context.Context, key string) error {
	if err := keyring.Delete(s.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete keyring entry: %w", err)
	}
	return nil
}

// Close is a no-op
func (s *KeyringSettings) Close() error {
	return nil
}
