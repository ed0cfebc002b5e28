package settings

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/core"
)

// MemorySettings is an in-memory implementation of the SettingsRepository interface.
// Values do not survive a restart.
type MemorySettings struct {
	values map[string]string
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewMemorySettings creates a new in-memory settings repository
func NewMemorySettings(logger *zap.Logger) *MemorySettings {
	return &MemorySettings{
		values: make(map[string]string),
		logger: logger,
	}
}

// Get returns the value stored under key
func (s *MemorySettings) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", core.ErrSettingNotFound
	}
	return value, nil
}

// Set stores value under key
func (s *MemorySettings) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	s.logger.Debug("Setting stored", zap.String("key", key))
	return nil
}

// Delete removes key
func (s *MemorySettings) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Close is a no-op
func (s *MemorySettings) Close() error {
	return nil
}
