package ports

import "github.com/mikey/applytrack/internal/core"

// SettingsStore is a settings repository that holds a resource until closed
type SettingsStore interface {
	core.SettingsRepository
	Close() error
}
