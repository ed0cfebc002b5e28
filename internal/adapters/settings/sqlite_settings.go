package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/core"
)

// SQLiteSettings is a SQLite implementation of the SettingsRepository interface
type SQLiteSettings struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteSettings opens (or creates) the settings database at dbPath
func NewSQLiteSettings(dbPath string, logger *zap.Logger) (*SQLiteSettings, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteSettings{
		db:     db,
		logger: logger,
	}, nil
}

// Get returns the value stored under key
func (s *SQLiteSettings) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM settings WHERE key = ?
	`, key).Scan(&value)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", core.ErrSettingNotFound
		}
		return "", fmt.Errorf("failed to query setting: %w", err)
	}
	return value, nil
}

// Set stores value under key
func (s *SQLiteSettings) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
	`, key, value, time.Now().UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to store setting: %w", err)
	}

	s.logger.Debug("Setting stored", zap.String("key", key))
	return nil
}

// Delete removes key
func (s *SQLiteSettings) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM settings WHERE key = ?
	`, key)

	if err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteSettings) Close() error {
	return s.db.Close()
}
