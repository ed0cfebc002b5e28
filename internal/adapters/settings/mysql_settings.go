package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/core"
)

// MySQLSettings is a MySQL implementation of the SettingsRepository interface
type MySQLSettings struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLSettings connects to dsn and ensures the settings table exists
func NewMySQLSettings(dsn string, logger *zap.Logger) (*MySQLSettings, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			setting_key VARCHAR(64) PRIMARY KEY,
			setting_value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLSettings{
		db:     db,
		logger: logger,
	}, nil
}

// Get returns the value stored under key
func (s *MySQLSettings) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT setting_value FROM settings WHERE setting_key = ?
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
func (s *MySQLSettings) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (setting_key, setting_value)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value)
	`, key, value)

	if err != nil {
		return fmt.Errorf("failed to store setting: %w", err)
	}

	s.logger.Debug("Setting stored", zap.String("key", key))
	return nil
}

// Delete removes key
func (s *MySQLSettings) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM settings WHERE setting_key = ?
	`, key)

	if err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *MySQLSettings) Close() error {
	return s.db.Close()
}
