package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Setting keys
const (
	SettingAPIKey        = "api_key"
	SettingNotifications = "notifications"
	SettingAutoSync      = "auto_sync"
)

// LoadSettings reads all settings, treating absent keys as empty or false
func LoadSettings(ctx context.Context, repo SettingsRepository) (*Settings, error) {
	apiKey, err := getOptional(ctx, repo, SettingAPIKey)
	if err != nil {
		return nil, err
	}
	notifications, err := getFlag(ctx, repo, SettingNotifications)
	if err != nil {
		return nil, err
	}
	autoSync, err := getFlag(ctx, repo, SettingAutoSync)
	if err != nil {
		return nil, err
	}

	return &Settings{
		APIKey:        apiKey,
		Notifications: notifications,
		AutoSync:      autoSync,
	}, nil
}

// SaveAPIKey stores a trimmed, non-empty delegate key
func SaveAPIKey(ctx context.Context, repo SettingsRepository, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrInvalidAPIKey
	}
	if err := repo.Set(ctx, SettingAPIKey, key); err != nil {
		return fmt.Errorf("saving api key: %w", err)
	}
	return nil
}

// ForgetAPIKey removes the stored delegate key
func ForgetAPIKey(ctx context.Context, repo SettingsRepository) error {
	if err := repo.Delete(ctx, SettingAPIKey); err != nil {
		return fmt.Errorf("deleting api key: %w", err)
	}
	return nil
}

// SavePreferences writes both preference flags
func SavePreferences(ctx context.Context, repo SettingsRepository, notifications, autoSync bool) error {
	if err := repo.Set(ctx, SettingNotifications, strconv.FormatBool(notifications)); err != nil {
		return fmt.Errorf("saving %s: %w", SettingNotifications, err)
	}
	if err := repo.Set(ctx, SettingAutoSync, strconv.FormatBool(autoSync)); err != nil {
		return fmt.Errorf("saving %s: %w", SettingAutoSync, err)
	}
	return nil
}

func getOptional(ctx context.Context, repo SettingsRepository, key string) (string, error) {
	value, err := repo.Get(ctx, key)
	if errors.Is(err, ErrSettingNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", key, err)
	}
	return value, nil
}

// getFlag only treats the literal "true" as set
func getFlag(ctx context.Context, repo SettingsRepository, key string) (bool, error) {
	value, err := getOptional(ctx, repo, key)
	if err != nil {
		return false, err
	}
	return value == "true", nil
}
