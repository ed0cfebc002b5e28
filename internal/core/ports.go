package core

import (
	"context"
)

// MailProvider lists and fetches messages from a mailbox
type MailProvider interface {
	// ListMessageIDs runs one search and returns the first page of message IDs
	ListMessageIDs(ctx context.Context, query string) ([]string, error)

	// GetMessage fetches the headers and payload of one message
	GetMessage(ctx context.Context, id string) (*Message, error)
}

// LLMClient defines the interface for interacting with text generation services
type LLMClient interface {
	// Generate sends a single prompt and returns the raw text reply
	Generate(ctx context.Context, prompt string) (string, error)
}

// Extractor turns a decoded email into an application record
type Extractor interface {
	Extract(ctx context.Context, email *Email) (*ApplicationRecord, error)
}

// SettingsRepository is a flat key/value store for the delegate key and preference flags
type SettingsRepository interface {
	// Get returns ErrSettingNotFound when the key is absent
	Get(ctx context.Context, key string) (string, error)

	Set(ctx context.Context, key, value string) error

	// Delete is a no-op for absent keys
	Delete(ctx context.Context, key string) error
}
