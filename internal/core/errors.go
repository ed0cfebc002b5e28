package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMessages is returned when the search matches nothing. It is informational.
	ErrNoMessages = errors.New("no job application emails found")
	// ErrInvalidAPIKey is returned when saving a blank delegate key
	ErrInvalidAPIKey = errors.New("api key must not be empty")
	// ErrSettingNotFound is returned by settings repositories for unknown keys
	ErrSettingNotFound = errors.New("setting not found")
)

// AuthError means the mail provider declined the access grant
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("mail provider rejected credentials: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// FetchError is a list or fetch failure. It aborts the whole run.
type FetchError struct {
	Op        string
	MessageID string
	Err       error
}

func (e *FetchError) Error() string {
	if e.MessageID != "" {
		return fmt.Sprintf("%s message %s: %v", e.Op, e.MessageID, e.Err)
	}
	return fmt.Sprintf("%s messages: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractionError is a per-message classification failure. The message is skipped.
type ExtractionError struct {
	MessageID string
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract message %s: %v", e.MessageID, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
