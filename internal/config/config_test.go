package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	assert.Equal(t, "gemini", cfg.GetLLM().Provider)
	assert.Equal(t, 500, cfg.GetGemini().MaxTokens)
	assert.InDelta(t, 0.1, cfg.GetGemini().Temperature, 1e-6)

	search := cfg.GetSearch()
	assert.Equal(t, "2025/09/01", search.After)
	assert.Equal(t, []string{"application", "interview", "next steps", "assessment", "offer", "rejection"}, search.Subjects)

	tracker, err := cfg.GetTracker()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, tracker.CallTimeout)
	assert.Zero(t, tracker.MinInterval)
	assert.Equal(t, time.Local, tracker.Location)

	autosync, err := cfg.GetAutoSync()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, autosync.Interval)

	assert.Equal(t, "sqlite", cfg.GetSettings().Type)
	assert.Equal(t, "dashboard", cfg.GetServer().Frontend)
}

func TestOverrides(t *testing.T) {
	v := NewEmptyViper()
	v.Set("tracker.call_timeout", "5s")
	v.Set("tracker.location", "UTC")
	v.Set("notify.to", []string{"me@example.com"})
	v.Set("openai.base_url", "http://localhost:9999/v1")
	cfg := NewFromViper(v)

	tracker, err := cfg.GetTracker()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, tracker.CallTimeout)
	assert.Equal(t, time.UTC, tracker.Location)

	assert.Equal(t, []string{"me@example.com"}, cfg.GetNotify().To)
	assert.Equal(t, "http://localhost:9999/v1", cfg.GetOpenAI().BaseURL)
}

func TestInvalidDurations(t *testing.T) {
	v := NewEmptyViper()
	v.Set("tracker.min_interval", "soon")
	v.Set("autosync.interval", "often")
	cfg := NewFromViper(v)

	_, err := cfg.GetTracker()
	assert.ErrorContains(t, err, "tracker.min_interval")

	_, err = cfg.GetAutoSync()
	assert.ErrorContains(t, err, "autosync.interval")
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applytrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: openai\nsearch:\n  after: 2025/10/01\n"), 0o600))
	t.Setenv("APPLYTRACK_GMAIL_ACCESS_TOKEN", "from-env")

	cfg, err := NewFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.GetLLM().Provider)
	assert.Equal(t, "2025/10/01", cfg.GetSearch().After)
	assert.Equal(t, "from-env", cfg.GetGmail().AccessToken)
	assert.Equal(t, 500, cfg.GetOpenAI().MaxTokens)

	_, err = NewFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
