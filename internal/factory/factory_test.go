package factory

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/adapters/cli"
	"github.com/mikey/applytrack/internal/adapters/dashboard"
	"github.com/mikey/applytrack/internal/adapters/presenter"
	"github.com/mikey/applytrack/internal/adapters/settings"
	"github.com/mikey/applytrack/internal/config"
	"github.com/mikey/applytrack/internal/core"
	"github.com/mikey/applytrack/internal/tracker"
	"github.com/mikey/applytrack/internal/utils"
)

func newConfig(values map[string]interface{}) *config.Config {
	v := config.NewEmptyViper()
	v.Set("tracker.location", "UTC")
	for k, val := range values {
		v.Set(k, val)
	}
	return config.NewFromViper(v)
}

func TestSessionFactory_ExtractorSelection(t *testing.T) {
	tests := []struct {
		name      string
		values    map[string]interface{}
		storedKey string
		delegate  bool
	}{
		{"stored key", map[string]interface{}{"llm.provider": "openai"}, "sk-stored", true},
		{"configured key", map[string]interface{}{"llm.provider": "openai", "openai.api_key": "sk-cfg"}, "", true},
		{"no key", map[string]interface{}{"llm.provider": "openai"}, "", false},
		{"provider none", map[string]interface{}{"llm.provider": "none"}, "sk-stored", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			logger := zap.NewNop()
			cfg := newConfig(tt.values)
			repo := settings.NewMemorySettings(logger)
			if tt.storedKey != "" {
				require.NoError(t, core.SaveAPIKey(ctx, repo, tt.storedKey))
			}

			f, err := NewSessionFactory(cfg, repo, NewLLMFactory(cfg, logger), logger)
			require.NoError(t, err)

			sess, cleanup, err := f.NewSession(ctx, "token", nil)
			require.NoError(t, err)
			defer cleanup()

			if tt.delegate {
				assert.IsType(t, &core.DelegateExtractor{}, sess.Extractor)
			} else {
				assert.IsType(t, &core.RuleExtractor{}, sess.Extractor)
			}
			assert.NotNil(t, sess.Mail)
		})
	}
}

func TestSessionFactory_MissingTokenIsAuthError(t *testing.T) {
	logger := zap.NewNop()
	cfg := newConfig(map[string]interface{}{"llm.provider": "none"})

	f, err := NewSessionFactory(cfg, settings.NewMemorySettings(logger), NewLLMFactory(cfg, logger), logger)
	require.NoError(t, err)

	_, _, err = f.NewSession(context.Background(), "", nil)
	var authErr *core.AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestLLMFactory_UnsupportedProvider(t *testing.T) {
	cfg := newConfig(map[string]interface{}{"llm.provider": "carrier-pigeon"})

	_, err := NewLLMFactory(cfg, zap.NewNop()).CreateLLMClient("key")
	assert.ErrorContains(t, err, "unsupported LLM provider")
}

func TestSettingsFactory(t *testing.T) {
	logger := zap.NewNop()

	store, err := NewSettingsFactory(newConfig(map[string]interface{}{"settings.type": "memory"}), logger).CreateSettingsStore()
	require.NoError(t, err)
	assert.IsType(t, &settings.MemorySettings{}, store)

	path := filepath.Join(t.TempDir(), "nested", "settings.db")
	store, err = NewSettingsFactory(newConfig(map[string]interface{}{
		"settings.type":        "sqlite",
		"settings.sqlite_path": path,
	}), logger).CreateSettingsStore()
	require.NoError(t, err)
	assert.IsType(t, &settings.SQLiteSettings{}, store)
	assert.NoError(t, store.Close())

	_, err = NewSettingsFactory(newConfig(map[string]interface{}{"settings.type": "etcd"}), logger).CreateSettingsStore()
	assert.Error(t, err)
}

func TestPresenterFactory_Chain(t *testing.T) {
	logger := zap.NewNop()
	repo := settings.NewMemorySettings(logger)

	chain := NewPresenterFactory(newConfig(nil), repo, logger).CreatePresenter(&bytes.Buffer{})
	require.IsType(t, presenter.Chain{}, chain)
	assert.Len(t, chain.(presenter.Chain), 1)

	cfg := newConfig(map[string]interface{}{
		"export.csv_path": filepath.Join(t.TempDir(), "out.csv"),
		"notify.to":       []string{"me@example.com"},
	})
	chain = NewPresenterFactory(cfg, repo, logger).CreatePresenter(nil)
	assert.Len(t, chain.(presenter.Chain), 2)
}

func TestTrackerServiceQuery(t *testing.T) {
	logger := zap.NewNop()
	cfg := newConfig(map[string]interface{}{
		"search.after":    "2025/10/01",
		"search.subjects": []string{"offer", "next steps"},
	})

	service, err := NewTrackerService(cfg, NewIgnoreList(cfg, logger), utils.NewTextProcessor(logger), logger)
	require.NoError(t, err)
	assert.Equal(t, `after:2025/10/01 (subject:offer OR subject:"next steps")`, service.Query())
}

func TestFrontendFactory(t *testing.T) {
	logger := zap.NewNop()
	repo := settings.NewMemorySettings(logger)
	service := core.NewTrackerService("q", nil, utils.NewTextProcessor(logger), logger, 0, 0)
	runner := tracker.NewRunner(service, nil, nil, logger)

	frontend, err := NewFrontendFactory(newConfig(nil), runner, repo, logger).CreateFrontend(nil)
	require.NoError(t, err)
	assert.IsType(t, &dashboard.Dashboard{}, frontend)

	frontend, err = NewFrontendFactory(newConfig(map[string]interface{}{"server.frontend": "cli"}), runner, repo, logger).CreateFrontend(&bytes.Buffer{})
	require.NoError(t, err)
	assert.IsType(t, &cli.CliFrontend{}, frontend)

	_, err = NewFrontendFactory(newConfig(map[string]interface{}{"server.frontend": "tui"}), runner, repo, logger).CreateFrontend(nil)
	assert.Error(t, err)
}
