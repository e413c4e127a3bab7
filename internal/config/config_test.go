package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnvDefaults(t *testing.T) {
	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.Providers.OpenRouter.APIURL)
	assert.Equal(t, "gemini-2.0-flash", cfg.Providers.Gemini.Model)
	assert.Equal(t, "en", cfg.Translate.DefaultLanguage)
	assert.Equal(t, "0 3 * * *", cfg.Translate.WarmCronExpr)
	assert.True(t, cfg.Server.UIEnabled)
}

func TestNewFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("UI_ENABLED", "false")
	t.Setenv("LLM_MAX_TOKENS", "1234")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "sk-or-test", cfg.Providers.OpenRouter.APIKey)
	assert.False(t, cfg.Server.UIEnabled)
	assert.Equal(t, 1234, cfg.Providers.MaxTokens)
}

func TestRuntimeSettingsValidate(t *testing.T) {
	valid := RuntimeSettings{
		DefaultLanguage: "en",
		WarmCronExpr:    "0 3 * * *",
	}
	assert.NoError(t, valid.Validate())

	badLang := valid
	badLang.DefaultLanguage = "not a language"
	assert.Error(t, badLang.Validate())

	badCron := valid
	badCron.WarmCronExpr = "every day at dawn"
	assert.Error(t, badCron.Validate())

	missing := valid
	missing.WarmCronExpr = ""
	assert.Error(t, missing.Validate())
}

func TestWithRuntimeSettingsOverlay(t *testing.T) {
	cfg, err := NewFromEnv(WithRuntimeSettings(RuntimeSettings{
		OpenRouterAPIKey: "sk-or-runtime",
		DeepLAPIKey:      "deepl-runtime",
		DefaultLanguage:  "es",
		WarmCronExpr:     "30 2 * * *",
	}))
	require.NoError(t, err)

	assert.Equal(t, "sk-or-runtime", cfg.Providers.OpenRouter.APIKey)
	assert.Equal(t, "deepl-runtime", cfg.Localization.APIKey)
	assert.Equal(t, "es", cfg.Translate.DefaultLanguage)
	assert.Equal(t, "30 2 * * *", cfg.Translate.WarmCronExpr)
	// Untouched fields keep their defaults.
	assert.Equal(t, "openai/gpt-4o-mini", cfg.Providers.OpenRouter.Model)
}

func TestRuntimeSettingsFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	settings := RuntimeSettings{
		OpenRouterAPIKey: "sk-or-file",
		DefaultLanguage:  "en",
		WarmCronExpr:     "0 4 * * *",
	}
	require.NoError(t, WriteRuntimeSettingsFile(path, settings))

	loaded, err := LoadRuntimeSettingsFile(path)
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestRuntimeSettingsStoreUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	initial := RuntimeSettings{DefaultLanguage: "en", WarmCronExpr: "0 3 * * *"}

	store, err := NewRuntimeSettingsStore(path, initial)
	require.NoError(t, err)

	next := initial
	next.GeminiAPIKey = "gm-123"
	saved, err := store.UpdateRuntimeSettings(next)
	require.NoError(t, err)
	assert.Equal(t, "gm-123", saved.GeminiAPIKey)

	current, err := store.GetRuntimeSettings()
	require.NoError(t, err)
	assert.Equal(t, next, current)

	// Invalid update is rejected and does not replace the current value.
	bad := next
	bad.WarmCronExpr = "nope"
	_, err = store.UpdateRuntimeSettings(bad)
	assert.Error(t, err)
	current, _ = store.GetRuntimeSettings()
	assert.Equal(t, next, current)
}
