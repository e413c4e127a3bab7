package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repolingo/repolingo/internal/config"
	"github.com/repolingo/repolingo/internal/vault"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_PATH", filepath.Join(dir, "app.db"))
	t.Setenv("SETTINGS_FILE", filepath.Join(dir, "settings.json"))
	t.Setenv("OPENROUTER_API_KEY", "env-or-key")
	t.Setenv("VAULT_MASTER_KEY", "1111111111111111111111111111111111111111111111111111111111111111")

	app, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.store.Close() })
	return app
}

func TestNewWiresEverything(t *testing.T) {
	app := newTestApp(t)

	assert.NotNil(t, app.server)
	assert.NotNil(t, app.vault, "master key in env must enable the vault")
	assert.NotNil(t, app.resolver)
	assert.NotNil(t, app.queue)
}

func TestSystemCredentialsComeFromConfig(t *testing.T) {
	app := newTestApp(t)

	creds := app.systemCredentials()
	assert.Equal(t, vault.ProviderOpenRouter, creds.Provider)
	assert.Equal(t, "env-or-key", creds.OpenRouterKey)
	assert.Empty(t, creds.GeminiKey)
}

func TestApplyRuntimeSettingsUpdatesProviders(t *testing.T) {
	app := newTestApp(t)

	next, err := app.settings.GetRuntimeSettings()
	require.NoError(t, err)
	next.OpenRouterAPIKey = "settings-or-key"
	next.OpenRouterModel = "another/model"

	require.NoError(t, app.applyRuntimeSettings(next))

	assert.Equal(t, "settings-or-key", app.systemCredentials().OpenRouterKey)
	assert.Equal(t, "another/model", app.providersConfig().OpenRouter.Model)
}

func TestApplyRuntimeSettingsUpdatesDefaultLanguage(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, "en", app.resolver.DefaultLanguage())

	next, err := app.settings.GetRuntimeSettings()
	require.NoError(t, err)
	next.DefaultLanguage = "es"

	require.NoError(t, app.applyRuntimeSettings(next))
	assert.Equal(t, "es", app.resolver.DefaultLanguage())
}

func TestApplyRuntimeSettingsRejectsBadCron(t *testing.T) {
	app := newTestApp(t)

	next, err := app.settings.GetRuntimeSettings()
	require.NoError(t, err)
	next.WarmCronExpr = "bad cron"

	// Validation happens at the settings endpoint; the applier itself
	// only reschedules, and with no scheduler running it is a no-op.
	require.NoError(t, app.applyRuntimeSettings(next))
	assert.Equal(t, "bad cron", app.warmCronExpr())
}

func TestConfigRoundTripThroughRuntimeSettings(t *testing.T) {
	app := newTestApp(t)

	settings := app.cfg.RuntimeSettings()
	assert.Equal(t, "env-or-key", settings.OpenRouterAPIKey)
	require.NoError(t, settings.Validate())

	// The settings derived from config must be storable as-is.
	_, err := config.NewRuntimeSettingsStore(filepath.Join(t.TempDir(), "s.json"), settings)
	assert.NoError(t, err)
}
