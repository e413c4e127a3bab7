// Package service assembles the application: configuration, storage,
// the translation pipeline, the warm scheduler, and the HTTP server.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/repolingo/repolingo/internal/chat"
	"github.com/repolingo/repolingo/internal/config"
	"github.com/repolingo/repolingo/internal/githubsrc"
	"github.com/repolingo/repolingo/internal/httpapi"
	"github.com/repolingo/repolingo/internal/i18n"
	"github.com/repolingo/repolingo/internal/jobs"
	"github.com/repolingo/repolingo/internal/localize"
	"github.com/repolingo/repolingo/internal/persistence"
	"github.com/repolingo/repolingo/internal/translate"
	"github.com/repolingo/repolingo/internal/vault"
	"github.com/repolingo/repolingo/pkg/log"
)

const warmWorkers = 2

type App struct {
	mu  sync.RWMutex
	cfg *config.Config

	store     *persistence.SQLiteStore
	vault     *vault.Vault
	fileLog   *log.FileLogger
	resolver  *translate.Resolver
	queue     *jobs.Queue
	settings  *config.RuntimeSettingsStore
	scheduler *cron.Cron
	warmEntry cron.EntryID
	server    *httpapi.Server
}

// New builds the application from the environment and the runtime
// settings file (file values overlay env defaults, as saved by the
// settings endpoint).
func New() (*App, error) {
	settingsPath := config.RuntimeSettingsFilePath()
	var opts []config.Option
	if saved, err := config.LoadRuntimeSettingsFile(settingsPath); err == nil {
		opts = append(opts, config.WithRuntimeSettings(saved))
	}

	cfg, err := config.NewFromEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := log.ParseLevel(cfg.Server.LogLevel)
	var fileLog *log.FileLogger
	if cfg.Server.LogFile != "" {
		fileLog, err = log.InitFileLogger(cfg.Server.LogFile, level)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
	} else {
		log.InitLogger(level)
	}

	store, err := persistence.NewSQLiteStore(cfg.Server.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var vlt *vault.Vault
	if cfg.Vault.MasterKey != "" {
		vlt, err = vault.New(cfg.Vault.MasterKey, store)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("init vault: %w", err)
		}
	} else {
		log.Warn("VAULT_MASTER_KEY is not set; per-user credentials are disabled")
	}

	settings, err := config.NewRuntimeSettingsStore(settingsPath, cfg.RuntimeSettings())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("init settings store: %w", err)
	}

	app := &App{
		cfg:      cfg,
		store:    store,
		vault:    vlt,
		fileLog:  fileLog,
		resolver: translate.NewResolver(i18n.NewTable(), translate.NewMemoryCache()),
		queue:    jobs.NewQueue(warmWorkers),
		settings: settings,
	}
	app.resolver.SetDefaultLanguage(cfg.Translate.DefaultLanguage)

	serverOpts := []httpapi.Option{
		httpapi.WithUI(cfg.Server.StaticDir, cfg.Server.UIEnabled),
		httpapi.WithWarmQueue(app.queue, cfg.Translate.WarmCronExpr),
		httpapi.WithRuntimeSettingsStore(settings),
		httpapi.WithRuntimeSettingsApplier(app.applyRuntimeSettings),
	}
	if vlt != nil {
		serverOpts = append(serverOpts, httpapi.WithVault(vlt))
	}

	app.server = httpapi.NewServer(
		chat.NewService(store, githubsrc.NewClient()),
		app.resolver,
		app.providersConfig,
		cfg.Localization,
		app.systemCredentials,
		serverOpts...,
	)
	return app, nil
}

// Run starts the warm queue, the cron scheduler, and the HTTP server,
// then blocks until ctx is canceled or the server fails.
func (a *App) Run(ctx context.Context) error {
	a.queue.Start(jobs.WarmExecutor(a.resolver, a.warmBackends))
	jobs.WarmAll(a.queue, a.resolver.DefaultLanguage(), a.resolver.Table().Languages())

	a.scheduler = cron.New()
	expr := a.warmCronExpr()
	entry, err := a.scheduler.AddFunc(expr, a.rewarm)
	if err != nil {
		return fmt.Errorf("schedule warm cron %q: %w", expr, err)
	}
	a.warmEntry = entry
	a.scheduler.Start()
	log.Info("Warm queue scheduled: %s", expr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.ListenAndServe(a.cfg.Server.Addr)
	}()
	log.Info("Listening on %s", a.cfg.Server.Addr)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			a.close()
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown: %v", err)
	}
	a.close()
	return nil
}

func (a *App) close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	a.queue.Stop()
	if err := a.store.Close(); err != nil {
		log.Warn("Close store: %v", err)
	}
	if a.fileLog != nil {
		_ = a.fileLog.Close()
	}
}

func (a *App) rewarm() {
	jobs.WarmAll(a.queue, a.resolver.DefaultLanguage(), a.resolver.Table().Languages())
}

func (a *App) providersConfig() config.ProvidersConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg.Providers
}

// systemCredentials derives the system-default credential set from the
// current configuration. User vault entries overlay these per request.
func (a *App) systemCredentials() vault.CredentialSet {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return vault.CredentialSet{
		Provider:      vault.ProviderOpenRouter,
		OpenRouterKey: a.cfg.Providers.OpenRouter.APIKey,
		GeminiKey:     a.cfg.Providers.Gemini.APIKey,
		DeepLKey:      a.cfg.Localization.APIKey,
	}
}

// warmBackends builds the collaborators for warm jobs from the system
// credentials. Warming runs on system keys only; user keys never feed
// the shared cache from the background path.
func (a *App) warmBackends() translate.Backends {
	creds := a.systemCredentials()
	var be translate.Backends
	if key, ok := vault.ResolveCredential(creds.DeepLKey, ""); ok {
		a.mu.RLock()
		apiURL := a.cfg.Localization.APIURL
		a.mu.RUnlock()
		be.Localizer = localize.NewClient(key, apiURL)
	}
	if gen, err := chat.NewGenerator(a.providersConfig(), creds); err == nil {
		be.Generator = gen
	}
	return be
}

// applyRuntimeSettings folds saved settings into the live configuration
// and reschedules the warm cron when its expression changed.
func (a *App) applyRuntimeSettings(next config.RuntimeSettings) error {
	a.mu.Lock()
	prevExpr := a.cfg.Translate.WarmCronExpr
	config.WithRuntimeSettings(next)(a.cfg)
	newExpr := a.cfg.Translate.WarmCronExpr
	newDefault := a.cfg.Translate.DefaultLanguage
	a.mu.Unlock()

	a.resolver.SetDefaultLanguage(newDefault)

	if a.scheduler != nil && newExpr != prevExpr {
		entry, err := a.scheduler.AddFunc(newExpr, a.rewarm)
		if err != nil {
			return fmt.Errorf("reschedule warm cron %q: %w", newExpr, err)
		}
		a.scheduler.Remove(a.warmEntry)
		a.warmEntry = entry
		log.Info("Warm queue rescheduled: %s", newExpr)
	}
	return nil
}

func (a *App) warmCronExpr() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg.Translate.WarmCronExpr
}
