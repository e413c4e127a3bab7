package httpapi

import (
	"context"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/repolingo/repolingo/internal/chat"
	"github.com/repolingo/repolingo/internal/config"
	"github.com/repolingo/repolingo/internal/jobs"
	"github.com/repolingo/repolingo/internal/localize"
	"github.com/repolingo/repolingo/internal/translate"
	"github.com/repolingo/repolingo/internal/vault"
)

type runtimeSettingsStore interface {
	GetRuntimeSettings() (config.RuntimeSettings, error)
	UpdateRuntimeSettings(next config.RuntimeSettings) (config.RuntimeSettings, error)
}

type runtimeSettingsApplier func(next config.RuntimeSettings) error

type Server struct {
	chats    *chat.Service
	resolver *translate.Resolver

	providers    func() config.ProvidersConfig
	localization config.LocalizationConfig
	systemCreds  func() vault.CredentialSet

	vault    *vault.Vault
	queue    *jobs.Queue
	warmCron string
	settings runtimeSettingsStore
	apply    runtimeSettingsApplier

	uiEnabled   bool
	uiStaticDir string

	mux    *http.ServeMux
	server *http.Server
}

type Option func(*Server)

func WithUI(staticDir string, enabled bool) Option {
	return func(s *Server) {
		s.uiStaticDir = staticDir
		s.uiEnabled = enabled
	}
}

// WithVault enables per-user credential storage.
func WithVault(v *vault.Vault) Option {
	return func(s *Server) {
		s.vault = v
	}
}

// WithWarmQueue exposes the warm queue over the jobs endpoints.
func WithWarmQueue(q *jobs.Queue, cronExpr string) Option {
	return func(s *Server) {
		s.queue = q
		s.warmCron = cronExpr
	}
}

func WithRuntimeSettingsStore(store runtimeSettingsStore) Option {
	return func(s *Server) {
		s.settings = store
	}
}

func WithRuntimeSettingsApplier(apply runtimeSettingsApplier) Option {
	return func(s *Server) {
		s.apply = apply
	}
}

// NewServer wires the API surface. providers and systemCreds are
// functions so runtime settings updates take effect without a restart.
func NewServer(
	chats *chat.Service,
	resolver *translate.Resolver,
	providers func() config.ProvidersConfig,
	localization config.LocalizationConfig,
	systemCreds func() vault.CredentialSet,
	opts ...Option,
) *Server {
	if providers == nil {
		providers = func() config.ProvidersConfig { return config.ProvidersConfig{} }
	}
	if systemCreds == nil {
		systemCreds = func() vault.CredentialSet { return vault.CredentialSet{} }
	}
	s := &Server{
		chats:        chats,
		resolver:     resolver,
		providers:    providers,
		localization: localization,
		systemCreds:  systemCreds,
		uiEnabled:    false,
		mux:          http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/translate", s.handleTranslate)
	s.mux.HandleFunc("/api/translate/batch", s.handleTranslateBatch)
	s.mux.HandleFunc("/api/languages", s.handleLanguages)
	s.mux.HandleFunc("/api/chats", s.handleChats)
	s.mux.HandleFunc("/api/chats/", s.handleChatSubroutes)
	s.mux.HandleFunc("/api/credentials", s.handleCredentials)
	s.mux.HandleFunc("/api/jobs", s.handleJobs)
	s.mux.HandleFunc("/api/settings", s.handleSettings)
	s.mux.HandleFunc("/", s.handleStatic)
}

// userID identifies the caller. There is no account system; the UI
// sends a stable per-browser id and everything else shares "default".
func userID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-User-ID")); id != "" {
		return id
	}
	return "default"
}

// effectiveCredentials overlays the caller's stored keys on the system
// defaults. Computed per request, never cached.
func (s *Server) effectiveCredentials(ctx context.Context, user string) (vault.CredentialSet, error) {
	system := s.systemCreds()
	if s.vault == nil {
		return vault.CredentialSet{}.Overlay(system), nil
	}
	userSet, err := s.vault.Get(ctx, user)
	if err != nil {
		return vault.CredentialSet{}, err
	}
	return userSet.Overlay(system), nil
}

// backendsFor builds the translation collaborators the credential set
// affords. Missing keys leave the matching tier nil, which the resolver
// skips.
func (s *Server) backendsFor(creds vault.CredentialSet) translate.Backends {
	var be translate.Backends
	if key, ok := vault.ResolveCredential(creds.DeepLKey, ""); ok {
		be.Localizer = localize.NewClient(key, s.localization.APIURL)
	}
	if gen, err := chat.NewGenerator(s.providers(), creds); err == nil {
		be.Generator = gen
	}
	return be
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if !s.uiEnabled || s.uiStaticDir == "" {
		http.NotFound(w, r)
		return
	}

	rel := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	indexPath := filepath.Join(s.uiStaticDir, "index.html")

	if rel == "" || !strings.Contains(filepath.Base(rel), ".") {
		http.ServeFile(w, r, indexPath)
		return
	}

	filePath := filepath.Join(s.uiStaticDir, rel)
	if _, err := os.Stat(filePath); err != nil {
		// SPA fallback: non-existing static file path returns index
		http.ServeFile(w, r, indexPath)
		return
	}
	http.ServeFile(w, r, filePath)
}
