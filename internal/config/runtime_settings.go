package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
)

const DefaultRuntimeSettingsFile = "/app/config/settings.json"

// RuntimeSettings are the operator-editable knobs exposed over the API.
// Provider keys here are the system-wide defaults; per-user keys live in
// the vault and always win.
type RuntimeSettings struct {
	OpenRouterAPIKey string `json:"openrouter_api_key"`
	OpenRouterModel  string `json:"openrouter_model"`
	GeminiAPIKey     string `json:"gemini_api_key"`
	GeminiModel      string `json:"gemini_model"`
	DeepLAPIKey      string `json:"deepl_api_key"`
	DefaultLanguage  string `json:"default_language"`
	WarmCronExpr     string `json:"warm_cron_expr"`
}

func RuntimeSettingsFilePath() string {
	return getEnvString("SETTINGS_FILE", DefaultRuntimeSettingsFile)
}

func (s RuntimeSettings) Validate() error {
	if strings.TrimSpace(s.DefaultLanguage) == "" {
		return fmt.Errorf("default_language is required")
	}
	if _, err := language.Parse(s.DefaultLanguage); err != nil {
		return fmt.Errorf("invalid default_language: %w", err)
	}
	if strings.TrimSpace(s.WarmCronExpr) == "" {
		return fmt.Errorf("warm_cron_expr is required")
	}
	if _, err := cron.ParseStandard(s.WarmCronExpr); err != nil {
		return fmt.Errorf("invalid warm_cron_expr: %w", err)
	}
	return nil
}

func (c *Config) RuntimeSettings() RuntimeSettings {
	return RuntimeSettings{
		OpenRouterAPIKey: c.Providers.OpenRouter.APIKey,
		OpenRouterModel:  c.Providers.OpenRouter.Model,
		GeminiAPIKey:     c.Providers.Gemini.APIKey,
		GeminiModel:      c.Providers.Gemini.Model,
		DeepLAPIKey:      c.Localization.APIKey,
		DefaultLanguage:  c.Translate.DefaultLanguage,
		WarmCronExpr:     c.Translate.WarmCronExpr,
	}
}

func WithRuntimeSettings(settings RuntimeSettings) Option {
	return func(c *Config) {
		if strings.TrimSpace(settings.OpenRouterAPIKey) != "" {
			c.Providers.OpenRouter.APIKey = settings.OpenRouterAPIKey
		}
		if strings.TrimSpace(settings.OpenRouterModel) != "" {
			c.Providers.OpenRouter.Model = settings.OpenRouterModel
		}
		if strings.TrimSpace(settings.GeminiAPIKey) != "" {
			c.Providers.Gemini.APIKey = settings.GeminiAPIKey
		}
		if strings.TrimSpace(settings.GeminiModel) != "" {
			c.Providers.Gemini.Model = settings.GeminiModel
		}
		if strings.TrimSpace(settings.DeepLAPIKey) != "" {
			c.Localization.APIKey = settings.DeepLAPIKey
		}
		if _, err := language.Parse(settings.DefaultLanguage); err == nil {
			c.Translate.DefaultLanguage = settings.DefaultLanguage
		}
		if strings.TrimSpace(settings.WarmCronExpr) != "" {
			c.Translate.WarmCronExpr = settings.WarmCronExpr
		}
	}
}

func LoadRuntimeSettingsFile(path string) (RuntimeSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuntimeSettings{}, err
	}
	var settings RuntimeSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return RuntimeSettings{}, fmt.Errorf("invalid settings file: %w", err)
	}
	return settings, nil
}

func WriteRuntimeSettingsFile(path string, settings RuntimeSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	content, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	content = append(content, '\n')

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

type RuntimeSettingsStore struct {
	path string

	mu      sync.RWMutex
	current RuntimeSettings
}

func NewRuntimeSettingsStore(path string, initial RuntimeSettings) (*RuntimeSettingsStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("settings file path is required")
	}
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &RuntimeSettingsStore{
		path:    path,
		current: initial,
	}, nil
}

func (s *RuntimeSettingsStore) GetRuntimeSettings() (RuntimeSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

func (s *RuntimeSettingsStore) UpdateRuntimeSettings(next RuntimeSettings) (RuntimeSettings, error) {
	if err := next.Validate(); err != nil {
		return RuntimeSettings{}, err
	}
	if err := WriteRuntimeSettingsFile(s.path, next); err != nil {
		return RuntimeSettings{}, err
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return next, nil
}
