package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/repolingo/repolingo/pkg/log"
)

// Config holds all application configuration.
// Supports environment variables with sensible defaults.
//
// Environment Variables:
// Generative providers:
// - OPENROUTER_API_KEY: system-wide OpenRouter key (optional; users may bring their own)
// - OPENROUTER_API_URL: OpenRouter endpoint (default: https://openrouter.ai/api/v1)
// - OPENROUTER_MODEL: model name (default: openai/gpt-4o-mini)
// - GEMINI_API_KEY: system-wide Gemini key (optional)
// - GEMINI_API_URL: Gemini OpenAI-compatible endpoint
// - GEMINI_MODEL: model name (default: gemini-2.0-flash)
// - LLM_MAX_TOKENS: maximum completion tokens (default: 8000)
// - LLM_TEMPERATURE: sampling temperature (default: 0.7)
// - LLM_TIMEOUT: request timeout in seconds (default: 60)
//
// Localization engine:
// - DEEPL_API_KEY: system-wide DeepL key (optional)
// - DEEPL_API_URL: DeepL endpoint (default: https://api-free.deepl.com/v2)
//
// Vault:
// - VAULT_MASTER_KEY: 64 hex chars (32 bytes), required to store user keys
//
// Server & storage:
// - HTTP_ADDR: listen address (default: :8080)
// - UI_STATIC_DIR: directory with the built web UI (default: /app/ui)
// - UI_ENABLED: serve the UI (default: true)
// - DB_PATH: sqlite database path (default: /app/data/repolingo.db)
// - LOG_FILE: append logs to this file instead of stdout (optional)
//
// Translation:
// - DEFAULT_LANGUAGE: UI source language (default: en)
// - WARM_CRON_EXPR: cron for re-warming UI translations (default: 0 3 * * *)
// - LOG_LEVEL: debug|info|warn|error (default: info)

type Config struct {
	Providers ProvidersConfig `json:"providers"`

	Localization LocalizationConfig `json:"localization"`

	Vault VaultConfig `json:"vault"`

	Server ServerConfig `json:"server"`

	Translate TranslateConfig `json:"translate"`
}

// ProvidersConfig holds the system-wide defaults for the generative
// providers. User-supplied keys from the vault overlay these per request.
type ProvidersConfig struct {
	OpenRouter  ProviderConfig `json:"openrouter"`
	Gemini      ProviderConfig `json:"gemini"`
	MaxTokens   int            `json:"max_tokens"`
	Temperature float64        `json:"temperature"`
	Timeout     int            `json:"timeout"`
}

// ProviderConfig holds the connection settings for one generative provider.
type ProviderConfig struct {
	APIKey string `json:"api_key"`
	APIURL string `json:"api_url"`
	Model  string `json:"model"`
}

// LocalizationConfig holds the remote localization engine settings.
type LocalizationConfig struct {
	APIKey string `json:"api_key"`
	APIURL string `json:"api_url"`
}

// VaultConfig holds the master key for credential encryption at rest.
type VaultConfig struct {
	MasterKey string `json:"-"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr      string `json:"addr"`
	StaticDir string `json:"static_dir"`
	UIEnabled bool   `json:"ui_enabled"`
	DBPath    string `json:"db_path"`
	LogLevel  string `json:"log_level"`
	LogFile   string `json:"log_file"`
}

// TranslateConfig holds the translation pipeline settings.
type TranslateConfig struct {
	DefaultLanguage string `json:"default_language"`
	WarmCronExpr    string `json:"warm_cron_expr"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		Providers: ProvidersConfig{
			OpenRouter: ProviderConfig{
				APIKey: getEnvString("OPENROUTER_API_KEY", ""),
				APIURL: getEnvString("OPENROUTER_API_URL", "https://openrouter.ai/api/v1"),
				Model:  getEnvString("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
			},
			Gemini: ProviderConfig{
				APIKey: getEnvString("GEMINI_API_KEY", ""),
				APIURL: getEnvString("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
				Model:  getEnvString("GEMINI_MODEL", "gemini-2.0-flash"),
			},
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 8000),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
			Timeout:     getEnvInt("LLM_TIMEOUT", 60),
		},
		Localization: LocalizationConfig{
			APIKey: getEnvString("DEEPL_API_KEY", ""),
			APIURL: getEnvString("DEEPL_API_URL", "https://api-free.deepl.com/v2"),
		},
		Vault: VaultConfig{
			MasterKey: getEnvString("VAULT_MASTER_KEY", ""),
		},
		Server: ServerConfig{
			Addr:      getEnvString("HTTP_ADDR", ":8080"),
			StaticDir: getEnvString("UI_STATIC_DIR", "/app/ui"),
			UIEnabled: getEnvBool("UI_ENABLED", true),
			DBPath:    getEnvString("DB_PATH", "/app/data/repolingo.db"),
			LogLevel:  getEnvString("LOG_LEVEL", "info"),
			LogFile:   getEnvString("LOG_FILE", ""),
		},
		Translate: TranslateConfig{
			DefaultLanguage: getEnvString("DEFAULT_LANGUAGE", "en"),
			WarmCronExpr:    getEnvString("WARM_CRON_EXPR", "0 3 * * *"),
		},
	}

	log.Debug("Config loaded: addr=%s db=%s", config.Server.Addr, config.Server.DBPath)

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set.
// Provider keys are intentionally optional: a deployment may rely solely
// on user-supplied keys from the vault.
func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.Server.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean value from environment variables with default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
