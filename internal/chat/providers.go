package chat

import (
	"context"
	"fmt"

	"github.com/repolingo/repolingo/internal/config"
	"github.com/repolingo/repolingo/internal/llm"
	"github.com/repolingo/repolingo/internal/vault"
)

// Generator is the generative collaborator a chat turn needs.
type Generator interface {
	SimpleChat(ctx context.Context, prompt string, systemPrompt string) (string, error)
}

// NewGenerator builds an LLM client for the effective credential set.
// The set decides the provider; the server config supplies endpoint,
// model, and tuning. Returns an error when the set carries no usable key
// for its provider.
func NewGenerator(providers config.ProvidersConfig, creds vault.CredentialSet) (Generator, error) {
	key, ok := creds.GenerativeKey()
	if !ok {
		return nil, fmt.Errorf("no API key configured for provider %q", creds.Provider)
	}

	provider := providers.OpenRouter
	if creds.Provider == vault.ProviderGemini {
		provider = providers.Gemini
	}

	return llm.NewClient(&llm.Config{
		APIKey:      key,
		APIURL:      provider.APIURL,
		Model:       provider.Model,
		MaxTokens:   providers.MaxTokens,
		Temperature: providers.Temperature,
		Timeout:     providers.Timeout,
		AppName:     "repolingo",
	})
}
