package vault

import "strings"

// Provider selects which generative backend answers chat requests.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// CredentialSet is one user's provider keys plus their provider choice.
// Any field may be empty. The effective set for a request is the user's
// set overlaid on the system defaults, user values winning per field.
type CredentialSet struct {
	Provider      string `json:"provider"`
	OpenRouterKey string `json:"openrouter_key,omitempty"`
	GeminiKey     string `json:"gemini_key,omitempty"`
	DeepLKey      string `json:"deepl_key,omitempty"`
}

// ResolveCredential applies the overlay precedence for a single
// credential: the user value masks the system value when present.
// The boolean is false when neither side has a value.
func ResolveCredential(userValue, systemValue string) (string, bool) {
	if v := strings.TrimSpace(userValue); v != "" {
		return v, true
	}
	if v := strings.TrimSpace(systemValue); v != "" {
		return v, true
	}
	return "", false
}

// Overlay computes the effective credential set for one request. The
// result must not be cached across requests: it may contain another
// user's keys otherwise.
func (s CredentialSet) Overlay(defaults CredentialSet) CredentialSet {
	ret := CredentialSet{Provider: s.Provider}
	if ret.Provider == "" {
		ret.Provider = defaults.Provider
	}
	if ret.Provider == "" {
		ret.Provider = ProviderOpenRouter
	}
	ret.OpenRouterKey, _ = ResolveCredential(s.OpenRouterKey, defaults.OpenRouterKey)
	ret.GeminiKey, _ = ResolveCredential(s.GeminiKey, defaults.GeminiKey)
	ret.DeepLKey, _ = ResolveCredential(s.DeepLKey, defaults.DeepLKey)
	return ret
}

// GenerativeKey returns the key for the selected provider.
func (s CredentialSet) GenerativeKey() (string, bool) {
	switch s.Provider {
	case ProviderGemini:
		return ResolveCredential(s.GeminiKey, "")
	default:
		return ResolveCredential(s.OpenRouterKey, "")
	}
}

// Redacted returns a copy safe to serialize back to a client: keys are
// replaced by a presence marker so the UI can show what is configured
// without ever echoing secrets.
func (s CredentialSet) Redacted() map[string]any {
	mask := func(v string) bool { return strings.TrimSpace(v) != "" }
	return map[string]any{
		"provider":           s.Provider,
		"has_openrouter_key": mask(s.OpenRouterKey),
		"has_gemini_key":     mask(s.GeminiKey),
		"has_deepl_key":      mask(s.DeepLKey),
	}
}
