package vault

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	creds map[string]StoredCredentials
}

func newMemStore() *memStore {
	return &memStore{creds: make(map[string]StoredCredentials)}
}

func (m *memStore) GetCredentials(_ context.Context, userID string) (StoredCredentials, bool, error) {
	c, ok := m.creds[userID]
	return c, ok, nil
}

func (m *memStore) PutCredentials(_ context.Context, userID string, creds StoredCredentials) error {
	m.creds[userID] = creds
	return nil
}

func testMasterKey() string {
	return hex.EncodeToString(make([]byte, 32))
}

func TestVaultRoundTrip(t *testing.T) {
	store := newMemStore()
	v, err := New(testMasterKey(), store)
	require.NoError(t, err)

	in := CredentialSet{
		Provider:      ProviderGemini,
		OpenRouterKey: "sk-or-abc123",
		GeminiKey:     "AIza-def456",
	}
	require.NoError(t, v.Put(context.Background(), "user-1", in))

	out, err := v.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestVaultStoresCiphertextOnly(t *testing.T) {
	store := newMemStore()
	v, err := New(testMasterKey(), store)
	require.NoError(t, err)

	require.NoError(t, v.Put(context.Background(), "user-1", CredentialSet{OpenRouterKey: "sk-or-secret"}))

	stored := store.creds["user-1"]
	assert.NotContains(t, string(stored.OpenRouterKeyEnc), "sk-or-secret")
	assert.Nil(t, stored.GeminiKeyEnc, "empty keys must be stored as absent")
	assert.Nil(t, stored.DeepLKeyEnc)
}

func TestVaultUnknownUserYieldsZeroSet(t *testing.T) {
	v, err := New(testMasterKey(), newMemStore())
	require.NoError(t, err)

	out, err := v.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, CredentialSet{}, out)
}

func TestVaultRejectsBadMasterKey(t *testing.T) {
	_, err := New("not hex", newMemStore())
	assert.Error(t, err)

	_, err = New("abcd", newMemStore())
	assert.Error(t, err, "short keys must be rejected")
}

func TestVaultTamperedCiphertextFailsOpen(t *testing.T) {
	store := newMemStore()
	v, err := New(testMasterKey(), store)
	require.NoError(t, err)

	require.NoError(t, v.Put(context.Background(), "user-1", CredentialSet{OpenRouterKey: "sk-or-secret"}))

	stored := store.creds["user-1"]
	stored.OpenRouterKeyEnc[len(stored.OpenRouterKeyEnc)-1] ^= 0xff
	store.creds["user-1"] = stored

	_, err = v.Get(context.Background(), "user-1")
	assert.Error(t, err)
}

func TestResolveCredential(t *testing.T) {
	tests := []struct {
		name   string
		user   string
		system string
		want   string
		wantOK bool
	}{
		{"user wins", "u-key", "s-key", "u-key", true},
		{"system fallback", "", "s-key", "s-key", true},
		{"blank user falls back", "   ", "s-key", "s-key", true},
		{"neither", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveCredential(tt.user, tt.system)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestOverlay(t *testing.T) {
	system := CredentialSet{
		Provider:      ProviderOpenRouter,
		OpenRouterKey: "sys-or",
		DeepLKey:      "sys-deepl",
	}
	user := CredentialSet{
		Provider:  ProviderGemini,
		GeminiKey: "usr-gemini",
	}

	eff := user.Overlay(system)
	assert.Equal(t, ProviderGemini, eff.Provider)
	assert.Equal(t, "sys-or", eff.OpenRouterKey)
	assert.Equal(t, "usr-gemini", eff.GeminiKey)
	assert.Equal(t, "sys-deepl", eff.DeepLKey)

	// No user set at all: pure system defaults.
	eff = CredentialSet{}.Overlay(system)
	assert.Equal(t, system, eff)

	// Neither side names a provider: openrouter is the default.
	eff = CredentialSet{}.Overlay(CredentialSet{})
	assert.Equal(t, ProviderOpenRouter, eff.Provider)
}

func TestGenerativeKey(t *testing.T) {
	s := CredentialSet{Provider: ProviderGemini, OpenRouterKey: "or", GeminiKey: "gm"}
	key, ok := s.GenerativeKey()
	require.True(t, ok)
	assert.Equal(t, "gm", key)

	s.Provider = ProviderOpenRouter
	key, ok = s.GenerativeKey()
	require.True(t, ok)
	assert.Equal(t, "or", key)

	_, ok = CredentialSet{Provider: ProviderGemini}.GenerativeKey()
	assert.False(t, ok)
}

func TestRedactedNeverEchoesSecrets(t *testing.T) {
	s := CredentialSet{Provider: ProviderOpenRouter, OpenRouterKey: "sk-or-secret"}
	red := s.Redacted()

	assert.Equal(t, true, red["has_openrouter_key"])
	assert.Equal(t, false, red["has_gemini_key"])
	for _, v := range red {
		assert.NotEqual(t, "sk-or-secret", v)
	}
}
