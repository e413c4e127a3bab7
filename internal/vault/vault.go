// Package vault stores per-user provider keys encrypted at rest and
// applies the user-over-system overlay that yields the effective
// credential set for a request.
package vault

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// StoredCredentials is the at-rest form: the provider choice in clear,
// every key as sealed ciphertext. The storage layer never sees key
// material.
type StoredCredentials struct {
	Provider         string
	OpenRouterKeyEnc []byte
	GeminiKeyEnc     []byte
	DeepLKeyEnc      []byte
}

// Store persists sealed credentials by user id.
type Store interface {
	GetCredentials(ctx context.Context, userID string) (StoredCredentials, bool, error)
	PutCredentials(ctx context.Context, userID string, creds StoredCredentials) error
}

// Vault seals and opens credential sets with XChaCha20-Poly1305 under a
// process-wide master key.
type Vault struct {
	aead  cipher.AEAD
	store Store
}

// New creates a vault from a 64-hex-character (32 byte) master key.
func New(masterKeyHex string, store Store) (*Vault, error) {
	key, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, fmt.Errorf("master key is not valid hex: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("master key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	return &Vault{aead: aead, store: store}, nil
}

// Put seals and persists a user's credential set. Empty keys are stored
// as absent, not as sealed empty strings, so the overlay can fall back
// to system defaults for them.
func (v *Vault) Put(ctx context.Context, userID string, creds CredentialSet) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	stored := StoredCredentials{Provider: creds.Provider}
	var err error
	if stored.OpenRouterKeyEnc, err = v.sealNonEmpty(creds.OpenRouterKey); err != nil {
		return err
	}
	if stored.GeminiKeyEnc, err = v.sealNonEmpty(creds.GeminiKey); err != nil {
		return err
	}
	if stored.DeepLKeyEnc, err = v.sealNonEmpty(creds.DeepLKey); err != nil {
		return err
	}

	return v.store.PutCredentials(ctx, userID, stored)
}

// Get loads and opens a user's credential set. A user with nothing
// stored yields the zero set, which overlays to pure system defaults.
// The returned plaintext must only live for the resolving request.
func (v *Vault) Get(ctx context.Context, userID string) (CredentialSet, error) {
	stored, ok, err := v.store.GetCredentials(ctx, userID)
	if err != nil {
		return CredentialSet{}, fmt.Errorf("load credentials: %w", err)
	}
	if !ok {
		return CredentialSet{}, nil
	}

	ret := CredentialSet{Provider: stored.Provider}
	if ret.OpenRouterKey, err = v.openIfPresent(stored.OpenRouterKeyEnc); err != nil {
		return CredentialSet{}, err
	}
	if ret.GeminiKey, err = v.openIfPresent(stored.GeminiKeyEnc); err != nil {
		return CredentialSet{}, err
	}
	if ret.DeepLKey, err = v.openIfPresent(stored.DeepLKeyEnc); err != nil {
		return CredentialSet{}, err
	}
	return ret, nil
}

func (v *Vault) sealNonEmpty(plaintext string) ([]byte, error) {
	if plaintext == "" {
		return nil, nil
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return v.aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

func (v *Vault) openIfPresent(sealed []byte) (string, error) {
	if len(sealed) == 0 {
		return "", nil
	}
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return "", fmt.Errorf("sealed credential is truncated")
	}
	nonce, ciphertext := sealed[:chacha20poly1305.NonceSizeX], sealed[chacha20poly1305.NonceSizeX:]
	plaintext, err := v.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("open credential: %w", err)
	}
	return string(plaintext), nil
}
