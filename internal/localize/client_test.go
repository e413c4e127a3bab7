package localize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate", r.URL.Path)
		assert.Equal(t, "DeepL-Auth-Key test-key", r.Header.Get("Authorization"))

		var req translateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "EN", req.SourceLang)
		assert.Equal(t, "ES", req.TargetLang)
		require.Len(t, req.Text, 1)

		_ = json.NewEncoder(w).Encode(translateResponse{
			Translations: []struct {
				Text string `json:"text"`
			}{{Text: "Hola"}},
		})
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)
	got, err := client.Translate(context.Background(), "en", "es", "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hola", got)
}

func TestLocalizePreservesKeys(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req translateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		// Echo with a marker; order must match the request order.
		resp := translateResponse{}
		for _, text := range req.Text {
			resp.Translations = append(resp.Translations, struct {
				Text string `json:"text"`
			}{Text: "[es] " + text})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL)
	content := map[string]string{
		"send":    "Send",
		"cancel":  "Cancel",
		"newChat": "New chat",
	}
	got, err := client.Localize(context.Background(), "en", "es", content)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"send":    "[es] Send",
		"cancel":  "[es] Cancel",
		"newChat": "[es] New chat",
	}, got)
	// Input map untouched.
	assert.Equal(t, "Send", content["send"])
}

func TestLocalizeEmptyContent(t *testing.T) {
	client := NewClient("test-key", "http://localhost:1")
	got, err := client.Localize(context.Background(), "en", "es", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTranslateMissingKey(t *testing.T) {
	client := NewClient("", "http://localhost:1")
	_, err := client.Translate(context.Background(), "en", "es", "Hello")
	assert.Error(t, err)
}

func TestTranslateEngineError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid auth key"})
	}))
	defer server.Close()

	client := NewClient("bad-key", server.URL)
	_, err := client.Translate(context.Background(), "en", "es", "Hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid auth key")
}

func TestEngineLang(t *testing.T) {
	assert.Equal(t, "EN", engineLang("en"))
	assert.Equal(t, "PT", engineLang("pt-BR"))
	assert.Equal(t, "", engineLang(""))
	assert.Equal(t, "X1!", engineLang("x1!"))
}
