package localize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/time/rate"
)

// Client talks to a DeepL-style localization engine. One request can
// carry many texts, which is what the batch pipeline relies on.
// Thread-safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a localization client for the given endpoint.
// Requests are rate limited to stay inside the free-tier quota.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
}

type translateRequest struct {
	Text       []string `json:"text"`
	SourceLang string   `json:"source_lang,omitempty"`
	TargetLang string   `json:"target_lang"`
}

type translateResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
	Message string `json:"message,omitempty"`
}

// Translate renders a single text into the target language.
func (c *Client) Translate(ctx context.Context, sourceLang, targetLang, text string) (string, error) {
	results, err := c.translateTexts(ctx, sourceLang, targetLang, []string{text})
	if err != nil {
		return "", err
	}
	if len(results) != 1 {
		return "", fmt.Errorf("expected 1 translation, got %d", len(results))
	}
	return results[0], nil
}

// Localize translates every value of content into the target language
// with a single engine call, preserving keys. The input map is not
// modified.
func (c *Client) Localize(ctx context.Context, sourceLang, targetLang string, content map[string]string) (map[string]string, error) {
	if len(content) == 0 {
		return map[string]string{}, nil
	}

	// Stable ordering so responses map back to their keys.
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	texts := make([]string, len(keys))
	for i, k := range keys {
		texts[i] = content[k]
	}

	results, err := c.translateTexts(ctx, sourceLang, targetLang, texts)
	if err != nil {
		return nil, err
	}
	if len(results) != len(keys) {
		return nil, fmt.Errorf("translation count mismatch: sent %d, got %d", len(keys), len(results))
	}

	ret := make(map[string]string, len(keys))
	for i, k := range keys {
		ret[k] = results[i]
	}
	return ret, nil
}

func (c *Client) translateTexts(ctx context.Context, sourceLang, targetLang string, texts []string) ([]string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, fmt.Errorf("localization api key is not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	payload := translateRequest{
		Text:       texts,
		SourceLang: engineLang(sourceLang),
		TargetLang: engineLang(targetLang),
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed translateResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := parsed.Message
		if msg == "" {
			msg = string(responseBody)
		}
		return nil, fmt.Errorf("localization request failed with status %d: %s", resp.StatusCode, msg)
	}

	ret := make([]string, len(parsed.Translations))
	for i, tr := range parsed.Translations {
		ret[i] = tr.Text
	}
	return ret, nil
}

// engineLang converts a language code to the engine's uppercase base
// form ("pt-BR" → "PT"). Unparseable codes are uppercased as-is.
func engineLang(code string) string {
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	base, _ := tag.Base()
	return strings.ToUpper(base.String())
}
