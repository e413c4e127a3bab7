package githubsrc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxContentBytes caps fetched content so one giant source file does not
// blow the prompt budget downstream.
const maxContentBytes = 256 * 1024

// Content is what a fetched resource contributes to a chat prompt.
type Content struct {
	Resource Resource
	Title    string // issue title; empty for files
	Body     string
}

// Fetcher resolves a parsed resource to its content.
type Fetcher interface {
	Fetch(ctx context.Context, res Resource) (Content, error)
}

// Client fetches files from raw.githubusercontent.com and issues from
// the GitHub REST API. Both endpoints work unauthenticated for public
// repos, which is the only case the chat supports.
type Client struct {
	rawBaseURL string
	apiBaseURL string
	httpClient *http.Client
}

type issueResponse struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	State string `json:"state"`
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		rawBaseURL: "https://raw.githubusercontent.com",
		apiBaseURL: "https://api.github.com",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type ClientOption func(*Client)

// WithBaseURLs overrides both endpoints, for tests.
func WithBaseURLs(rawBase, apiBase string) ClientOption {
	return func(c *Client) {
		c.rawBaseURL = rawBase
		c.apiBaseURL = apiBase
	}
}

func (c *Client) Fetch(ctx context.Context, res Resource) (Content, error) {
	switch res.Kind {
	case KindFile:
		return c.fetchFile(ctx, res)
	case KindIssue:
		return c.fetchIssue(ctx, res)
	default:
		return Content{}, fmt.Errorf("unknown resource kind %q", res.Kind)
	}
}

func (c *Client) fetchFile(ctx context.Context, res Resource) (Content, error) {
	url := fmt.Sprintf("%s/%s/%s/%s/%s", c.rawBaseURL, res.Owner, res.Repo, res.Ref, res.Path)
	body, err := c.get(ctx, url, "")
	if err != nil {
		return Content{}, fmt.Errorf("fetch file %s: %w", res.Path, err)
	}
	return Content{Resource: res, Body: string(body)}, nil
}

func (c *Client) fetchIssue(ctx context.Context, res Resource) (Content, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d", c.apiBaseURL, res.Owner, res.Repo, res.Number)
	body, err := c.get(ctx, url, "application/vnd.github+json")
	if err != nil {
		return Content{}, fmt.Errorf("fetch issue #%d: %w", res.Number, err)
	}

	var issue issueResponse
	if err := json.Unmarshal(body, &issue); err != nil {
		return Content{}, fmt.Errorf("parse issue response: %w", err)
	}
	return Content{Resource: res, Title: issue.Title, Body: issue.Body}, nil
}

func (c *Client) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxContentBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("resource not found (is the repo public?)")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
