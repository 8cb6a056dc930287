// Package api is the typed client for the marketing assistant backend.
//
// Every method performs exactly one HTTP request (unless served from the
// optional detail cache) and returns the decoded body or an error. There is
// no retry or backoff.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultBaseURL matches the backend's development address.
const DefaultBaseURL = "http://localhost:8000/api"

// Client talks to the backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger

	analyses *lru.Cache[int64, Analysis]
	prompts  *lru.Cache[int64, PromptIdea]
	contents *lru.Cache[int64, Content]
}

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client is nil")
		}
		c.http = hc
		return nil
	}
}

// WithTimeout sets a per-request timeout on the underlying http.Client.
// Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
		return nil
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) error {
		if l != nil {
			c.log = l
		}
		return nil
	}
}

// WithDetailCache keeps up to size analyses, prompt ideas and content records
// fetched by id. The backend never mutates them, so entries only leave on
// eviction or DeleteContent. A size of zero disables the cache.
func WithDetailCache(size int) Option {
	return func(c *Client) error {
		if size <= 0 {
			return nil
		}
		var err error
		if c.analyses, err = lru.New[int64, Analysis](size); err != nil {
			return fmt.Errorf("analysis cache: %w", err)
		}
		if c.prompts, err = lru.New[int64, PromptIdea](size); err != nil {
			return fmt.Errorf("prompt cache: %w", err)
		}
		if c.contents, err = lru.New[int64, Content](size); err != nil {
			return fmt.Errorf("content cache: %w", err)
		}
		return nil
	}
}

// New returns a Client for baseURL (e.g. http://localhost:8000/api).
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// configuration

func (c *Client) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	var out []APIKey
	if err := c.do(ctx, http.MethodGet, "/config/api-keys", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetAPIKey creates or replaces the key for provider.
func (c *Client) SetAPIKey(ctx context.Context, provider Provider, key string) (APIKey, error) {
	var out APIKey
	err := c.do(ctx, http.MethodPost, "/config/api-keys", apiKeyRequest{Provider: provider, APIKey: key}, &out)
	return out, err
}

// DeleteAPIKey deactivates the key for provider.
func (c *Client) DeleteAPIKey(ctx context.Context, provider Provider) (APIKey, error) {
	var out APIKey
	err := c.do(ctx, http.MethodDelete, "/config/api-keys/"+url.PathEscape(string(provider)), nil, &out)
	return out, err
}

func (c *Client) ListConfigurations(ctx context.Context) ([]Configuration, error) {
	var out []Configuration
	if err := c.do(ctx, http.MethodGet, "/config/configurations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetConfiguration creates or updates a configuration entry.
func (c *Client) SetConfiguration(ctx context.Context, key, value, description string) (Configuration, error) {
	var out Configuration
	err := c.do(ctx, http.MethodPost, "/config/configurations", configurationRequest{Key: key, Value: value, Description: description}, &out)
	return out, err
}

// analysis

func (c *Client) AnalyzeCompetitor(ctx context.Context, req AnalyzeRequest) (Analysis, error) {
	var out Analysis
	err := c.do(ctx, http.MethodPost, "/analysis/analyze", req, &out)
	return out, err
}

func (c *Client) ListAnalyses(ctx context.Context) ([]Analysis, error) {
	var out []Analysis
	if err := c.do(ctx, http.MethodGet, "/analysis/analyses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAnalysis(ctx context.Context, id int64) (Analysis, error) {
	if c.analyses != nil {
		if a, ok := c.analyses.Get(id); ok {
			return a, nil
		}
	}
	var out Analysis
	if err := c.do(ctx, http.MethodGet, "/analysis/analyses/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return Analysis{}, err
	}
	if c.analyses != nil {
		c.analyses.Add(id, out)
	}
	return out, nil
}

func (c *Client) GeneratePromptIdeas(ctx context.Context, req GeneratePromptsRequest) ([]PromptIdea, error) {
	var out []PromptIdea
	if err := c.do(ctx, http.MethodPost, "/analysis/generate-prompts", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPromptIdeas lists prompt ideas, restricted to one analysis when
// analysisID is non-zero.
func (c *Client) ListPromptIdeas(ctx context.Context, analysisID int64) ([]PromptIdea, error) {
	path := "/analysis/prompt-ideas"
	if analysisID != 0 {
		path += "?analysis_id=" + strconv.FormatInt(analysisID, 10)
	}
	var out []PromptIdea
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPromptIdea(ctx context.Context, id int64) (PromptIdea, error) {
	if c.prompts != nil {
		if p, ok := c.prompts.Get(id); ok {
			return p, nil
		}
	}
	var out PromptIdea
	if err := c.do(ctx, http.MethodGet, "/analysis/prompt-ideas/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return PromptIdea{}, err
	}
	if c.prompts != nil {
		c.prompts.Add(id, out)
	}
	return out, nil
}

// content

func (c *Client) GenerateContent(ctx context.Context, req GenerateContentRequest) (Content, error) {
	if req.Parameters == nil {
		req.Parameters = map[string]any{}
	}
	var out Content
	err := c.do(ctx, http.MethodPost, "/content/generate", req, &out)
	return out, err
}

// ListContent lists generated content, restricted to one prompt when
// promptID is non-zero.
func (c *Client) ListContent(ctx context.Context, promptID int64) ([]Content, error) {
	path := "/content/content"
	if promptID != 0 {
		path += "?prompt_id=" + strconv.FormatInt(promptID, 10)
	}
	var out []Content
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetContent(ctx context.Context, id int64) (Content, error) {
	if c.contents != nil {
		if ct, ok := c.contents.Get(id); ok {
			return ct, nil
		}
	}
	var out Content
	if err := c.do(ctx, http.MethodGet, "/content/content/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return Content{}, err
	}
	if c.contents != nil {
		c.contents.Add(id, out)
	}
	return out, nil
}

func (c *Client) DeleteContent(ctx context.Context, id int64) (Content, error) {
	var out Content
	if err := c.do(ctx, http.MethodDelete, "/content/content/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return Content{}, err
	}
	if c.contents != nil {
		c.contents.Remove(id)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: marshal request: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s %s: create request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("api request failed", "method", method, "path", path, "err", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}
	c.log.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := newStatusError(method, path, resp.StatusCode, data)
		c.log.Debug("api error response", "method", method, "path", path, "status", resp.StatusCode, "body", se.Body)
		return se
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
