package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  string
	body   map[string]any
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r recorded), opts ...Option) (*Client, func() []recorded) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			require.NoError(t, json.Unmarshal(data, &rec.body))
		}
		mu.Lock()
		calls = append(calls, rec)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		handler(w, rec)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/api/", opts...)
	require.NoError(t, err)
	return c, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), calls...)
	}
}

func TestListAnalysesDecodesBackendRecords(t *testing.T) {
	t.Parallel()

	c, calls := newTestClient(t, func(w http.ResponseWriter, r recorded) {
		_, _ = io.WriteString(w, `[{
			"id": 7,
			"competitor_url": "https://example.com",
			"analysis_type": "blog",
			"provider": "claude",
			"content_themes": [{"theme": "Pricing", "confidence": 82.5}, "Community"],
			"content_strategy": ["Weekly posts"],
			"raw_analysis": "...",
			"created_at": "2024-03-01T10:20:30.123456"
		}]`)
	})

	got, err := c.ListAnalyses(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(7), got[0].ID)
	require.Equal(t, AnalysisBlog, got[0].AnalysisType)
	require.Equal(t, ProviderClaude, got[0].Provider)
	require.Equal(t, "Pricing (82.5% confidence)", got[0].ContentThemes[0].Label())
	require.Equal(t, "Community", got[0].ContentThemes[1].Label())
	require.Equal(t, time.Date(2024, 3, 1, 10, 20, 30, 123456000, time.UTC), got[0].CreatedAt.Time)

	require.Len(t, calls(), 1)
	require.Equal(t, http.MethodGet, calls()[0].method)
	require.Equal(t, "/api/analysis/analyses", calls()[0].path)
}

func TestAnalyzeCompetitorSendsRequestBody(t *testing.T) {
	t.Parallel()

	c, calls := newTestClient(t, func(w http.ResponseWriter, r recorded) {
		_, _ = io.WriteString(w, `{"id": 3, "competitor_url": "https://acme.test", "analysis_type": "social", "provider": "gemini", "content_themes": [], "content_strategy": [], "created_at": "2024-03-01T10:20:30Z"}`)
	})

	a, err := c.AnalyzeCompetitor(context.Background(), AnalyzeRequest{
		CompetitorURL: "https://acme.test",
		AnalysisType:  AnalysisSocial,
		Provider:      ProviderGemini,
	})
	require.NoError(t, err)
	require.Equal(t, int64(3), a.ID)

	call := calls()[0]
	require.Equal(t, http.MethodPost, call.method)
	require.Equal(t, "/api/analysis/analyze", call.path)
	require.Equal(t, map[string]any{
		"competitor_url": "https://acme.test",
		"analysis_type":  "social",
		"provider":       "gemini",
	}, call.body)
}

func TestPromptIdeasFilterByAnalysis(t *testing.T) {
	t.Parallel()

	c, calls := newTestClient(t, func(w http.ResponseWriter, r recorded) {
		_, _ = io.WriteString(w, `[{"id": 1, "analysis_id": 4, "prompt_text": "Write about pricing", "confidence_score": 91.2, "provider": "openai", "created_at": "2024-03-01T10:20:30"}]`)
	})

	ideas, err := c.ListPromptIdeas(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	require.Equal(t, "91% confidence", ideas[0].ConfidenceLabel())

	_, err = c.ListPromptIdeas(context.Background(), 0)
	require.NoError(t, err)

	require.Equal(t, "analysis_id=4", calls()[0].query)
	require.Empty(t, calls()[1].query)
}

func TestGeneratePromptIdeasBody(t *testing.T) {
	t.Parallel()

	c, calls := newTestClient(t, func(w http.ResponseWriter, r recorded) {
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := c.GeneratePromptIdeas(context.Background(), GeneratePromptsRequest{AnalysisID: 9, Provider: ProviderManus, NumIdeas: 3})
	require.NoError(t, err)
	require.Equal(t, "/api/analysis/generate-prompts", calls()[0].path)
	require.Equal(t, map[string]any{"analysis_id": float64(9), "provider": "manus", "num_ideas": float64(3)}, calls()[0].body)
}

func TestGenerateContentAlwaysSendsParameters(t *testing.T) {
	t.Parallel()

	c, calls := newTestClient(t, func(w http.ResponseWriter, r recorded) {
		_, _ = io.WriteString(w, `{"id": 11, "prompt_id": 2, "content_type": "text", "content_text": "hello", "provider": "openai", "created_at": "2024-03-01T10:20:30"}`)
	})

	_, err := c.GenerateContent(context.Background(), GenerateContentRequest{PromptID: 2, ContentType: ContentText, Provider: ProviderOpenAI})
	require.NoError(t, err)
	require.Equal(t, map[string]any{}, calls()[0].body["parameters"])

	got, err := c.GenerateContent(context.Background(), GenerateContentRequest{
		PromptID:    2,
		ContentType: ContentText,
		Provider:    ProviderOpenAI,
		Parameters:  ContentParameters(LengthShort, ToneCasual),
	})
	require.NoError(t, err)
	require.Equal(t, "hello", got.ContentText)
	require.Equal(t, map[string]any{"length": "short", "tone": "casual", "max_tokens": float64(500)}, calls()[1].body["parameters"])
}

func TestConfigEndpoints(t *testing.T) {
	t.Parallel()

	c, calls := newTestClient(t, func(w http.ResponseWriter, r recorded) {
		switch r.path {
		case "/api/config/api-keys":
			if r.method == http.MethodGet {
				_, _ = io.WriteString(w, `[{"id": 1, "provider": "openai", "is_active": true, "created_at": "2024-03-01T10:20:30"}]`)
				return
			}
			_, _ = io.WriteString(w, `{"id": 2, "provider": "claude", "is_active": true, "created_at": "2024-03-01T10:20:30"}`)
		case "/api/config/api-keys/claude":
			_, _ = io.WriteString(w, `{"id": 2, "provider": "claude", "is_active": false, "created_at": "2024-03-01T10:20:30", "updated_at": null}`)
		case "/api/config/configurations":
			if r.method == http.MethodGet {
				_, _ = io.WriteString(w, `[{"id": 1, "key": "default_llm", "value": "gemini", "created_at": "2024-03-01T10:20:30"}]`)
				return
			}
			_, _ = io.WriteString(w, `{"id": 1, "key": "default_llm", "value": "claude", "description": "Default default llm", "created_at": "2024-03-01T10:20:30"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	keys, err := c.ListAPIKeys(ctx)
	require.NoError(t, err)
	require.True(t, keys[0].IsActive)

	key, err := c.SetAPIKey(ctx, ProviderClaude, "sk-test")
	require.NoError(t, err)
	require.Equal(t, ProviderClaude, key.Provider)
	require.Equal(t, map[string]any{"provider": "claude", "api_key": "sk-test"}, calls()[1].body)

	removed, err := c.DeleteAPIKey(ctx, ProviderClaude)
	require.NoError(t, err)
	require.False(t, removed.IsActive)
	require.Equal(t, http.MethodDelete, calls()[2].method)

	cfgs, err := c.ListConfigurations(ctx)
	require.NoError(t, err)
	require.Equal(t, "gemini", cfgs[0].Value)

	cfg, err := c.SetConfiguration(ctx, "default_llm", "claude", "Default default llm")
	require.NoError(t, err)
	require.Equal(t, "claude", cfg.Value)
	require.Equal(t, map[string]any{"key": "default_llm", "value": "claude", "description": "Default default llm"}, calls()[4].body)
}

func TestStatusErrorCarriesBackendDetail(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r recorded) {
		switch r.path {
		case "/api/content/content/5":
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail": "Content not found"}`)
		case "/api/analysis/analyze":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"detail": [{"loc": ["body", "provider"], "msg": "field required"}]}`)
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "upstream down")
		}
	})
	ctx := context.Background()

	_, err := c.GetContent(ctx, 5)
	require.ErrorIs(t, err, ErrNotFound)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "Content not found", se.Message())

	_, err = c.AnalyzeCompetitor(ctx, AnalyzeRequest{CompetitorURL: "x"})
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusUnprocessableEntity, se.Code)
	require.Equal(t, "field required", se.Detail)
	require.NotErrorIs(t, err, ErrNotFound)

	_, err = c.ListAnalyses(ctx)
	require.ErrorAs(t, err, &se)
	require.Empty(t, se.Detail)
	require.Equal(t, "upstream down", se.Body)
	require.Equal(t, "Request failed with status code 502", se.Message())
	require.Contains(t, err.Error(), "upstream down")
}

func TestHTMLErrorPageIsNotShownToUsers(t *testing.T) {
	t.Parallel()

	page := "<html><head><title>502 Bad Gateway</title></head><body><center><h1>502 Bad Gateway</h1></center><hr><center>nginx</center></body></html>"
	c, _ := newTestClient(t, func(w http.ResponseWriter, r recorded) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, page)
	})

	_, err := c.ListPromptIdeas(context.Background(), 0)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Empty(t, se.Detail)
	require.Equal(t, "Request failed with status code 502", se.Message())
	require.Equal(t, page, se.Body)
}

func TestDetailNotAnObject(t *testing.T) {
	t.Parallel()

	require.Empty(t, decodeDetail([]byte(`{"error": "boom"}`)))
	require.Empty(t, decodeDetail([]byte(`{"detail": null}`)))
	require.Empty(t, decodeDetail([]byte(`"plain string"`)))
	require.Equal(t, "Analysis not found", decodeDetail([]byte(`{"detail": "Analysis not found"}`)))
}

func TestTransportErrorIsWrapped(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(base)
	require.NoError(t, err)
	_, err = c.ListAnalyses(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "GET /analysis/analyses")
	var se *StatusError
	require.False(t, errors.As(err, &se))
}

func TestCanceledContextStopsRequest(t *testing.T) {
	t.Parallel()

	c, calls := newTestClient(t, func(w http.ResponseWriter, r recorded) {
		_, _ = io.WriteString(w, `[]`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListContent(ctx, 0)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, calls())
}

func TestDetailCache(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r recorded) {
		hits.Add(1)
		_, _ = io.WriteString(w, `{"id": 12, "prompt_id": 1, "content_type": "image", "content_url": "https://cdn.test/a.png", "provider": "openai", "created_at": "2024-03-01T10:20:30"}`)
	}, WithDetailCache(8))
	ctx := context.Background()

	for range 3 {
		got, err := c.GetContent(ctx, 12)
		require.NoError(t, err)
		require.Equal(t, "https://cdn.test/a.png", got.ContentURL)
	}
	require.Equal(t, int32(1), hits.Load())

	_, err := c.DeleteContent(ctx, 12)
	require.NoError(t, err)
	_, err = c.GetContent(ctx, 12)
	require.NoError(t, err)
	require.Equal(t, int32(3), hits.Load())
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	t.Parallel()

	_, err := New("ftp://example.com")
	require.Error(t, err)

	c, err := New("")
	require.NoError(t, err)
	require.Equal(t, DefaultBaseURL, c.BaseURL())
}
