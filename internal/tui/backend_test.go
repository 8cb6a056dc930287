package tui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/genmark/internal/api"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// fakeBackend is an in-memory stand-in for the REST backend.
type fakeBackend struct {
	mu       sync.Mutex
	nextID   int64
	analyses []api.Analysis
	prompts  []api.PromptIdea
	contents []api.Content
	keys     []api.APIKey
	configs  []api.Configuration
	fail     map[string]int
	requests []recordedRequest
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nextID: 100, fail: map[string]int{}}
}

func (f *fakeBackend) start(t *testing.T) *api.Client {
	t.Helper()
	srv := httptest.NewServer(f.routes())
	t.Cleanup(srv.Close)
	c, err := api.New(srv.URL)
	require.NoError(t, err)
	return c
}

func (f *fakeBackend) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeBackend) failWith(method, path string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method+" "+path] = code
}

// reset forgets the requests recorded so far.
func (f *fakeBackend) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

func (f *fakeBackend) calls(method, path string) []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedRequest
	for _, r := range f.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeBackend) routes() http.Handler {
	mux := http.NewServeMux()
	now := api.Timestamp{Time: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}

	mux.HandleFunc("GET /analysis/analyses", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.analyses)
	})
	mux.HandleFunc("POST /analysis/analyze", func(w http.ResponseWriter, r *http.Request) {
		body := f.last().Body
		a := api.Analysis{
			ID:              f.id(),
			CompetitorURL:   body["competitor_url"].(string),
			AnalysisType:    api.AnalysisType(body["analysis_type"].(string)),
			Provider:        api.Provider(body["provider"].(string)),
			ContentThemes:   []api.Theme{api.ObjectTheme(map[string]any{"theme": "pricing", "confidence": 90.0})},
			ContentStrategy: []string{"weekly posts"},
			CreatedAt:       now,
		}
		f.analyses = append(f.analyses, a)
		writeJSON(w, a)
	})
	mux.HandleFunc("GET /analysis/prompt-ideas", func(w http.ResponseWriter, r *http.Request) {
		out := []api.PromptIdea{}
		for _, p := range f.prompts {
			if q := r.URL.Query().Get("analysis_id"); q == "" || q == strconv.FormatInt(p.AnalysisID, 10) {
				out = append(out, p)
			}
		}
		writeJSON(w, out)
	})
	mux.HandleFunc("POST /analysis/generate-prompts", func(w http.ResponseWriter, r *http.Request) {
		body := f.last().Body
		analysisID := int64(body["analysis_id"].(float64))
		out := []api.PromptIdea{}
		for i := 0; i < int(body["num_ideas"].(float64)); i++ {
			p := api.PromptIdea{ID: f.id(), AnalysisID: analysisID, PromptText: "Idea " + strconv.Itoa(i+1), CreatedAt: now}
			out = append(out, p)
		}
		f.prompts = append(f.prompts, out...)
		writeJSON(w, out)
	})
	mux.HandleFunc("GET /content/content", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.contents)
	})
	mux.HandleFunc("POST /content/generate", func(w http.ResponseWriter, r *http.Request) {
		body := f.last().Body
		c := api.Content{
			ID:          f.id(),
			PromptID:    int64(body["prompt_id"].(float64)),
			ContentType: api.ContentType(body["content_type"].(string)),
			Provider:    api.Provider(body["provider"].(string)),
			ContentText: "Generated copy",
			CreatedAt:   now,
		}
		f.contents = append(f.contents, c)
		writeJSON(w, c)
	})
	mux.HandleFunc("DELETE /content/content/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		for i, c := range f.contents {
			if c.ID == id {
				f.contents = append(f.contents[:i], f.contents[i+1:]...)
				writeJSON(w, c)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]string{"detail": "Content not found"})
	})
	mux.HandleFunc("GET /config/api-keys", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.keys)
	})
	mux.HandleFunc("POST /config/api-keys", func(w http.ResponseWriter, r *http.Request) {
		k := api.APIKey{ID: f.id(), Provider: api.Provider(f.last().Body["provider"].(string)), IsActive: true, CreatedAt: now}
		f.keys = append(f.keys, k)
		writeJSON(w, k)
	})
	mux.HandleFunc("DELETE /config/api-keys/{provider}", func(w http.ResponseWriter, r *http.Request) {
		for i, k := range f.keys {
			if string(k.Provider) == r.PathValue("provider") {
				f.keys = append(f.keys[:i], f.keys[i+1:]...)
				writeJSON(w, k)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]string{"detail": "API key not found"})
	})
	mux.HandleFunc("GET /config/configurations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.configs)
	})
	mux.HandleFunc("POST /config/configurations", func(w http.ResponseWriter, r *http.Request) {
		body := f.last().Body
		c := api.Configuration{ID: f.id(), Key: body["key"].(string), Value: body["value"].(string), Description: body["description"].(string), CreatedAt: now}
		f.configs = append(f.configs, c)
		writeJSON(w, c)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
		_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		f.requests = append(f.requests, rec)
		if code, ok := f.fail[r.Method+" "+r.URL.Path]; ok {
			w.WriteHeader(code)
			writeJSON(w, map[string]string{"detail": "backend exploded"})
			return
		}
		mux.ServeHTTP(w, r)
	})
}

// last is the request being served; callers hold f.mu.
func (f *fakeBackend) last() recordedRequest {
	return f.requests[len(f.requests)-1]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
