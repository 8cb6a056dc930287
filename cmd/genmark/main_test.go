package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	for _, k := range []string{"GENMARK_CONFIG", "API_URL", "GENMARK_API_URL", "GENMARK_API_BASE_URL"} {
		t.Setenv(k, "")
	}
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// backend serves routes and returns a snapshot func for the decoded request
// bodies.
func backend(t *testing.T, routes map[string]http.HandlerFunc) (string, func() []map[string]any) {
	t.Helper()
	var (
		mu     sync.Mutex
		bodies []map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()
		h, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv.URL, func() []map[string]any {
		mu.Lock()
		defer mu.Unlock()
		return append([]map[string]any(nil), bodies...)
	}
}

func TestAnalyzeCommand(t *testing.T) {
	isolate(t)
	url, bodies := backend(t, map[string]http.HandlerFunc{
		"POST /analysis/analyze": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":7,"competitor_url":"https://rival.test","analysis_type":"social","provider":"claude",
				"content_themes":[{"theme":"pricing","confidence":80}],"content_strategy":["daily posts"],"created_at":"2026-01-02T03:04:05"}`))
		},
	})

	out, err := execute(t, "--api-url", url, "analyze", "https://rival.test", "--type", "social", "-p", "claude")
	require.NoError(t, err)
	require.Contains(t, out, "Analysis #7")
	require.Contains(t, out, "pricing (80% confidence)")
	require.Equal(t, map[string]any{"competitor_url": "https://rival.test", "analysis_type": "social", "provider": "claude"}, bodies()[0])
}

func TestBackendErrorIsReturned(t *testing.T) {
	isolate(t)
	url, _ := backend(t, map[string]http.HandlerFunc{
		"GET /analysis/analyses": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"database unavailable"}`))
		},
	})

	_, err := execute(t, "--api-url", url, "analyses")
	require.ErrorContains(t, err, "database unavailable")
}

func TestContentGenerateAndExport(t *testing.T) {
	isolate(t)
	content := `{"id":5,"prompt_id":3,"content_type":"text","provider":"openai","content_text":"Hello readers","created_at":"2026-01-02T03:04:05Z"}`
	url, bodies := backend(t, map[string]http.HandlerFunc{
		"POST /content/generate": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(content))
		},
		"GET /content/content/5": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(content))
		},
	})

	out, err := execute(t, "--api-url", url, "content", "generate", "3", "--length", "short", "--tone", "enthusiastic")
	require.NoError(t, err)
	require.Contains(t, out, "Hello readers")
	require.Equal(t, map[string]any{"length": "short", "tone": "enthusiastic", "max_tokens": float64(500)}, bodies()[0]["parameters"])

	dir := t.TempDir()
	out, err = execute(t, "--api-url", url, "content", "export", "5", "--dir", dir)
	require.NoError(t, err)
	require.Contains(t, out, filepath.Join(dir, "content-5.txt"))
	data, err := os.ReadFile(filepath.Join(dir, "content-5.txt"))
	require.NoError(t, err)
	require.Equal(t, "Hello readers", string(data))
}

func TestKeysSetRejectsUnknownProvider(t *testing.T) {
	isolate(t)
	url, bodies := backend(t, nil)

	_, err := execute(t, "--api-url", url, "keys", "set", "clade", "sk-1")
	require.ErrorContains(t, err, `did you mean "claude"`)

	_, err = execute(t, "--api-url", url, "keys", "set", "claude", "****")
	require.ErrorContains(t, err, "valid API key")
	require.Empty(t, bodies())
}

func TestInitWritesConfig(t *testing.T) {
	home := isolate(t)

	out, err := execute(t, "--api-url", "http://backend.test/api", "init")
	require.NoError(t, err)
	path := filepath.Join(home, ".config", "genmark", "config.toml")
	require.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "http://backend.test/api")
}
