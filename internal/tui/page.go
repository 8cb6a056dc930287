package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/genmark/internal/api"
	"github.com/jask/genmark/internal/session"
)

// Backend is the part of the api client the pages call.
type Backend interface {
	ListAPIKeys(ctx context.Context) ([]api.APIKey, error)
	SetAPIKey(ctx context.Context, provider api.Provider, key string) (api.APIKey, error)
	DeleteAPIKey(ctx context.Context, provider api.Provider) (api.APIKey, error)
	ListConfigurations(ctx context.Context) ([]api.Configuration, error)
	SetConfiguration(ctx context.Context, key, value, description string) (api.Configuration, error)
	AnalyzeCompetitor(ctx context.Context, req api.AnalyzeRequest) (api.Analysis, error)
	ListAnalyses(ctx context.Context) ([]api.Analysis, error)
	GeneratePromptIdeas(ctx context.Context, req api.GeneratePromptsRequest) ([]api.PromptIdea, error)
	ListPromptIdeas(ctx context.Context, analysisID int64) ([]api.PromptIdea, error)
	GenerateContent(ctx context.Context, req api.GenerateContentRequest) (api.Content, error)
	ListContent(ctx context.Context, promptID int64) ([]api.Content, error)
	DeleteContent(ctx context.Context, id int64) (api.Content, error)
}

// Defaults seeds the page forms.
type Defaults struct {
	Provider     api.Provider
	AnalysisType api.AnalysisType
	ContentType  api.ContentType
	NumIdeas     int
	ExportDir    string
}

// page is one mounted tab. Pages are rebuilt on every mount so their local
// state does not outlive a tab switch.
type page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width int) string
	// Editing reports whether a text input has focus; global keys are
	// suspended while it does.
	Editing() bool
}

// scopedMsg is a backend result bound to the page mount that requested it.
type scopedMsg interface{ scopeID() uint64 }

type scoped struct{ scope uint64 }

func (s scoped) scopeID() uint64 { return s.scope }

// env is what a page needs from the App: the shared store, the backend and
// the lifetime of its mount.
type env struct {
	store    *Store
	backend  Backend
	keys     *KeyRegistry
	defaults Defaults
	open     func(url string) error

	ctx   context.Context
	scope uint64
}

func (e env) tag() scoped { return scoped{scope: e.scope} }

// call runs fn against the backend inside the page's lifetime and marks the
// store as loading until the result arrives.
func (e env) call(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	e.store.SetLoading(true)
	e.store.ClearError()
	ctx := e.ctx
	return func() tea.Msg { return fn(ctx) }
}

func (e env) is(msg tea.KeyMsg, action string, tab session.Tab) bool {
	return e.keys.IsAction(msg, action, string(tab))
}

func newInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = ""
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}
