// Package tui is the interactive terminal client: a tab header, one mounted
// page per tab, a notification line and a key help footer.
package tui

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"

	"github.com/jask/genmark/internal/session"
)

// Option configures an App.
type Option func(*App)

// WithOpener replaces the browser launcher used for content URLs.
func WithOpener(open func(url string) error) Option {
	return func(a *App) { a.open = open }
}

// WithLogger sets the logger used for failures and dropped results.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.log = l
		a.store.log = l
	}
}

// App is the root bubbletea model.
type App struct {
	ctx      context.Context
	backend  Backend
	defaults Defaults
	store    *Store
	keys     *KeyRegistry
	open     func(url string) error
	log      *slog.Logger
	spinner  spinner.Model

	mounted session.Tab
	page    page
	scope   uint64
	cancel  context.CancelFunc
	pending tea.Cmd

	width  int
	height int
}

// New builds the App with the dashboard mounted.
func New(ctx context.Context, backend Backend, defaults Defaults, opts ...Option) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)
	a := &App{
		ctx:      ctx,
		backend:  backend,
		defaults: defaults,
		store:    NewStore(slog.Default()),
		keys:     NewKeyRegistry(defaultBindings()),
		open:     browser.OpenURL,
		log:      slog.Default(),
		spinner:  sp,
		width:    80,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.pending = a.mount(session.TabDashboard)
	return a
}

func (a *App) Init() tea.Cmd {
	cmd := a.pending
	a.pending = nil
	return tea.Batch(cmd, a.spinner.Tick)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	case notificationExpiredMsg:
		a.store.expire(msg.id)
		return a, nil
	case scopedMsg:
		if msg.scopeID() != a.scope {
			a.log.Debug("dropping result for unmounted page", "scope", msg.scopeID(), "current", a.scope)
			return a, nil
		}
	case tea.KeyMsg:
		editing := a.page.Editing()
		if msg.String() == "ctrl+c" || (!editing && a.keys.IsAction(msg, actQuit, scopeGlobal)) {
			return a, a.quit()
		}
		if !editing && a.handleGlobalKey(msg) {
			return a, a.sync()
		}
	}
	cmd := a.page.Update(msg)
	return a, tea.Batch(cmd, a.sync())
}

// handleGlobalKey applies tab switching keys to the store.
func (a *App) handleGlobalKey(msg tea.KeyMsg) bool {
	switch {
	case a.keys.IsAction(msg, actTab, scopeGlobal):
		a.store.SetTab(session.Tabs[msg.Runes[0]-'1'])
	case a.keys.IsAction(msg, actNextTab, scopeGlobal):
		a.store.SetTab(cycleTab(a.store.State().Tab, 1))
	case a.keys.IsAction(msg, actPrevTab, scopeGlobal):
		a.store.SetTab(cycleTab(a.store.State().Tab, -1))
	default:
		return false
	}
	return true
}

func (a *App) quit() tea.Cmd {
	if a.cancel != nil {
		a.cancel()
	}
	return tea.Quit
}

// sync mounts the page for the store's tab if it changed.
func (a *App) sync() tea.Cmd {
	if tab := a.store.State().Tab; tab != a.mounted {
		return a.mount(tab)
	}
	return nil
}

// mount replaces the current page. The old page's context is canceled and
// its outstanding results will be dropped.
func (a *App) mount(tab session.Tab) tea.Cmd {
	if a.cancel != nil {
		a.cancel()
	}
	ctx, cancel := context.WithCancel(a.ctx)
	a.scope++
	a.cancel = cancel
	a.mounted = tab
	a.store.SetTab(tab)
	a.store.SetLoading(false)

	e := env{
		store:    a.store,
		backend:  a.backend,
		keys:     a.keys,
		defaults: a.defaults,
		open:     a.open,
		ctx:      ctx,
		scope:    a.scope,
	}
	switch tab {
	case session.TabAnalysis:
		a.page = newAnalysisPage(e)
	case session.TabPrompts:
		a.page = newPromptsPage(e)
	case session.TabContent:
		a.page = newContentPage(e)
	case session.TabSettings:
		a.page = newSettingsPage(e)
	default:
		a.page = newDashboardPage(e)
	}
	a.log.Debug("mounted page", "tab", tab, "scope", a.scope)
	return a.page.Init()
}

func cycleTab(cur session.Tab, dir int) session.Tab {
	for i, t := range session.Tabs {
		if t == cur {
			n := len(session.Tabs)
			return session.Tabs[(i+dir+n)%n]
		}
	}
	return session.TabDashboard
}

func (a *App) View() string {
	w := max(40, a.width)
	st := a.store.State()

	var b strings.Builder
	b.WriteString(a.renderHeader(w, st.Tab))
	b.WriteString("\n")
	b.WriteString(a.renderNotice(w, st))
	b.WriteString("\n\n")
	b.WriteString(a.page.View(w))
	b.WriteString("\n\n")
	b.WriteString(a.keys.Footer(string(st.Tab), w))
	return appStyle.Render(b.String())
}

func (a *App) renderHeader(width int, active session.Tab) string {
	sep := tabSepStyle.Render("│")
	parts := []string{headerAppStyle.Render(" genmark ")}
	for i, t := range session.Tabs {
		label := string(rune('1'+i)) + " " + t.Title()
		if t == active {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, inactiveTabStyle.Render(label))
		}
	}
	return renderBar(headerBarStyle, width, strings.Join(parts, sep), colorMantle)
}

func (a *App) renderNotice(width int, st session.State) string {
	switch {
	case st.Loading:
		return renderBar(statusBarStyle.Foreground(colorAccent), width, a.spinner.View()+" Loading...", colorSurface0)
	case st.Notice != nil:
		style := statusBarStyle.Foreground(noticeColor(st.Notice.Kind))
		return renderBar(style, width, st.Notice.Message, colorSurface0)
	default:
		return renderBar(statusBarStyle.Foreground(colorMuted), width, "Ready", colorSurface0)
	}
}
