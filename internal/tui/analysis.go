package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/genmark/internal/api"
	"github.com/jask/genmark/internal/session"
)

type analysesLoadedMsg struct {
	scoped
	analyses []api.Analysis
	err      error
}

type analyzedMsg struct {
	scoped
	analysis api.Analysis
	err      error
}

type analysisPage struct {
	env
	url      textinput.Model
	kind     api.AnalysisType
	provider api.Provider

	analyses []api.Analysis
	cursor   int
	shown    *api.Analysis
}

func newAnalysisPage(e env) *analysisPage {
	return &analysisPage{
		env:      e,
		url:      newInput("https://competitor.example/blog"),
		kind:     e.defaults.AnalysisType,
		provider: e.defaults.Provider,
	}
}

func (p *analysisPage) Init() tea.Cmd { return p.loadList() }

func (p *analysisPage) Editing() bool { return p.url.Focused() }

func (p *analysisPage) loadList() tea.Cmd {
	tag, backend := p.tag(), p.backend
	return p.call(func(ctx context.Context) tea.Msg {
		as, err := backend.ListAnalyses(ctx)
		return analysesLoadedMsg{scoped: tag, analyses: as, err: err}
	})
}

func (p *analysisPage) analyze() tea.Cmd {
	url := strings.TrimSpace(p.url.Value())
	if url == "" {
		return p.store.Notify(session.KindWarning, "Please enter a competitor URL")
	}
	req := api.AnalyzeRequest{CompetitorURL: url, AnalysisType: p.kind, Provider: p.provider}
	tag, backend := p.tag(), p.backend
	return p.call(func(ctx context.Context) tea.Msg {
		a, err := backend.AnalyzeCompetitor(ctx, req)
		return analyzedMsg{scoped: tag, analysis: a, err: err}
	})
}

func (p *analysisPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case analysesLoadedMsg:
		p.store.SetLoading(false)
		if msg.err != nil {
			return p.store.Fail(msg.err)
		}
		p.analyses = msg.analyses
		p.cursor = clampCursor(p.cursor, len(p.analyses))
		return nil
	case analyzedMsg:
		p.store.SetLoading(false)
		if msg.err != nil {
			return p.store.Fail(msg.err)
		}
		a := msg.analysis
		p.shown = &a
		return tea.Batch(p.store.Notify(session.KindSuccess, "Analysis completed successfully"), p.loadList())
	case tea.KeyMsg:
		if p.url.Focused() {
			return p.updateURL(msg)
		}
		return p.handleKey(msg)
	}
	return nil
}

func (p *analysisPage) updateURL(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		p.url.Blur()
		return p.analyze()
	case tea.KeyEsc:
		p.url.Blur()
		return nil
	}
	var cmd tea.Cmd
	p.url, cmd = p.url.Update(msg)
	return cmd
}

func (p *analysisPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	const tab = session.TabAnalysis
	switch {
	case p.is(msg, actEditURL, tab):
		p.url.Focus()
	case p.is(msg, actCycleType, tab):
		p.kind = api.Next(api.AnalysisTypes, p.kind)
	case p.is(msg, actCycleProvider, tab):
		p.provider = api.Next(api.Providers, p.provider)
	case p.is(msg, actAnalyze, tab):
		return p.analyze()
	case p.is(msg, actUp, tab):
		p.cursor = clampCursor(p.cursor-1, len(p.analyses))
	case p.is(msg, actDown, tab):
		p.cursor = clampCursor(p.cursor+1, len(p.analyses))
	case p.is(msg, actSelect, tab):
		if len(p.analyses) == 0 {
			return nil
		}
		a := p.analyses[p.cursor]
		p.shown = &a
		p.store.SelectAnalysis(a)
	case p.is(msg, actSaveAnalysis, tab):
		if p.shown == nil {
			return p.store.Notify(session.KindWarning, "Please select an analysis first")
		}
		p.store.SelectAnalysis(*p.shown)
		return p.store.Notify(session.KindSuccess, "Analysis saved")
	case p.is(msg, actToPrompts, tab):
		if p.shown == nil {
			return p.store.Notify(session.KindWarning, "Please select an analysis first")
		}
		p.store.SelectAnalysis(*p.shown)
		p.store.SetTab(session.TabPrompts)
	}
	return nil
}

func (p *analysisPage) View(width int) string {
	urlView := p.url.View()
	if !p.url.Focused() && p.url.Value() != "" {
		urlView = valueStyle.Render(p.url.Value())
	}
	lines := []string{
		titleStyle.Render("New Analysis"),
		labelStyle.Render("Competitor URL: ") + urlView,
		field("Analysis type", p.kind.DisplayName()),
		field("Provider", p.provider.DisplayName()),
		"",
	}

	if p.shown != nil {
		lines = append(lines, renderAnalysis(*p.shown, width)...)
		lines = append(lines, "")
	}

	lines = append(lines, titleStyle.Render("Previous Analyses"))
	if len(p.analyses) == 0 {
		lines = append(lines, mutedStyle.Render("  No analyses yet"))
	}
	selected, hasSelection := p.store.State().Pipeline.Analysis()
	for i, a := range p.analyses {
		row := fmt.Sprintf("#%d %s  %s  %s", a.ID, a.CompetitorURL, a.AnalysisType.DisplayName(), a.CreatedAt.Display())
		if hasSelection && a.ID == selected.ID {
			row += okStyle.Render("  ✓")
		}
		lines = append(lines, truncate(cursorLine(i == p.cursor, row), width))
	}
	return strings.Join(lines, "\n")
}

func renderAnalysis(a api.Analysis, width int) []string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Analysis #%d", a.ID)),
		field("URL", a.CompetitorURL),
		field("Type", a.AnalysisType.DisplayName()) + "  " + field("Provider", a.Provider.DisplayName()),
		labelStyle.Render("Content themes:"),
	}
	for _, t := range a.ContentThemes {
		lines = append(lines, truncate("  • "+t.Label(), width))
	}
	lines = append(lines, labelStyle.Render("Strategy:"))
	for _, s := range a.ContentStrategy {
		lines = append(lines, truncate("  • "+s, width))
	}
	return lines
}

func clampCursor(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
