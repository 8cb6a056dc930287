package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/genmark/internal/api"
	"github.com/jask/genmark/internal/session"
)

const (
	minIdeas = 1
	maxIdeas = 10
)

type promptsLoadedMsg struct {
	scoped
	prompts   []api.PromptIdea
	generated bool
	err       error
}

type promptsPage struct {
	env
	provider api.Provider
	numIdeas int
	prompts  []api.PromptIdea
	cursor   int
}

func newPromptsPage(e env) *promptsPage {
	n := e.defaults.NumIdeas
	if n < minIdeas || n > maxIdeas {
		n = 5
	}
	return &promptsPage{env: e, provider: e.defaults.Provider, numIdeas: n}
}

func (p *promptsPage) Init() tea.Cmd {
	a, ok := p.store.State().Pipeline.Analysis()
	if !ok {
		return nil
	}
	tag, backend := p.tag(), p.backend
	return p.call(func(ctx context.Context) tea.Msg {
		ps, err := backend.ListPromptIdeas(ctx, a.ID)
		return promptsLoadedMsg{scoped: tag, prompts: ps, err: err}
	})
}

func (p *promptsPage) Editing() bool { return false }

func (p *promptsPage) generate() tea.Cmd {
	a, ok := p.store.State().Pipeline.Analysis()
	if !ok {
		return p.store.Notify(session.KindWarning, "Please select an analysis first")
	}
	req := api.GeneratePromptsRequest{AnalysisID: a.ID, Provider: p.provider, NumIdeas: p.numIdeas}
	tag, backend := p.tag(), p.backend
	return p.call(func(ctx context.Context) tea.Msg {
		ps, err := backend.GeneratePromptIdeas(ctx, req)
		return promptsLoadedMsg{scoped: tag, prompts: ps, generated: true, err: err}
	})
}

func (p *promptsPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case promptsLoadedMsg:
		p.store.SetLoading(false)
		if msg.err != nil {
			return p.store.Fail(msg.err)
		}
		p.prompts = msg.prompts
		p.cursor = clampCursor(p.cursor, len(p.prompts))
		if msg.generated {
			return p.store.Notify(session.KindSuccess, "Prompt ideas generated successfully")
		}
	case tea.KeyMsg:
		const tab = session.TabPrompts
		switch {
		case p.is(msg, actCycleProvider, tab):
			p.provider = api.Next(api.Providers, p.provider)
		case p.is(msg, actMoreIdeas, tab):
			p.numIdeas = min(maxIdeas, p.numIdeas+1)
		case p.is(msg, actLessIdeas, tab):
			p.numIdeas = max(minIdeas, p.numIdeas-1)
		case p.is(msg, actGenerate, tab):
			return p.generate()
		case p.is(msg, actUp, tab):
			p.cursor = clampCursor(p.cursor-1, len(p.prompts))
		case p.is(msg, actDown, tab):
			p.cursor = clampCursor(p.cursor+1, len(p.prompts))
		case p.is(msg, actSelect, tab):
			return p.usePrompt()
		}
	}
	return nil
}

func (p *promptsPage) usePrompt() tea.Cmd {
	if len(p.prompts) == 0 {
		return nil
	}
	if err := p.store.SelectPrompt(p.prompts[p.cursor]); err != nil {
		return p.store.Fail(err)
	}
	p.store.SetTab(session.TabContent)
	return p.store.Notify(session.KindSuccess, "Prompt selected for content generation")
}

func (p *promptsPage) View(width int) string {
	a, ok := p.store.State().Pipeline.Analysis()
	analysis := mutedStyle.Render("none (pick one on the analysis tab)")
	if ok {
		analysis = valueStyle.Render(fmt.Sprintf("#%d %s", a.ID, a.CompetitorURL))
	}
	lines := []string{
		titleStyle.Render("Generate Prompt Ideas"),
		labelStyle.Render("Analysis: ") + analysis,
		field("Provider", p.provider.DisplayName()),
		field("Number of ideas", fmt.Sprint(p.numIdeas)),
		"",
		titleStyle.Render("Prompt Ideas"),
	}
	if len(p.prompts) == 0 {
		lines = append(lines, mutedStyle.Render("  No prompt ideas yet"))
	}
	for i, pi := range p.prompts {
		row := fmt.Sprintf("[%s] %s", pi.ConfidenceLabel(), pi.PromptText)
		lines = append(lines, truncate(cursorLine(i == p.cursor, row), width))
	}
	return strings.Join(lines, "\n")
}
