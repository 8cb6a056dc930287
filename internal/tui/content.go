package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/genmark/internal/api"
	"github.com/jask/genmark/internal/export"
	"github.com/jask/genmark/internal/session"
)

type historyLoadedMsg struct {
	scoped
	history []api.Content
	err     error
}

type contentGeneratedMsg struct {
	scoped
	content api.Content
	err     error
}

type contentDeletedMsg struct {
	scoped
	id  int64
	err error
}

type contentPage struct {
	env
	kind     api.ContentType
	provider api.Provider
	length   api.Length
	tone     api.Tone

	history []api.Content
	cursor  int
	shown   *api.Content
}

func newContentPage(e env) *contentPage {
	return &contentPage{
		env:      e,
		kind:     e.defaults.ContentType,
		provider: e.defaults.Provider,
		length:   api.LengthMedium,
		tone:     api.ToneProfessional,
	}
}

func (p *contentPage) Init() tea.Cmd { return p.loadHistory() }

func (p *contentPage) Editing() bool { return false }

func (p *contentPage) loadHistory() tea.Cmd {
	tag, backend := p.tag(), p.backend
	return p.call(func(ctx context.Context) tea.Msg {
		h, err := backend.ListContent(ctx, 0)
		return historyLoadedMsg{scoped: tag, history: h, err: err}
	})
}

func (p *contentPage) generate() tea.Cmd {
	pr, ok := p.store.State().Pipeline.Prompt()
	if !ok {
		return p.store.Notify(session.KindWarning, "Please select a prompt first")
	}
	req := api.GenerateContentRequest{
		PromptID:    pr.ID,
		ContentType: p.kind,
		Provider:    p.provider,
		Parameters:  api.ContentParameters(p.length, p.tone),
	}
	tag, backend := p.tag(), p.backend
	return p.call(func(ctx context.Context) tea.Msg {
		c, err := backend.GenerateContent(ctx, req)
		return contentGeneratedMsg{scoped: tag, content: c, err: err}
	})
}

func (p *contentPage) remove() tea.Cmd {
	if len(p.history) == 0 {
		return nil
	}
	id := p.history[p.cursor].ID
	tag, backend := p.tag(), p.backend
	return p.call(func(ctx context.Context) tea.Msg {
		_, err := backend.DeleteContent(ctx, id)
		return contentDeletedMsg{scoped: tag, id: id, err: err}
	})
}

func (p *contentPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		p.store.SetLoading(false)
		if msg.err != nil {
			return p.store.Fail(msg.err)
		}
		p.history = msg.history
		p.cursor = clampCursor(p.cursor, len(p.history))
	case contentGeneratedMsg:
		p.store.SetLoading(false)
		if msg.err != nil {
			return p.store.Fail(msg.err)
		}
		c := msg.content
		p.shown = &c
		return tea.Batch(p.store.Notify(session.KindSuccess, "Content generated successfully"), p.loadHistory())
	case contentDeletedMsg:
		p.store.SetLoading(false)
		if msg.err != nil {
			return p.store.Fail(msg.err)
		}
		if p.shown != nil && p.shown.ID == msg.id {
			p.shown = nil
		}
		return tea.Batch(p.store.Notify(session.KindSuccess, "Content deleted"), p.loadHistory())
	case tea.KeyMsg:
		return p.handleKey(msg)
	}
	return nil
}

func (p *contentPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	const tab = session.TabContent
	switch {
	case p.is(msg, actCycleType, tab):
		p.kind = api.Next(api.ContentTypes, p.kind)
	case p.is(msg, actCycleProvider, tab):
		p.provider = api.Next(api.Providers, p.provider)
	case p.is(msg, actCycleLength, tab):
		p.length = api.Next(api.Lengths, p.length)
	case p.is(msg, actCycleTone, tab):
		p.tone = api.Next(api.Tones, p.tone)
	case p.is(msg, actGenerate, tab), p.is(msg, actRegenerate, tab):
		return p.generate()
	case p.is(msg, actUp, tab):
		p.cursor = clampCursor(p.cursor-1, len(p.history))
	case p.is(msg, actDown, tab):
		p.cursor = clampCursor(p.cursor+1, len(p.history))
	case p.is(msg, actSelect, tab):
		if len(p.history) > 0 {
			c := p.history[p.cursor]
			p.shown = &c
		}
	case p.is(msg, actExport, tab):
		return p.exportShown()
	case p.is(msg, actOpen, tab):
		return p.openShown()
	case p.is(msg, actDelete, tab):
		return p.remove()
	}
	return nil
}

func (p *contentPage) exportShown() tea.Cmd {
	if p.shown == nil {
		return p.store.Notify(session.KindWarning, "Please select content first")
	}
	path, err := export.WriteContent(p.defaults.ExportDir, *p.shown)
	if err != nil {
		return p.store.Fail(err)
	}
	return p.store.Notify(session.KindSuccess, "Exported to "+path)
}

func (p *contentPage) openShown() tea.Cmd {
	if p.shown == nil || p.shown.ContentURL == "" {
		return p.store.Notify(session.KindWarning, "No content URL to open")
	}
	if err := p.open(p.shown.ContentURL); err != nil {
		return p.store.Fail(fmt.Errorf("open %s: %w", p.shown.ContentURL, err))
	}
	return nil
}

func (p *contentPage) View(width int) string {
	pr, ok := p.store.State().Pipeline.Prompt()
	prompt := mutedStyle.Render("none (pick one on the prompts tab)")
	if ok {
		prompt = valueStyle.Render(pr.PromptText)
	}
	lines := []string{
		titleStyle.Render("Generate Content"),
		truncate(labelStyle.Render("Prompt: ")+prompt, width),
		field("Content type", p.kind.DisplayName()) + "  " + field("Provider", p.provider.DisplayName()),
		field("Length", string(p.length)) + "  " + field("Tone", string(p.tone)),
		"",
	}

	if p.shown != nil {
		lines = append(lines, titleStyle.Render(fmt.Sprintf("Content #%d", p.shown.ID)))
		if p.shown.ContentText != "" {
			lines = append(lines, lipgloss.NewStyle().Width(max(20, width-2)).Render(p.shown.ContentText))
		}
		if p.shown.ContentURL != "" {
			lines = append(lines, field("URL", p.shown.ContentURL))
		}
		lines = append(lines, "")
	}

	lines = append(lines, titleStyle.Render("History"))
	if len(p.history) == 0 {
		lines = append(lines, mutedStyle.Render("  No content yet"))
	}
	for i, c := range p.history {
		preview := c.ContentText
		if preview == "" {
			preview = c.ContentURL
		}
		row := fmt.Sprintf("#%d %-12s %s  %s", c.ID, c.ContentType.DisplayName(), c.CreatedAt.Display(), firstLine(preview))
		lines = append(lines, truncate(cursorLine(i == p.cursor, row), width))
	}
	return strings.Join(lines, "\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
