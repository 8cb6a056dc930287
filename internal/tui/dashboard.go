package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/jask/genmark/internal/api"
	"github.com/jask/genmark/internal/session"
)

const recentActivityLimit = 5

type activity struct {
	when  api.Timestamp
	label string
}

type dashboardData struct {
	analyses []api.Analysis
	prompts  []api.PromptIdea
	contents []api.Content
	keys     []api.APIKey
}

type dashboardLoadedMsg struct {
	scoped
	data dashboardData
	err  error
}

type dashboardPage struct {
	env
	data   dashboardData
	loaded bool
}

func newDashboardPage(e env) *dashboardPage {
	return &dashboardPage{env: e}
}

func (p *dashboardPage) Init() tea.Cmd { return p.load() }

func (p *dashboardPage) Editing() bool { return false }

// load fetches the four lists concurrently; the first error wins.
func (p *dashboardPage) load() tea.Cmd {
	tag := p.tag()
	backend := p.backend
	return p.call(func(ctx context.Context) tea.Msg {
		var d dashboardData
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			d.analyses, err = backend.ListAnalyses(gctx)
			return err
		})
		g.Go(func() (err error) {
			d.prompts, err = backend.ListPromptIdeas(gctx, 0)
			return err
		})
		g.Go(func() (err error) {
			d.contents, err = backend.ListContent(gctx, 0)
			return err
		})
		g.Go(func() (err error) {
			d.keys, err = backend.ListAPIKeys(gctx)
			return err
		})
		err := g.Wait()
		return dashboardLoadedMsg{scoped: tag, data: d, err: err}
	})
}

func (p *dashboardPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		p.store.SetLoading(false)
		if msg.err != nil {
			return p.store.Fail(msg.err)
		}
		p.data = msg.data
		p.loaded = true
		return nil
	case tea.KeyMsg:
		switch {
		case p.is(msg, actGoAnalysis, session.TabDashboard):
			p.store.SetTab(session.TabAnalysis)
		case p.is(msg, actGoPrompts, session.TabDashboard):
			p.store.SetTab(session.TabPrompts)
		case p.is(msg, actGoContent, session.TabDashboard):
			p.store.SetTab(session.TabContent)
		case p.is(msg, actRefresh, session.TabDashboard):
			return p.load()
		}
	}
	return nil
}

// recent merges all records newest first.
func (d dashboardData) recent(limit int) []activity {
	var out []activity
	for _, a := range d.analyses {
		out = append(out, activity{when: a.CreatedAt, label: fmt.Sprintf("Analyzed %s (%s)", a.CompetitorURL, a.AnalysisType.DisplayName())})
	}
	for _, pi := range d.prompts {
		out = append(out, activity{when: pi.CreatedAt, label: "Prompt idea: " + pi.PromptText})
	}
	for _, c := range d.contents {
		out = append(out, activity{when: c.CreatedAt, label: fmt.Sprintf("Generated %s content #%d", c.ContentType.DisplayName(), c.ID)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].when.After(out[j].when.Time) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// providerStatus is "Connected" when the provider has an active key.
func (d dashboardData) providerStatus(p api.Provider) string {
	for _, k := range d.keys {
		if k.Provider == p && k.IsActive {
			return "Connected"
		}
	}
	return "Not configured"
}

func (p *dashboardPage) View(width int) string {
	if !p.loaded {
		return mutedStyle.Render("Loading dashboard...")
	}
	stat := func(label string, n int) string {
		return boxStyle.Render(labelStyle.Render(label) + "\n" + valueStyle.Render(fmt.Sprint(n)))
	}
	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		stat("Analyses", len(p.data.analyses)),
		stat("Prompt Ideas", len(p.data.prompts)),
		stat("Content", len(p.data.contents)),
	)

	lines := []string{stats, "", titleStyle.Render("Recent Activity")}
	recent := p.data.recent(recentActivityLimit)
	if len(recent) == 0 {
		lines = append(lines, mutedStyle.Render("  No activity yet"))
	}
	for _, act := range recent {
		lines = append(lines, truncate("  "+act.when.Display()+"  "+act.label, width))
	}

	lines = append(lines, "", titleStyle.Render("Providers"))
	for _, pr := range api.Providers {
		status := p.data.providerStatus(pr)
		styled := mutedStyle.Render(status)
		if status == "Connected" {
			styled = okStyle.Render(status)
		}
		lines = append(lines, fmt.Sprintf("  %-10s %s", pr.DisplayName(), styled))
	}

	lines = append(lines, "", titleStyle.Render("Quick Actions"),
		"  a  New competitor analysis",
		"  p  Generate prompt ideas",
		"  c  Create content")
	return strings.Join(lines, "\n")
}
