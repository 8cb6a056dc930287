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

const maskedKey = "************************"

// configOption is one backend configuration row and the values it cycles
// through.
type configOption struct {
	key     string
	label   string
	options []string
}

var configOptions = []configOption{
	{key: "default_llm", label: "Default LLM provider", options: enumStrings(api.Providers)},
	{key: "default_content_type", label: "Default content type", options: enumStrings(api.ContentTypes)},
	{key: "default_analysis_focus", label: "Default analysis focus", options: enumStrings(api.AnalysisTypes)},
}

func enumStrings[T ~string](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}

type settingsLoadedMsg struct {
	scoped
	keys    []api.APIKey
	configs []api.Configuration
	err     error
}

type keyChangedMsg struct {
	scoped
	provider api.Provider
	removed  bool
	err      error
}

type settingsSavedMsg struct {
	scoped
	err error
}

type settingsPage struct {
	env
	keys   map[api.Provider]bool
	values map[string]string
	cursor int

	input   textinput.Model
	editing api.Provider
}

func newSettingsPage(e env) *settingsPage {
	in := newInput("paste API key")
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '*'
	p := &settingsPage{
		env:    e,
		keys:   map[api.Provider]bool{},
		values: map[string]string{},
		input:  in,
	}
	p.values["default_llm"] = string(e.defaults.Provider)
	p.values["default_content_type"] = string(e.defaults.ContentType)
	p.values["default_analysis_focus"] = string(e.defaults.AnalysisType)
	return p
}

func (p *settingsPage) Init() tea.Cmd { return p.load() }

func (p *settingsPage) Editing() bool { return p.input.Focused() }

func (p *settingsPage) rows() int { return len(api.Providers) + len(configOptions) }

// keyRow returns the provider under the cursor, if the cursor is on a key row.
func (p *settingsPage) keyRow() (api.Provider, bool) {
	if p.cursor < len(api.Providers) {
		return api.Providers[p.cursor], true
	}
	return "", false
}

func (p *settingsPage) configRow() (configOption, bool) {
	i := p.cursor - len(api.Providers)
	if i >= 0 && i < len(configOptions) {
		return configOptions[i], true
	}
	return configOption{}, false
}

func (p *settingsPage) load() tea.Cmd {
	tag, backend := p.tag(), p.backend
	return p.call(func(ctx context.Context) tea.Msg {
		keys, err := backend.ListAPIKeys(ctx)
		if err != nil {
			return settingsLoadedMsg{scoped: tag, err: err}
		}
		configs, err := backend.ListConfigurations(ctx)
		return settingsLoadedMsg{scoped: tag, keys: keys, configs: configs, err: err}
	})
}

func (p *settingsPage) submitKey() tea.Cmd {
	provider := p.editing
	value := strings.TrimSpace(p.input.Value())
	p.input.Blur()
	p.input.Reset()
	if value == "" || strings.Contains(value, "*") {
		return p.store.Notify(session.KindWarning, "Please enter a valid API key")
	}
	tag, backend := p.tag(), p.backend
	return p.call(func(ctx context.Context) tea.Msg {
		_, err := backend.SetAPIKey(ctx, provider, value)
		return keyChangedMsg{scoped: tag, provider: provider, err: err}
	})
}

func (p *settingsPage) removeKey(provider api.Provider) tea.Cmd {
	tag, backend := p.tag(), p.backend
	return p.call(func(ctx context.Context) tea.Msg {
		_, err := backend.DeleteAPIKey(ctx, provider)
		return keyChangedMsg{scoped: tag, provider: provider, removed: true, err: err}
	})
}

// save writes every configuration row, one request after another.
func (p *settingsPage) save() tea.Cmd {
	values := make([][2]string, 0, len(configOptions))
	for _, opt := range configOptions {
		values = append(values, [2]string{opt.key, p.values[opt.key]})
	}
	tag, backend := p.tag(), p.backend
	return p.call(func(ctx context.Context) tea.Msg {
		for _, kv := range values {
			if _, err := backend.SetConfiguration(ctx, kv[0], kv[1], api.ConfigDescription(kv[0])); err != nil {
				return settingsSavedMsg{scoped: tag, err: err}
			}
		}
		return settingsSavedMsg{scoped: tag}
	})
}

func (p *settingsPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case settingsLoadedMsg:
		p.store.SetLoading(false)
		if msg.err != nil {
			return p.store.Fail(msg.err)
		}
		p.keys = map[api.Provider]bool{}
		for _, k := range msg.keys {
			p.keys[k.Provider] = k.IsActive
		}
		for _, c := range msg.configs {
			p.values[c.Key] = c.Value
		}
	case keyChangedMsg:
		p.store.SetLoading(false)
		if msg.err != nil {
			return p.store.Fail(msg.err)
		}
		text := msg.provider.DisplayName() + " API key updated successfully"
		if msg.removed {
			text = msg.provider.DisplayName() + " API key removed"
		}
		return tea.Batch(p.store.Notify(session.KindSuccess, text), p.load())
	case settingsSavedMsg:
		p.store.SetLoading(false)
		if msg.err != nil {
			return p.store.Fail(msg.err)
		}
		return p.store.Notify(session.KindSuccess, "Settings saved successfully")
	case tea.KeyMsg:
		if p.input.Focused() {
			switch msg.Type {
			case tea.KeyEnter:
				return p.submitKey()
			case tea.KeyEsc:
				p.input.Blur()
				p.input.Reset()
				return nil
			}
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(msg)
			return cmd
		}
		return p.handleKey(msg)
	}
	return nil
}

func (p *settingsPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	const tab = session.TabSettings
	switch {
	case p.is(msg, actUp, tab):
		p.cursor = clampCursor(p.cursor-1, p.rows())
	case p.is(msg, actDown, tab):
		p.cursor = clampCursor(p.cursor+1, p.rows())
	case p.is(msg, actSelect, tab):
		if provider, ok := p.keyRow(); ok {
			p.editing = provider
			p.input.Focus()
		}
	case p.is(msg, actDelete, tab):
		if provider, ok := p.keyRow(); ok && p.keys[provider] {
			return p.removeKey(provider)
		}
	case p.is(msg, actCycleNext, tab), p.is(msg, actCyclePrev, tab):
		opt, ok := p.configRow()
		if !ok {
			return nil
		}
		values := opt.options
		if p.is(msg, actCyclePrev, tab) {
			values = reversed(values)
		}
		p.values[opt.key] = api.Next(values, p.values[opt.key])
	case p.is(msg, actSave, tab):
		return p.save()
	}
	return nil
}

func reversed(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

func (p *settingsPage) View(width int) string {
	lines := []string{titleStyle.Render("API Keys")}
	for i, provider := range api.Providers {
		value := mutedStyle.Render("not set")
		if p.keys[provider] {
			value = okStyle.Render(maskedKey)
		}
		if p.input.Focused() && p.editing == provider {
			value = p.input.View()
		}
		row := fmt.Sprintf("%-10s ", provider.DisplayName()) + value
		lines = append(lines, truncate(cursorLine(i == p.cursor, row), width))
	}

	lines = append(lines, "", titleStyle.Render("Configuration"))
	for i, opt := range configOptions {
		row := fmt.Sprintf("%-24s ‹ %s ›", opt.label, p.values[opt.key])
		lines = append(lines, truncate(cursorLine(len(api.Providers)+i == p.cursor, row), width))
	}
	return strings.Join(lines, "\n")
}
