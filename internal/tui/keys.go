package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// scopeGlobal bindings are handled by the App before the page sees a key.
const scopeGlobal = "global"

const (
	actQuit    = "quit"
	actTab     = "tab"
	actNextTab = "next_tab"
	actPrevTab = "prev_tab"

	actUp     = "up"
	actDown   = "down"
	actSelect = "select"

	actEditURL       = "edit_url"
	actCycleType     = "cycle_type"
	actCycleProvider = "cycle_provider"
	actAnalyze       = "analyze"
	actSaveAnalysis  = "save_analysis"
	actToPrompts     = "to_prompts"

	actMoreIdeas = "more_ideas"
	actLessIdeas = "less_ideas"
	actGenerate  = "generate"

	actCycleLength = "cycle_length"
	actCycleTone   = "cycle_tone"
	actRegenerate  = "regenerate"
	actExport      = "export"
	actOpen        = "open"
	actDelete      = "delete"

	actCycleNext = "cycle_next"
	actCyclePrev = "cycle_prev"
	actSave      = "save"

	actGoAnalysis = "go_analysis"
	actGoPrompts  = "go_prompts"
	actGoContent  = "go_content"
	actRefresh    = "refresh"
)

// KeyBinding maps keys to an action within scopes. No scopes means every
// scope.
type KeyBinding struct {
	Keys        []string
	Action      string
	Description string
	Scopes      []string
}

type KeyRegistry struct {
	bindings []KeyBinding
}

func NewKeyRegistry(bindings []KeyBinding) *KeyRegistry {
	return &KeyRegistry{bindings: slices.Clone(bindings)}
}

func (r *KeyRegistry) BindingsForScope(scope string) []KeyBinding {
	out := make([]KeyBinding, 0, len(r.bindings))
	for _, b := range r.bindings {
		if scopeMatch(scope, b.Scopes) && b.Description != "" {
			out = append(out, b)
		}
	}
	return out
}

func (r *KeyRegistry) IsAction(msg tea.KeyMsg, action, scope string) bool {
	pressed := normalizeKey(msg.String())
	for _, b := range r.bindings {
		if b.Action != action || !scopeMatch(scope, b.Scopes) {
			continue
		}
		for _, k := range b.Keys {
			if normalizeKey(k) == pressed {
				return true
			}
		}
	}
	return false
}

// Footer renders the help line for scope on a bar of width cells.
func (r *KeyRegistry) Footer(scope string, width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Background(colorMantle)
	descStyle := lipgloss.NewStyle().Foreground(colorMuted).Background(colorMantle)
	space := lipgloss.NewStyle().Background(colorMantle).Render(" ")
	sep := lipgloss.NewStyle().Background(colorMantle).Render("  ")

	var parts []string
	for _, b := range r.BindingsForScope(scope) {
		if len(b.Keys) == 0 {
			continue
		}
		h := key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(b.Keys[0], b.Description)).Help()
		parts = append(parts, keyStyle.Render(h.Key)+space+descStyle.Render(h.Desc))
	}
	return renderBar(footerStyle, max(1, width), strings.Join(parts, sep), colorMantle)
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

func scopeMatch(scope string, scopes []string) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if s == "*" || s == scope {
			return true
		}
	}
	return false
}

func defaultBindings() []KeyBinding {
	all := []string{"*"}
	dash := []string{"dashboard"}
	an := []string{"analysis"}
	pr := []string{"prompts"}
	co := []string{"content"}
	se := []string{"settings"}
	lists := []string{"analysis", "prompts", "content", "settings"}
	return []KeyBinding{
		{Keys: []string{"q", "ctrl+c"}, Action: actQuit, Description: "quit", Scopes: all},
		{Keys: []string{"1", "2", "3", "4", "5"}, Action: actTab, Description: "", Scopes: all},
		{Keys: []string{"tab"}, Action: actNextTab, Description: "next tab", Scopes: all},
		{Keys: []string{"shift+tab"}, Action: actPrevTab, Description: "", Scopes: all},

		{Keys: []string{"up", "k"}, Action: actUp, Description: "", Scopes: lists},
		{Keys: []string{"down", "j"}, Action: actDown, Description: "", Scopes: lists},

		{Keys: []string{"a"}, Action: actGoAnalysis, Description: "analyze", Scopes: dash},
		{Keys: []string{"p"}, Action: actGoPrompts, Description: "prompts", Scopes: dash},
		{Keys: []string{"c"}, Action: actGoContent, Description: "content", Scopes: dash},
		{Keys: []string{"r"}, Action: actRefresh, Description: "refresh", Scopes: dash},

		{Keys: []string{"u"}, Action: actEditURL, Description: "edit url", Scopes: an},
		{Keys: []string{"t"}, Action: actCycleType, Description: "type", Scopes: []string{"analysis", "content"}},
		{Keys: []string{"p"}, Action: actCycleProvider, Description: "provider", Scopes: []string{"analysis", "prompts", "content"}},
		{Keys: []string{"a"}, Action: actAnalyze, Description: "run analysis", Scopes: an},
		{Keys: []string{"enter"}, Action: actSelect, Description: "select", Scopes: lists},
		{Keys: []string{"s"}, Action: actSaveAnalysis, Description: "save", Scopes: an},
		{Keys: []string{"g"}, Action: actToPrompts, Description: "prompt ideas", Scopes: an},

		{Keys: []string{"+", "="}, Action: actMoreIdeas, Description: "more", Scopes: pr},
		{Keys: []string{"-"}, Action: actLessIdeas, Description: "fewer", Scopes: pr},
		{Keys: []string{"g"}, Action: actGenerate, Description: "generate", Scopes: []string{"prompts", "content"}},

		{Keys: []string{"l"}, Action: actCycleLength, Description: "length", Scopes: co},
		{Keys: []string{"v"}, Action: actCycleTone, Description: "tone", Scopes: co},
		{Keys: []string{"r"}, Action: actRegenerate, Description: "regenerate", Scopes: co},
		{Keys: []string{"x"}, Action: actExport, Description: "export", Scopes: co},
		{Keys: []string{"o"}, Action: actOpen, Description: "open url", Scopes: co},
		{Keys: []string{"d"}, Action: actDelete, Description: "delete", Scopes: []string{"content", "settings"}},

		{Keys: []string{"right", "l"}, Action: actCycleNext, Description: "change", Scopes: se},
		{Keys: []string{"left", "h"}, Action: actCyclePrev, Description: "", Scopes: se},
		{Keys: []string{"s"}, Action: actSave, Description: "save settings", Scopes: se},
	}
}
