package session

import (
	"errors"
	"fmt"

	"github.com/jask/genmark/internal/api"
)

// Stage is the position in the analysis → prompt idea → content pipeline.
type Stage int

const (
	// StageEmpty: nothing selected.
	StageEmpty Stage = iota
	// StageAnalysis: an analysis is selected; prompts can be generated.
	StageAnalysis
	// StagePrompt: an analysis and one of its prompts are selected; content
	// can be generated.
	StagePrompt
)

func (s Stage) String() string {
	switch s {
	case StageAnalysis:
		return "analysis"
	case StagePrompt:
		return "prompt"
	default:
		return "empty"
	}
}

var (
	ErrNoAnalysis     = errors.New("no analysis selected")
	ErrPromptMismatch = errors.New("prompt belongs to a different analysis")
)

// Pipeline carries the records selected so far. The zero value is
// StageEmpty.
type Pipeline struct {
	analysis *api.Analysis
	prompt   *api.PromptIdea
}

func (p Pipeline) Stage() Stage {
	switch {
	case p.prompt != nil:
		return StagePrompt
	case p.analysis != nil:
		return StageAnalysis
	default:
		return StageEmpty
	}
}

// Analysis returns the selected analysis, if any.
func (p Pipeline) Analysis() (api.Analysis, bool) {
	if p.analysis == nil {
		return api.Analysis{}, false
	}
	return *p.analysis, true
}

// Prompt returns the selected prompt idea, if any.
func (p Pipeline) Prompt() (api.PromptIdea, bool) {
	if p.prompt == nil {
		return api.PromptIdea{}, false
	}
	return *p.prompt, true
}

// SelectAnalysis moves to StageAnalysis. The selected prompt survives only
// when the same analysis is selected again.
func (p Pipeline) SelectAnalysis(a api.Analysis) Pipeline {
	next := Pipeline{analysis: &a}
	if p.analysis != nil && p.analysis.ID == a.ID {
		next.prompt = p.prompt
	}
	return next
}

// SelectPrompt moves to StagePrompt. The prompt must belong to the selected
// analysis.
func (p Pipeline) SelectPrompt(pi api.PromptIdea) (Pipeline, error) {
	if p.analysis == nil {
		return p, ErrNoAnalysis
	}
	if pi.AnalysisID != p.analysis.ID {
		return p, fmt.Errorf("prompt %d: %w (selected analysis %d, prompt analysis %d)", pi.ID, ErrPromptMismatch, p.analysis.ID, pi.AnalysisID)
	}
	return Pipeline{analysis: p.analysis, prompt: &pi}, nil
}

// Reset returns to StageEmpty.
func (p Pipeline) Reset() Pipeline {
	return Pipeline{}
}
