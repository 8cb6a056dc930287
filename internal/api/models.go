package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIKey is a provider credential as reported by the backend. The encrypted
// key material is never decoded client-side.
type APIKey struct {
	ID        int64      `json:"id"`
	Provider  Provider   `json:"provider"`
	IsActive  bool       `json:"is_active"`
	CreatedAt Timestamp  `json:"created_at"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
}

// Configuration is a backend-stored key/value setting.
type Configuration struct {
	ID          int64      `json:"id"`
	Key         string     `json:"key"`
	Value       string     `json:"value"`
	Description string     `json:"description,omitempty"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   *Timestamp `json:"updated_at,omitempty"`
}

// Analysis is the backend's summary of a competitor's content strategy.
type Analysis struct {
	ID              int64        `json:"id"`
	CompetitorURL   string       `json:"competitor_url"`
	AnalysisType    AnalysisType `json:"analysis_type"`
	Provider        Provider     `json:"provider"`
	ContentThemes   []Theme      `json:"content_themes"`
	ContentStrategy []string     `json:"content_strategy"`
	RawAnalysis     string       `json:"raw_analysis,omitempty"`
	CreatedAt       Timestamp    `json:"created_at"`
}

// Theme is one entry of an analysis' content themes: either a free-form
// object (usually {"theme", "confidence"}) or a bare string.
type Theme struct {
	// Fields is the theme object; nil for bare-string themes.
	Fields map[string]any
	// Text is the bare string, when the backend sent one.
	Text string
}

// TextTheme returns a bare-string theme.
func TextTheme(s string) Theme { return Theme{Text: s} }

// ObjectTheme returns a theme object.
func ObjectTheme(fields map[string]any) Theme { return Theme{Fields: fields} }

func (t *Theme) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Theme{Text: s}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if m == nil {
		m = map[string]any{}
	}
	*t = Theme{Fields: m}
	return nil
}

func (t Theme) MarshalJSON() ([]byte, error) {
	if t.Fields == nil {
		return json.Marshal(t.Text)
	}
	return json.Marshal(t.Fields)
}

// Label renders the theme the way the analysis view lists it. Bare strings
// are shown as-is; objects always carry a confidence suffix.
func (t Theme) Label() string {
	if t.Fields == nil {
		return t.Text
	}
	name := firstString(t.Fields, "theme", "name")
	if name == "" {
		name = "Theme"
	}
	score, _ := firstNumber(t.Fields, "confidence", "score")
	return fmt.Sprintf("%s (%s%% confidence)", name, trimFloat(score))
}

// PromptIdea is a content prompt derived from an analysis.
type PromptIdea struct {
	ID              int64     `json:"id"`
	AnalysisID      int64     `json:"analysis_id"`
	PromptText      string    `json:"prompt_text"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty"`
	Provider        Provider  `json:"provider"`
	CreatedAt       Timestamp `json:"created_at"`
}

// ConfidenceLabel is the badge text shown next to a prompt.
func (p PromptIdea) ConfidenceLabel() string {
	if p.ConfidenceScore == nil || *p.ConfidenceScore == 0 {
		return "New Prompt"
	}
	return fmt.Sprintf("%.0f%% confidence", *p.ConfidenceScore)
}

// Content is a generated text/image artifact.
type Content struct {
	ID          int64       `json:"id"`
	PromptID    int64       `json:"prompt_id"`
	ContentType ContentType `json:"content_type"`
	ContentText string      `json:"content_text,omitempty"`
	ContentURL  string      `json:"content_url,omitempty"`
	Provider    Provider    `json:"provider"`
	Parameters  string      `json:"parameters,omitempty"`
	CreatedAt   Timestamp   `json:"created_at"`
}

// AnalyzeRequest is the body of POST /analysis/analyze.
type AnalyzeRequest struct {
	CompetitorURL string       `json:"competitor_url"`
	AnalysisType  AnalysisType `json:"analysis_type"`
	Provider      Provider     `json:"provider"`
}

// GeneratePromptsRequest is the body of POST /analysis/generate-prompts.
type GeneratePromptsRequest struct {
	AnalysisID int64    `json:"analysis_id"`
	Provider   Provider `json:"provider"`
	NumIdeas   int      `json:"num_ideas"`
}

// GenerateContentRequest is the body of POST /content/generate.
type GenerateContentRequest struct {
	PromptID    int64          `json:"prompt_id"`
	ContentType ContentType    `json:"content_type"`
	Provider    Provider       `json:"provider"`
	Parameters  map[string]any `json:"parameters"`
}

type apiKeyRequest struct {
	Provider Provider `json:"provider"`
	APIKey   string   `json:"api_key"`
}

// ConfigDescription is the description stored with a configuration value
// saved from the settings form: "Default " plus the key with its first
// underscore turned into a space.
func ConfigDescription(key string) string {
	return "Default " + strings.Replace(key, "_", " ", 1)
}

type configurationRequest struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func firstNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			if v != 0 {
				return v, true
			}
		case int:
			if v != 0 {
				return float64(v), true
			}
		}
	}
	return 0, false
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
