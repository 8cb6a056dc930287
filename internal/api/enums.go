package api

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Provider identifies the backend LLM integration used for an operation.
type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderClaude   Provider = "claude"
	ProviderGemini   Provider = "gemini"
	ProviderDeepSeek Provider = "deepseek"
	ProviderManus    Provider = "manus"
)

// Providers lists every provider in display order.
var Providers = []Provider{ProviderOpenAI, ProviderClaude, ProviderGemini, ProviderDeepSeek, ProviderManus}

var providerNames = map[Provider]string{
	ProviderOpenAI:   "OpenAI",
	ProviderClaude:   "Claude",
	ProviderGemini:   "Gemini",
	ProviderDeepSeek: "DeepSeek",
	ProviderManus:    "Manus",
}

// DisplayName is the human label, e.g. "DeepSeek".
func (p Provider) DisplayName() string {
	if n, ok := providerNames[p]; ok {
		return n
	}
	return string(p)
}

// maxSuggestDistance bounds how far a typo may be from a known provider name
// before no suggestion is offered.
const maxSuggestDistance = 3

// ParseProvider normalizes s and checks it against the known providers.
func ParseProvider(s string) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, p := range Providers {
		if string(p) == name {
			return p, nil
		}
	}
	if hint := suggest(name, providerStrings()); hint != "" {
		return "", fmt.Errorf("unknown provider %q (did you mean %q?)", s, hint)
	}
	return "", fmt.Errorf("unknown provider %q (want one of %s)", s, strings.Join(providerStrings(), ", "))
}

func providerStrings() []string {
	out := make([]string, len(Providers))
	for i, p := range Providers {
		out[i] = string(p)
	}
	return out
}

// AnalysisType is the focus of a competitor analysis.
type AnalysisType string

const (
	AnalysisBlog    AnalysisType = "blog"
	AnalysisSocial  AnalysisType = "social"
	AnalysisWebsite AnalysisType = "website"
)

var AnalysisTypes = []AnalysisType{AnalysisBlog, AnalysisSocial, AnalysisWebsite}

func (t AnalysisType) DisplayName() string {
	switch t {
	case AnalysisBlog:
		return "Blog content"
	case AnalysisSocial:
		return "Social media"
	case AnalysisWebsite:
		return "Website copy"
	}
	return string(t)
}

func ParseAnalysisType(s string) (AnalysisType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, t := range AnalysisTypes {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown analysis type %q (want blog, social or website)", s)
}

// ContentType is the kind of artifact to generate.
type ContentType string

const (
	ContentText      ContentType = "text"
	ContentImage     ContentType = "image"
	ContentTextImage ContentType = "text+image"
)

var ContentTypes = []ContentType{ContentText, ContentImage, ContentTextImage}

func (t ContentType) DisplayName() string {
	switch t {
	case ContentText:
		return "Text"
	case ContentImage:
		return "Image"
	case ContentTextImage:
		return "Text + Image"
	}
	return string(t)
}

func ParseContentType(s string) (ContentType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, t := range ContentTypes {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown content type %q (want text, image or text+image)", s)
}

// Length controls the size of generated text.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

var Lengths = []Length{LengthShort, LengthMedium, LengthLong}

// MaxTokens is the token budget sent alongside a length.
func (l Length) MaxTokens() int {
	switch l {
	case LengthShort:
		return 500
	case LengthLong:
		return 2000
	default:
		return 1000
	}
}

func ParseLength(s string) (Length, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, l := range Lengths {
		if string(l) == name {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown length %q (want short, medium or long)", s)
}

// Tone is the voice of generated text.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneEnthusiastic Tone = "enthusiastic"
)

var Tones = []Tone{ToneProfessional, ToneCasual, ToneEnthusiastic}

func ParseTone(s string) (Tone, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, t := range Tones {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tone %q (want professional, casual or enthusiastic)", s)
}

// ContentParameters builds the parameters object for a generate request.
func ContentParameters(length Length, tone Tone) map[string]any {
	return map[string]any{
		"length":     string(length),
		"tone":       string(tone),
		"max_tokens": length.MaxTokens(),
	}
}

// Next returns the element after cur in values, wrapping around.
func Next[T comparable](values []T, cur T) T {
	for i, v := range values {
		if v == cur {
			return values[(i+1)%len(values)]
		}
	}
	if len(values) == 0 {
		return cur
	}
	return values[0]
}

func suggest(name string, candidates []string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(name, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
