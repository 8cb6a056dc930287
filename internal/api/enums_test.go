package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	t.Parallel()

	p, err := ParseProvider("  DeepSeek ")
	require.NoError(t, err)
	require.Equal(t, ProviderDeepSeek, p)

	_, err = ParseProvider("clade")
	require.EqualError(t, err, `unknown provider "clade" (did you mean "claude"?)`)

	_, err = ParseProvider("anthropic-bedrock")
	require.ErrorContains(t, err, "want one of openai, claude, gemini, deepseek, manus")
}

func TestLengthMaxTokens(t *testing.T) {
	t.Parallel()

	require.Equal(t, 500, LengthShort.MaxTokens())
	require.Equal(t, 1000, LengthMedium.MaxTokens())
	require.Equal(t, 2000, LengthLong.MaxTokens())
}

func TestNextWraps(t *testing.T) {
	t.Parallel()

	require.Equal(t, ProviderClaude, Next(Providers, ProviderOpenAI))
	require.Equal(t, ProviderOpenAI, Next(Providers, ProviderManus))
	require.Equal(t, ContentText, Next(ContentTypes, ContentType("bogus")))
}

func TestThemeLabelFallbacks(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Theme (0% confidence)", ObjectTheme(map[string]any{"other": true}).Label())
	require.Equal(t, "SEO (40% confidence)", ObjectTheme(map[string]any{"name": "SEO", "score": 40.0}).Label())
	require.Equal(t, "Pricing (0% confidence)", ObjectTheme(map[string]any{"theme": "Pricing"}).Label())
	require.Equal(t, "Community", TextTheme("Community").Label())
}

func TestThemeObjectWithoutScoreKeepsSuffix(t *testing.T) {
	t.Parallel()

	var themes []Theme
	require.NoError(t, json.Unmarshal([]byte(`[{"theme": "Pricing"}, "Community", {}]`), &themes))
	require.Equal(t, "Pricing (0% confidence)", themes[0].Label())
	require.Equal(t, "Community", themes[1].Label())
	require.Equal(t, "Theme (0% confidence)", themes[2].Label())

	out, err := json.Marshal(themes)
	require.NoError(t, err)
	require.JSONEq(t, `[{"theme": "Pricing"}, "Community", {}]`, string(out))
}

func TestConfigDescription(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Default default llm", ConfigDescription("default_llm"))
	require.Equal(t, "Default num ideas_max", ConfigDescription("num_ideas_max"))
	require.Equal(t, "Default theme", ConfigDescription("theme"))
}
