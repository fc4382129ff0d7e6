package audits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audit-backend/internal/llm"
)

func TestNewUserInputNormalizesScheme(t *testing.T) {
	cases := map[string]string{
		"example.com":                "https://example.com",
		"  example.com/path  ":       "https://example.com/path",
		"http://example.com":         "http://example.com",
		"https://example.com":        "https://example.com",
		"HTTPS://Example.com":        "HTTPS://Example.com",
		"httpbin.org":                "https://httpbin.org",
		"www.example.co.uk/?q=1#top": "https://www.example.co.uk/?q=1#top",
	}
	for raw, want := range cases {
		in, err := NewUserInput(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, in.WebsiteURL, raw)
	}
}

func TestNewUserInputRejectsBlankAndBroken(t *testing.T) {
	for _, raw := range []string{"", "   ", "https://", "exa mple.com"} {
		_, err := NewUserInput(raw)
		require.Error(t, err, raw)
		kind, _ := llm.KindOf(err)
		assert.Equal(t, llm.KindInvalidInput, kind, raw)
	}
	_, err := NewUserInput("")
	assert.EqualError(t, err, MissingURLMessage)
}

func TestUserInputHost(t *testing.T) {
	in, err := NewUserInput("www.example.com/about")
	require.NoError(t, err)
	assert.Equal(t, "example.com", in.Host())
}

func TestParseMaturityLevel(t *testing.T) {
	level, err := ParseMaturityLevel("growth-stage")
	require.NoError(t, err)
	assert.Equal(t, MaturityGrowthStage, level)
	assert.Equal(t, 1, level.Rank())

	_, err = ParseMaturityLevel("")
	assert.Error(t, err)
	_, err = ParseMaturityLevel("expert")
	assert.Error(t, err)
	assert.Equal(t, -1, MaturityLevel("expert").Rank())
}
