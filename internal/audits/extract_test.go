package audits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audit-backend/internal/llm"
)

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare object", in: `{"a":1}`, want: `{"a":1}`},
		{name: "surrounding whitespace", in: "\n  {\"a\":1}\n ", want: `{"a":1}`},
		{name: "code fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "prose before and after", in: "Here is the audit:\n{\"a\":{\"b\":2}}\nLet me know!", want: `{"a":{"b":2}}`},
		{name: "braces inside strings", in: `note {"a":"}{","b":"\"}"} trailing }`, want: `{"a":"}{","b":"\"}"}`},
		{name: "skips unbalanced prose braces", in: `use {curly} style: {"a":1}`, want: `{"a":1}`},
		{name: "first of two objects", in: `{"first":true} and {"second":true}`, want: `{"first":true}`},
		{name: "fence with prose", in: "Sure!\n```json\n{\"a\":1}\n```\nDone.", want: `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tc.in)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(got))
		})
	}
}

func TestExtractJSONObjectMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"I could not analyze that site.",
		`{"a": 1`,
		`[1,2,3]`,
		`{not json at all}`,
	} {
		_, err := ExtractJSONObject(in)
		require.Error(t, err, "input %q", in)
		kind, ok := llm.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, llm.KindMalformedResponse, kind, "input %q", in)
	}
}

func TestMatchingBrace(t *testing.T) {
	s := `x{"k":"\\"}y`
	assert.Equal(t, len(s)-2, matchingBrace(s, 1))
	assert.Equal(t, -1, matchingBrace(`{"open":`, 0))
}
