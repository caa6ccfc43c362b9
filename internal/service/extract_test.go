package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "direct",
			text: `  {"product": "Automated Care Messaging"}  `,
			want: `{"product": "Automated Care Messaging"}`,
		},
		{
			name: "embedded in prose",
			text: `Sure! {"product": "Automated Care Scheduling", "feature": "ACS Booking"} Hope that helps!`,
			want: `{"product": "Automated Care Scheduling", "feature": "ACS Booking"}`,
		},
		{
			name: "markdown fence",
			text: "Here you go:\n```json\n{\"product\": \"x\"}\n```\n",
			want: `{"product": "x"}`,
		},
		{
			name: "braces and quotes inside strings",
			text: `Result: {"how_it_works": "use {curly} and \"quoted\" text }", "n": 1} end`,
			want: `{"how_it_works": "use {curly} and \"quoted\" text }", "n": 1}`,
		},
		{
			name: "nested object",
			text: `x {"a": {"b": [1, 2]}, "c": "d"} y {"e": 1}`,
			want: `{"a": {"b": [1, 2]}, "c": "d"}`,
		},
		{
			name: "skips invalid candidate",
			text: `{not json} and then {"ok": true}`,
			want: `{"ok": true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.text)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestExtractJSONObject_NoObject(t *testing.T) {
	for _, text := range []string{
		"",
		"I'm sorry, I can't help with that.",
		`{"unterminated": "value"`,
		`[1, 2, 3]`,
		`} backwards {`,
	} {
		_, err := ExtractJSONObject(text)
		assert.ErrorIs(t, err, ErrNoJSONObject, "text %q", text)
	}
}
