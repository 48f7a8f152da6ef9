package processing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "bare json object",
			raw:  `{"reply": "Sounds good, see you then!"}`,
			want: "Sounds good, see you then!",
		},
		{
			name: "fenced with language tag",
			raw:  "```json\n{\"reply\": \"Hey there!\"}\n```",
			want: "Hey there!",
		},
		{
			name: "fenced without language tag",
			raw:  "```\n{\"reply\": \"Hey there!\"}\n```",
			want: "Hey there!",
		},
		{
			name: "surrounding whitespace",
			raw:  "  \n{\"reply\": \"ok\"}\n  ",
			want: "ok",
		},
		{
			name: "object embedded in prose",
			raw:  `Here is your reply: {"reply": "Works for me"} hope that helps!`,
			want: "Works for me",
		},
		{
			name: "fence on same line as object",
			raw:  "```{\"reply\": \"inline\"}```",
			want: "inline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Reply)
		})
	}
}

func TestNormalizeInvalidFormat(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "plain prose", raw: "Sure! Sounds good, see you then!"},
		{name: "empty string", raw: ""},
		{name: "broken json", raw: `{"reply": "unterminated`},
		{name: "fenced prose", raw: "```\nnot json at all\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			require.Error(t, err)

			var nerr *NormalizeError
			require.True(t, errors.As(err, &nerr))
			assert.Equal(t, InvalidFormat, nerr.Kind)
			// The original text survives for diagnostics.
			assert.Equal(t, tt.raw, nerr.RawOutput)
		})
	}
}

func TestNormalizeMissingField(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "wrong key", raw: `{"message": "hello"}`},
		{name: "empty object", raw: `{}`},
		{name: "reply not a string", raw: `{"reply": 42}`},
		{name: "reply empty", raw: `{"reply": "  "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			require.Error(t, err)

			var nerr *NormalizeError
			require.True(t, errors.As(err, &nerr))
			assert.Equal(t, MissingField, nerr.Kind)
		})
	}
}

func TestNormalizeNeverSynthesizes(t *testing.T) {
	_, err := Normalize("I think you should say hi back.")
	require.Error(t, err)
}
