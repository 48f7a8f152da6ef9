package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRewriteTone(t *testing.T) {
	tests := []struct {
		name string
		mood string
		want string
	}{
		{
			name: "known mood",
			mood: "casual",
			want: "Casual, friendly, and relaxed.",
		},
		{
			name: "slap back",
			mood: "slap_back",
			want: "Witty, biting, and sharp (not abusive).",
		},
		{
			name: "unknown mood falls back to default",
			mood: "aggressive",
			want: defaultRewriteTone,
		},
		{
			name: "absent mood means casual",
			mood: "",
			want: "Casual, friendly, and relaxed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRewriteTone(tt.mood))
		})
	}
}

func TestResolveOpenerType(t *testing.T) {
	assert.Contains(t, ResolveOpenerType("would_you_rather"), "Would you rather")
	assert.Contains(t, ResolveOpenerType("if_you"), "If you")
	assert.Equal(t, defaultOpenerType, ResolveOpenerType("unknown_pattern"))
	assert.Equal(t, defaultOpenerType, ResolveOpenerType(""))
}

func TestResolveCurveballMood(t *testing.T) {
	assert.Contains(t, ResolveCurveballMood("curious"), "curiosity")
	assert.Equal(t, defaultCurveballMood, ResolveCurveballMood("bananas"))
	assert.Contains(t, ResolveCurveballMood(""), "light, relaxed, and easy-going")
}

func TestRegistryListings(t *testing.T) {
	// Every listed identifier must resolve to a non-default instruction.
	for _, mood := range RewriteMoods() {
		assert.NotEqual(t, defaultRewriteTone, ResolveRewriteTone(mood), mood)
	}
	for _, ot := range OpenerTypes() {
		assert.NotEqual(t, defaultOpenerType, ResolveOpenerType(ot), ot)
	}
	for _, mood := range CurveballMoods() {
		assert.NotEqual(t, defaultCurveballMood, ResolveCurveballMood(mood), mood)
	}

	assert.Len(t, RewriteMoods(), 4)
	assert.Len(t, OpenerTypes(), 7)
	assert.Len(t, CurveballMoods(), 7)
}
