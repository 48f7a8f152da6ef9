package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlendTraitsDefault(t *testing.T) {
	// No opt-outs: every trait appears, in canonical order.
	block := BlendTraits(nil)
	require.NotEmpty(t, block)
	assert.True(t, strings.HasPrefix(block, personaHeader))
	assert.True(t, strings.HasSuffix(block, personaFooter))

	lastIdx := -1
	for _, trait := range personaTraits {
		idx := strings.Index(block, trait.Description)
		require.NotEqual(t, -1, idx, "missing trait %s", trait.ID)
		assert.Greater(t, idx, lastIdx, "trait %s out of canonical order", trait.ID)
		lastIdx = idx
	}
}

func TestBlendTraitsPartialOptOut(t *testing.T) {
	block := BlendTraits([]string{"flirty_vibes", "bold_energy"})
	assert.NotContains(t, block, "Flirty vibes")
	assert.NotContains(t, block, "Bold energy")
	assert.Contains(t, block, "Confidence in every word")
	assert.Contains(t, block, "Fun vibes only")
	assert.Contains(t, block, "Soft but strong")
}

func TestBlendTraitsFullOptOut(t *testing.T) {
	assert.Equal(t, "", BlendTraits(TraitIDs()))
}

func TestBlendTraitsUnknownIDsIgnored(t *testing.T) {
	assert.Equal(t, BlendTraits(nil), BlendTraits([]string{"no_such_trait"}))
}

func TestBlendTraitsDeterministic(t *testing.T) {
	disabled := []string{"soft_strong"}
	assert.Equal(t, BlendTraits(disabled), BlendTraits(disabled))

	// Caller-supplied order does not affect output.
	a := BlendTraits([]string{"confident", "fun_vibes"})
	b := BlendTraits([]string{"fun_vibes", "confident"})
	assert.Equal(t, a, b)
}
