// Package prompt assembles the instruction strings sent to the generation
// providers. It holds the static tone registries, the personalization trait
// blender, and the per-mode prompt builders.
package prompt

// Tone registries are fixed tables. Lookups with an unknown identifier
// degrade to the mode's default instruction, never an error.

var rewriteTones = map[string]string{
	"casual":     "Casual, friendly, and relaxed.",
	"flirty":     "Subtly playful and flirty (not explicit).",
	"nonchalant": "Short, detached, and unconcerned.",
	"slap_back":  "Witty, biting, and sharp (not abusive).",
}

const defaultRewriteTone = "Match the requested tone."

var openerTypes = map[string]string{
	"if_you":               "Start with 'If you...' followed by an interesting hypothetical scenario or question.",
	"between":              "Start with 'Between...' presenting two interesting options or choices.",
	"if_i_was":             "Start with 'If I was...' creating an imaginative scenario or role-play situation.",
	"would_you_rather":     "Start with 'Would you rather...' presenting two intriguing alternatives.",
	"what_is_something":    "Start with 'What is something that...' asking about preferences, experiences, or beliefs.",
	"in_a_situation":       "Start with 'In a situation where...' describing a hypothetical scenario.",
	"how_would_you_handle": "Start with 'How would you handle...' presenting a situation requiring a response or decision.",
}

const defaultOpenerType = "Generate an engaging conversation opener."

var curveballMoods = map[string]string{
	"casual":      "Keep it light, relaxed, and easy-going. Don't overthink the situation.",
	"apologetic":  "Be understanding and apologetic. Show you care about the confusion or misunderstanding.",
	"encouraging": "Be positive, supportive, and uplifting. Turn the awkward moment into something good.",
	"sarcastic":   "Use witty sarcasm and humor to deflect or address the situation playfully (not mean).",
	"curious":     "Show genuine interest and curiosity. Ask questions to understand better.",
	"flirty":      "Turn the awkward moment into a playful, flirty opportunity while staying smooth.",
	"empathetic":  "Show deep understanding and emotional connection. Validate their feelings or situation.",
}

const defaultCurveballMood = "Handle the situation appropriately."

// ResolveRewriteTone returns the tone instruction for a rewrite mood.
// An absent mood means casual; only an unrecognized one falls back to
// the generic default.
func ResolveRewriteTone(mood string) string {
	if mood == "" {
		mood = "casual"
	}
	if instruction, ok := rewriteTones[mood]; ok {
		return instruction
	}
	return defaultRewriteTone
}

// ResolveOpenerType returns the structural instruction for an icebreaker
// opener type, falling back to the default when unrecognized.
func ResolveOpenerType(openerType string) string {
	if instruction, ok := openerTypes[openerType]; ok {
		return instruction
	}
	return defaultOpenerType
}

// ResolveCurveballMood returns the mood instruction for a curveball reply.
// An absent mood means casual; only an unrecognized one falls back to
// the generic default.
func ResolveCurveballMood(mood string) string {
	if mood == "" {
		mood = "casual"
	}
	if instruction, ok := curveballMoods[mood]; ok {
		return instruction
	}
	return defaultCurveballMood
}

// RewriteMoods lists the recognized rewrite moods.
func RewriteMoods() []string {
	return []string{"casual", "flirty", "nonchalant", "slap_back"}
}

// OpenerTypes lists the recognized icebreaker opener types.
func OpenerTypes() []string {
	return []string{
		"if_you", "between", "if_i_was", "would_you_rather",
		"what_is_something", "in_a_situation", "how_would_you_handle",
	}
}

// CurveballMoods lists the recognized curveball moods.
func CurveballMoods() []string {
	return []string{
		"casual", "apologetic", "encouraging", "sarcastic",
		"curious", "flirty", "empathetic",
	}
}
