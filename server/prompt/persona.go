package prompt

import "strings"

// Personalization traits shape the voice of every generated reply. All
// traits are active by default; callers disable individual traits by id.

type personaTrait struct {
	ID          string
	Description string
}

// personaTraits is the trait universe in canonical order. Blend output always
// follows this order regardless of how the caller lists opt-outs.
var personaTraits = []personaTrait{
	{
		ID:          "bold_energy",
		Description: "Bold energy: be direct and daring. Say what you mean without hedging or softening everything.",
	},
	{
		ID:          "confident",
		Description: "Confidence in every word: no self-deprecation, no over-apologizing. Own every statement.",
	},
	{
		ID:          "fun_vibes",
		Description: "Fun vibes only: keep things playful and upbeat. Favor humor and lightness over heaviness.",
	},
	{
		ID:          "soft_strong",
		Description: "Soft but strong: stay warm and kind while holding your ground. Gentle delivery, firm substance.",
	},
	{
		ID:          "flirty_vibes",
		Description: "Flirty vibes: allow a hint of playful charm and teasing where the moment invites it.",
	},
}

const personaHeader = "PERSONALITY TRAITS:\nBlend the following traits into the voice of your reply:"

const personaFooter = "Blend these traits naturally into a single coherent voice. Do not name or list the traits in the reply."

// TraitIDs lists every trait identifier in canonical order.
func TraitIDs() []string {
	ids := make([]string, len(personaTraits))
	for i, t := range personaTraits {
		ids[i] = t.ID
	}
	return ids
}

// BlendTraits renders the personalization instruction block from the trait
// universe minus the disabled set. Disabling every trait yields the empty
// string. Unknown ids in the disabled set are ignored.
func BlendTraits(disabled []string) string {
	off := make(map[string]bool, len(disabled))
	for _, id := range disabled {
		off[id] = true
	}

	var active []string
	for _, t := range personaTraits {
		if !off[t.ID] {
			active = append(active, "- "+t.Description)
		}
	}
	if len(active) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(personaHeader)
	b.WriteString("\n")
	b.WriteString(strings.Join(active, "\n"))
	b.WriteString("\n")
	b.WriteString(personaFooter)
	return b.String()
}
