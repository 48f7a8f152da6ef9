package prompt

import (
	"fmt"
	"strings"
)

// Inputs are interpolated verbatim. The consumer is a language model, not an
// interpreter, so no escaping is needed beyond the surrounding quotes.

// RewriteInput carries the fields for a rewrite prompt.
type RewriteInput struct {
	OriginalMessage string
	UserDraft       string
	Mood            string
	PersonalContext string
	ImageContext    string
	PersonaBlock    string
}

// IcebreakerInput carries the fields for an icebreaker prompt.
type IcebreakerInput struct {
	OpenerType   string
	Context      string
	PersonaBlock string
}

// CurveballInput carries the fields for a curveball prompt.
type CurveballInput struct {
	Situation    string
	Mood         string
	ImageContext string
	PersonaBlock string
}

func optionalSection(label, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return fmt.Sprintf("\n- %s: %s", label, value)
}

func personaSection(block string) string {
	if strings.TrimSpace(block) == "" {
		return ""
	}
	return "\n\n" + block
}

// BuildRewritePrompt composes the instruction for restyling a user's draft
// reply to match a target mood. Personal context and image context are both
// included when present, personal context first.
func BuildRewritePrompt(in RewriteInput) string {
	targetTone := ResolveRewriteTone(in.Mood)

	var b strings.Builder
	b.WriteString(`SYSTEM INSTRUCTIONS:
You are an expert conversation stylist. Your task is to rewrite a user's draft reply to match a specific target mood.
You must strictly follow these rules:
1. Analyze the 'Original Message' and 'User Draft'.
2. Rewrite the 'User Draft' to match the 'Target Tone'.
3. Incorporate 'Personal Context' if provided.
4. Use 'Visual Context' from the chat screenshot to better understand the conversation flow and dynamics.
5. OUTPUT FORMAT: Respond ONLY with a JSON object in this exact format: {"reply": "your rewritten message here"}
6. Do NOT include markdown formatting, explanations, or any other text.`)
	b.WriteString(personaSection(in.PersonaBlock))
	b.WriteString("\n\nINPUT DATA:")
	fmt.Fprintf(&b, "\n- Original Message: %q", in.OriginalMessage)
	fmt.Fprintf(&b, "\n- User Draft: %q", in.UserDraft)
	fmt.Fprintf(&b, "\n- Target Tone: %s", targetTone)
	b.WriteString(optionalSection("Personal Context", in.PersonalContext))
	b.WriteString(optionalSection("Visual Context from Chat Screenshot", in.ImageContext))
	b.WriteString("\n\nRespond with ONLY: {\"reply\": \"your rewritten message\"}")
	return b.String()
}

// BuildIcebreakerPrompt composes the instruction for generating a
// conversation opener of the requested structural type.
func BuildIcebreakerPrompt(in IcebreakerInput) string {
	openerInstruction := ResolveOpenerType(in.OpenerType)

	var b strings.Builder
	b.WriteString(`SYSTEM INSTRUCTIONS:
You are an expert conversation starter and social communication specialist. Your task is to generate engaging, creative, and personalized icebreaker messages for conversations.

You must strictly follow these rules:
1. Generate a conversation opener based on the specified 'Opener Type'.
2. Make it interesting, engaging, and natural - not too formal or awkward.
3. If 'Context' is provided, incorporate it subtly to make the opener more personalized and relevant.
4. Keep it concise (1-3 sentences maximum).
5. Make it open-ended to encourage a response.
6. OUTPUT FORMAT: Respond ONLY with a JSON object in this exact format: {"reply": "your icebreaker message here"}
7. Do NOT include markdown formatting, explanations, or any other text.`)
	b.WriteString(personaSection(in.PersonaBlock))
	b.WriteString("\n\nTASK:")
	fmt.Fprintf(&b, "\n- Opener Type: %s", openerInstruction)
	b.WriteString(optionalSection("Context", in.Context))
	b.WriteString("\n\nRespond with ONLY: {\"reply\": \"your icebreaker message\"}")
	return b.String()
}

// BuildCurveballPrompt composes the instruction for replying to an awkward
// or unexpected conversational moment in the requested mood.
func BuildCurveballPrompt(in CurveballInput) string {
	targetTone := ResolveCurveballMood(in.Mood)

	var b strings.Builder
	b.WriteString(`SYSTEM INSTRUCTIONS:
You are an expert at handling awkward, confusing, or curveball moments in conversations. Your task is to craft the perfect reply that handles the situation smoothly.

You must strictly follow these rules:
1. Analyze the curveball/awkward situation described.
2. Generate a reply that handles it according to the specified mood.
3. Make it natural, authentic, and conversation-appropriate.
4. Keep it concise (1-3 sentences typically).
5. Turn the awkward moment into a smooth continuation of the conversation.
6. OUTPUT FORMAT: Respond ONLY with a JSON object in this exact format: {"reply": "your response here"}
7. Do NOT include markdown formatting, explanations, or any other text.`)
	b.WriteString(personaSection(in.PersonaBlock))
	b.WriteString("\n\nINPUT DATA:")
	fmt.Fprintf(&b, "\n- Situation: %q", in.Situation)
	fmt.Fprintf(&b, "\n- Target Mood: %s", targetTone)
	b.WriteString(optionalSection("Visual Context from Screenshot", in.ImageContext))
	b.WriteString("\n\nRespond with ONLY: {\"reply\": \"your curveball response\"}")
	return b.String()
}
