// Package vision extracts conversation context from chat screenshots.
package vision

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/socialwiz/wingman/server/provider"
)

// ContextType selects which extraction instruction to use.
type ContextType string

const (
	// ContextGeneral summarizes the visible conversation.
	ContextGeneral ContextType = "general"
	// ContextCurveball additionally identifies the awkward moment.
	ContextCurveball ContextType = "curveball"
)

const generalInstruction = `Analyze this chat screenshot image carefully.

STEP 1 - Extract messages by spatial position:
- Messages on the LEFT side are from the OTHER PERSON
- Messages on the RIGHT side are from ME (the user)

STEP 2 - Understand the conversation context:
- What is the conversation about?
- What is the tone/mood of the conversation?
- What is the relationship dynamic between the two people?
- What topics are being discussed?
- Is there any emotional undertone (friendly, flirty, serious, casual, conflicted, etc.)?

Provide a clear, concise description (2-3 sentences) of the conversation context.
Do NOT include message sequences, timestamps, or technical details.
Do NOT list individual messages.
Return plain text description only.`

const curveballInstruction = `Analyze this chat screenshot image carefully.

STEP 1 - Extract messages by spatial position:
- Messages on the LEFT side are from the OTHER PERSON
- Messages on the RIGHT side are from ME (the user)

STEP 2 - Understand the conversation context:
- What is the conversation about?
- What is the tone/mood of the conversation?
- What is the relationship dynamic between the two people?
- What topics are being discussed?
- Is there any emotional undertone (friendly, flirty, serious, casual, conflicted, etc.)?
- What is the awkward or curveball situation visible?

Provide a clear, concise description (2-3 sentences) of the conversation context, emotional dynamics, and the curveball situation.
Do NOT include message sequences, timestamps, or technical details.
Do NOT list individual messages.
Return plain text description only.`

// Extractor turns chat screenshots into short context summaries using a
// vision-capable provider.
type Extractor struct {
	describer provider.VisionDescriber
	logger    *zap.Logger
}

// NewExtractor creates an extractor backed by the given describer.
func NewExtractor(describer provider.VisionDescriber, logger *zap.Logger) *Extractor {
	return &Extractor{describer: describer, logger: logger}
}

// Extract returns a short description of the conversation in the screenshot,
// or "" when extraction fails or produces nothing. Failure is not an error:
// callers proceed without the context.
func (e *Extractor) Extract(ctx context.Context, image provider.Image, contextType ContextType) string {
	instruction := generalInstruction
	if contextType == ContextCurveball {
		instruction = curveballInstruction
	}

	description, err := e.describer.Describe(ctx, instruction, image)
	if err != nil {
		e.logger.Warn("image context extraction failed",
			zap.String("context_type", string(contextType)),
			zap.Error(err),
		)
		return ""
	}
	return strings.TrimSpace(description)
}
