// Package provider implements the generation-provider clients used by the
// chat pipeline. Two interchangeable text providers are supported (Groq and
// Gemini); Gemini additionally serves vision extraction. Which provider a
// mode uses is a fixed routing decision made by the processor, not runtime
// negotiation.
package provider

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider call succeeds at the transport
// level but carries no usable text. Callers treat it like any other provider
// failure; it is never silently replaced with a default reply at this layer.
var ErrEmptyResponse = errors.New("provider returned empty response")

// Options controls a single generation call.
type Options struct {
	// Temperature steers sampling randomness; creative modes run warmer
	// than the near-deterministic vision extraction.
	Temperature float64

	// MaxTokens caps the generated output length.
	MaxTokens int
}

// TextGenerator produces free text from a composed prompt. Implementations
// must be safe for concurrent use.
type TextGenerator interface {
	// Name identifies the provider for routing, logs and metrics.
	Name() string

	// Generate sends the prompt and returns the raw model text. A
	// structurally empty success is surfaced as ErrEmptyResponse.
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// VisionDescriber answers a fixed instruction about an attached image.
type VisionDescriber interface {
	// Describe sends the instruction together with the image and returns
	// the model's free-text description.
	Describe(ctx context.Context, instruction string, image Image) (string, error)
}

// Image is a decoded attachment: raw bytes plus their MIME type.
type Image struct {
	Data []byte
	MIME string
}
