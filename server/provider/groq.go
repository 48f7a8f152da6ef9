package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/teilomillet/gollm"
)

// GroqGenerator generates text through the Groq API via gollm.
type GroqGenerator struct {
	llm gollm.LLM

	// gollm generation options are instance-level, so a call that changes
	// them must exclude all in-flight calls. Calls whose options are
	// already applied share a read lock and run concurrently.
	mu      sync.RWMutex
	applied Options
	primed  bool
}

// NewGroqGenerator creates a Groq-backed generator for the given model.
func NewGroqGenerator(apiKey, model string) (*GroqGenerator, error) {
	llm, err := gollm.NewLLM(
		gollm.SetProvider("groq"),
		gollm.SetModel(model),
		gollm.SetAPIKey(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &GroqGenerator{llm: llm}, nil
}

// Name implements TextGenerator.
func (g *GroqGenerator) Name() string { return "groq" }

// Generate implements TextGenerator.
func (g *GroqGenerator) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	g.mu.RLock()
	if g.primed && g.applied == opts {
		defer g.mu.RUnlock()
		return g.generate(ctx, prompt)
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.primed || g.applied != opts {
		g.llm.SetOption("temperature", opts.Temperature)
		if opts.MaxTokens > 0 {
			g.llm.SetOption("max_tokens", opts.MaxTokens)
		}
		g.applied = opts
		g.primed = true
	}
	return g.generate(ctx, prompt)
}

func (g *GroqGenerator) generate(ctx context.Context, prompt string) (string, error) {
	out, err := g.llm.Generate(ctx, g.llm.NewPrompt(prompt))
	if err != nil {
		return "", fmt.Errorf("groq generate: %w", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
