package provider

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	geminiTopP = 0.95
	geminiTopK = 40

	// Vision extraction is a factual task, so it runs near-deterministic
	// with a generous output budget for dense screenshots.
	visionTemperature     = 0.1
	visionMaxOutputTokens = 2048
)

// GeminiClient serves both text generation and vision extraction through
// the Gemini API. It implements TextGenerator and VisionDescriber.
type GeminiClient struct {
	client      *genai.Client
	model       string
	visionModel string
}

// NewGeminiClient creates a Gemini client for the given text and vision models.
func NewGeminiClient(ctx context.Context, apiKey, model, visionModel string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		model:       model,
		visionModel: visionModel,
	}, nil
}

// Name implements TextGenerator.
func (g *GeminiClient) Name() string { return "gemini" }

// Generate implements TextGenerator.
func (g *GeminiClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(opts.Temperature)),
		TopP:            genai.Ptr[float32](geminiTopP),
		TopK:            genai.Ptr[float32](geminiTopK),
		MaxOutputTokens: int32(opts.MaxTokens),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Describe implements VisionDescriber. It sends the image alongside the
// instruction in a single user turn.
func (g *GeminiClient) Describe(ctx context.Context, instruction string, image Image) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromBytes(image.Data, image.MIME),
		genai.NewPartFromText(instruction),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](visionTemperature),
		TopP:            genai.Ptr[float32](geminiTopP),
		TopK:            genai.Ptr[float32](geminiTopK),
		MaxOutputTokens: visionMaxOutputTokens,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.visionModel, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini describe image: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
