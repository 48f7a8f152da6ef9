// Package mocks provides test doubles for the provider interfaces.
package mocks

import (
	"context"

	"github.com/socialwiz/wingman/server/provider"
)

// MockGenerator implements provider.TextGenerator with a configurable
// generate function for testing.
type MockGenerator struct {
	ProviderName string
	GenerateFunc func(ctx context.Context, prompt string, opts provider.Options) (string, error)

	// Calls records every prompt passed to Generate.
	Calls []GenerateCall
}

// GenerateCall captures the arguments of one Generate invocation.
type GenerateCall struct {
	Prompt string
	Opts   provider.Options
}

// NewMockGenerator creates a mock that always returns response.
func NewMockGenerator(name, response string) *MockGenerator {
	return &MockGenerator{
		ProviderName: name,
		GenerateFunc: func(ctx context.Context, prompt string, opts provider.Options) (string, error) {
			return response, nil
		},
	}
}

func (m *MockGenerator) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, opts provider.Options) (string, error) {
	m.Calls = append(m.Calls, GenerateCall{Prompt: prompt, Opts: opts})
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, opts)
	}
	return "mock response", nil
}

// MockVision implements provider.VisionDescriber for testing.
type MockVision struct {
	DescribeFunc func(ctx context.Context, instruction string, image provider.Image) (string, error)

	// Instructions records every instruction passed to Describe.
	Instructions []string
}

func (m *MockVision) Describe(ctx context.Context, instruction string, image provider.Image) (string, error) {
	m.Instructions = append(m.Instructions, instruction)
	if m.DescribeFunc != nil {
		return m.DescribeFunc(ctx, instruction, image)
	}
	return "mock image description", nil
}
