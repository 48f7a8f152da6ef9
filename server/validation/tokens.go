// Package validation enforces request-level limits before a prompt is sent
// to a provider.
package validation

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer defines the interface for token counting
type Tokenizer interface {
	Encode(text string, allowedSpecial, disallowedSpecial []string) []int
	CountTokens(text string) int
}

// tiktokenWrapper wraps tiktoken to implement our Tokenizer interface
type tiktokenWrapper struct {
	*tiktoken.Tiktoken
}

func (t *tiktokenWrapper) CountTokens(text string) int {
	return len(t.Encode(text, nil, nil))
}

// TokenCounter bounds composed prompts by token count. The upstream models
// are not OpenAI models, so cl100k_base is an approximation; it is close
// enough for a budget check.
type TokenCounter struct {
	encoding  Tokenizer
	maxTokens int
}

// NewTokenCounter creates a counter with the given prompt budget.
func NewTokenCounter(maxTokens int) (*TokenCounter, error) {
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to load cl100k_base encoding: %v", err)
	}
	return &TokenCounter{
		encoding:  &tiktokenWrapper{encoding},
		maxTokens: maxTokens,
	}, nil
}

// CountTokens counts the tokens in text.
func (tc *TokenCounter) CountTokens(text string) int {
	return tc.encoding.CountTokens(text)
}

// CheckPrompt returns an error when the prompt exceeds the budget.
func (tc *TokenCounter) CheckPrompt(prompt string) error {
	if tc.maxTokens <= 0 {
		return nil
	}
	count := tc.CountTokens(prompt)
	if count > tc.maxTokens {
		return fmt.Errorf("prompt exceeds token limit: %d > %d", count, tc.maxTokens)
	}
	return nil
}
