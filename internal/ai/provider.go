// Package ai talks to the language-model providers and turns their free-form
// replies into typed enrichment results.
package ai

import (
	"context"
	"errors"
	"fmt"
)

// Request is a single text or text+image completion request.
type Request struct {
	System    string
	Prompt    string
	Image     []byte // PNG; optional
	MaxTokens int
}

// Provider defines the interface for AI text/vision completion.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// ProviderConfig selects and authenticates a provider.
type ProviderConfig struct {
	Name         string
	Model        string
	AnthropicKey string
	OpenAIKey    string
}

var (
	errEmptyResponse = errors.New("empty response")
	errMissingKey    = errors.New("api key required")
)

const defaultMaxTokens = 1024

// NewProvider creates a provider by name.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch cfg.Name {
	case "", "claude", "anthropic":
		return NewClaudeProvider(cfg.AnthropicKey, cfg.Model)
	case "openai", "gpt":
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: claude, openai)", cfg.Name)
	}
}

func maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}
