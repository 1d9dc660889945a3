// Package llm provides a provider-agnostic interface for asking a generative
// model for a market analysis. Providers that support it search the web first
// and report the sources they consulted as grounding citations.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Request is one generation call.
type Request struct {
	Prompt string
	// Grounded asks the provider to search the web before answering.
	Grounded bool
}

// Citation is a raw grounding record as reported by the provider.
// Either field may be empty; filtering happens downstream.
type Citation struct {
	URI   string
	Title string
}

// Reply is the untouched output of a generation call.
type Reply struct {
	Text      string
	Citations []Citation
}

// Client is the interface for generation providers. Gemini, Anthropic and
// OpenAI implement it, so the provider chain can fall back from one to another.
// Each Generate call makes exactly one request and never retries.
type Client interface {
	Generate(ctx context.Context, req Request) (*Reply, error)
	ProviderName() string
	ModelName() string
}

// ErrGeneration matches any *GenerationError via errors.Is.
var ErrGeneration = errors.New("generation failed")

// GenerationError reports that the external service call did not succeed
// (transport, auth, quota or service-side failure).
type GenerationError struct {
	Provider string
	Model    string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Provider, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

func generationError(c Client, err error) error {
	return &GenerationError{Provider: c.ProviderName(), Model: c.ModelName(), Err: err}
}
