package llm

import (
	"context"
	"errors"
	"testing"
)

type namedClient struct{}

func (namedClient) Generate(context.Context, Request) (*Reply, error) { return nil, nil }
func (namedClient) ProviderName() string                               { return "fake" }
func (namedClient) ModelName() string                                  { return "fake-1" }

func TestGenerationError_Matching(t *testing.T) {
	err := generationError(namedClient{}, context.DeadlineExceeded)

	if !errors.Is(err, ErrGeneration) {
		t.Error("expected errors.Is(err, ErrGeneration)")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected the cause to stay reachable through Unwrap")
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatal("expected *GenerationError")
	}
	if genErr.Provider != "fake" || genErr.Model != "fake-1" {
		t.Errorf("unexpected provider/model %s/%s", genErr.Provider, genErr.Model)
	}
	if err.Error() != "fake (fake-1): context deadline exceeded" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
