package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fleveque/market-radar/internal/llm"
	"github.com/fleveque/market-radar/internal/model"
	"github.com/fleveque/market-radar/internal/storage"
)

// ErrNoProviders is returned when no generation provider is configured.
var ErrNoProviders = errors.New("no generation providers configured")

// LLMProvider asks generation clients for a reply, in configured order.
// Each client gets exactly one request; a failed client falls through to the
// next one and nothing is ever retried on the same client.
//
// Rate limited to keep API costs bounded (~10 calls/minute by default).
type LLMProvider struct {
	clients []llm.Client // Ordered list: first is primary, rest are fallbacks
	limiter *rate.Limiter
	calls   storage.GenerationCallRepository
	logger  *zap.Logger
}

// NewLLMProvider creates a provider with an ordered list of generation clients.
// calls may be nil, in which case no call log is kept.
func NewLLMProvider(
	clients []llm.Client,
	ratePerMinute int,
	calls storage.GenerationCallRepository,
	logger *zap.Logger,
) *LLMProvider {
	// rate.Every returns a rate.Limit from a time interval between events.
	rps := rate.Every(time.Minute / time.Duration(ratePerMinute))

	return &LLMProvider{
		clients: clients,
		limiter: rate.NewLimiter(rps, 1),
		calls:   calls,
		logger:  logger,
	}
}

// Generate sends the request to each provider in order until one succeeds.
// When every provider fails, the last *llm.GenerationError is returned.
func (p *LLMProvider) Generate(ctx context.Context, segment string, req llm.Request) (*Result, error) {
	if len(p.clients) == 0 {
		return nil, &llm.GenerationError{Provider: "none", Model: "none", Err: ErrNoProviders}
	}

	var lastErr error

	for i, client := range p.clients {
		// Blocks until a token is available or the context is cancelled.
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, &llm.GenerationError{
				Provider: client.ProviderName(),
				Model:    client.ModelName(),
				Err:      fmt.Errorf("rate limit wait: %w", err),
			}
		}

		reply, err := p.tryClient(ctx, client, segment, req)
		if err == nil {
			return &Result{Reply: reply, Provider: client.ProviderName(), Model: client.ModelName()}, nil
		}

		lastErr = err

		// A cancelled analysis must not spill over to the next provider.
		if ctx.Err() != nil {
			break
		}

		if i < len(p.clients)-1 {
			p.logger.Warn("generation provider failed, trying next",
				zap.String("segment", segment),
				zap.String("provider", client.ProviderName()),
				zap.Error(err),
			)
		}
	}

	return nil, lastErr
}

func (p *LLMProvider) tryClient(ctx context.Context, client llm.Client, segment string, req llm.Request) (*llm.Reply, error) {
	start := time.Now()
	reply, err := client.Generate(ctx, req)
	duration := time.Since(start).Milliseconds()

	if err != nil {
		var genErr *llm.GenerationError
		if !errors.As(err, &genErr) {
			err = &llm.GenerationError{Provider: client.ProviderName(), Model: client.ModelName(), Err: err}
		}
	}

	p.recordCall(ctx, client, segment, req, reply, err, duration)
	return reply, err
}

func (p *LLMProvider) recordCall(ctx context.Context, client llm.Client, segment string, req llm.Request, reply *llm.Reply, callErr error, durationMs int64) {
	if p.calls == nil {
		return
	}

	call := &model.GenerationCall{
		Segment:  segment,
		Provider: client.ProviderName(),
		Model:    client.ModelName(),
		Grounded: req.Grounded,
		Success:  callErr == nil,
	}
	call.DurationMs = &durationMs
	if reply != nil {
		call.CitationCount = len(reply.Citations)
	}
	if callErr != nil {
		msg := callErr.Error()
		call.ErrorMessage = &msg
	}

	// The analysis context may already be cancelled; the record still matters.
	if err := p.calls.Create(context.WithoutCancel(ctx), call); err != nil {
		p.logger.Error("recording generation call", zap.Error(err))
	}
}
