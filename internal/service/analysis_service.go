// Package service contains the core business logic of the analysis pipeline:
//
//	segment → prompt (llm.BuildAnalysisPrompt)
//	        → generation (provider chain, one request per provider)
//	        → extraction (extract.Extractor) + citation mapping
//	        → model.AnalysisResult
//
// Every failure propagates to the caller unchanged; there is no local
// recovery and no partial result.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/market-radar/internal/extract"
	"github.com/fleveque/market-radar/internal/llm"
	"github.com/fleveque/market-radar/internal/model"
	"github.com/fleveque/market-radar/internal/provider"
)

// Generator produces a raw reply for a prompt. *provider.LLMProvider implements it.
type Generator interface {
	Generate(ctx context.Context, segment string, req llm.Request) (*provider.Result, error)
}

// AnalysisService runs one analysis from segment text to typed result.
type AnalysisService struct {
	generator Generator
	extractor *extract.Extractor
	grounded  bool
	logger    *zap.Logger
}

// NewAnalysisService wires the pipeline. grounded controls whether providers
// are asked to search the web before answering.
func NewAnalysisService(generator Generator, extractor *extract.Extractor, grounded bool, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{
		generator: generator,
		extractor: extractor,
		grounded:  grounded,
		logger:    logger,
	}
}

// Analyze runs the full pipeline for one segment. Errors are either
// model.ErrEmptySegment, an *llm.GenerationError or an *extract.Error.
func (s *AnalysisService) Analyze(ctx context.Context, segment string) (*model.AnalysisResult, error) {
	query, err := model.NewMarketSegmentQuery(segment)
	if err != nil {
		return nil, err
	}

	prompt := llm.BuildAnalysisPrompt(query)

	start := time.Now()
	result, err := s.generator.Generate(ctx, query.String(), llm.Request{Prompt: prompt, Grounded: s.grounded})
	if err != nil {
		return nil, err
	}

	analysis, err := s.extractor.Extract(result.Reply.Text)
	if err != nil {
		s.logger.Warn("could not extract analysis from reply",
			zap.String("segment", query.String()),
			zap.String("provider", result.Provider),
			zap.Int("reply_bytes", len(result.Reply.Text)),
			zap.Error(err),
		)
		return nil, err
	}

	sources := extract.MapCitations(result.Reply.Citations)

	s.logger.Info("analysis complete",
		zap.String("segment", query.String()),
		zap.String("provider", result.Provider),
		zap.String("model", result.Model),
		zap.Int("players", len(analysis.Players)),
		zap.Int("trends", len(analysis.Trends)),
		zap.Int("sources", len(sources)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &model.AnalysisResult{Analysis: *analysis, Sources: sources}, nil
}
