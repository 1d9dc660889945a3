// Package model defines the core data types for the market analysis service.
// Every type here is a value object: built once from parsed model output and
// never mutated afterwards. Struct tags drive both JSON (de)serialization and
// field validation (`validate:"..."`, read by go-playground/validator).
package model

import (
	"errors"
	"sort"
	"strings"
)

// ErrEmptySegment is returned when a segment query is blank.
var ErrEmptySegment = errors.New("market segment must not be empty")

// MarketSegmentQuery identifies the market segment to analyze.
// The zero value is invalid; construct it with NewMarketSegmentQuery.
type MarketSegmentQuery struct {
	segment string
}

// NewMarketSegmentQuery trims the raw user input and rejects blank segments.
func NewMarketSegmentQuery(raw string) (MarketSegmentQuery, error) {
	segment := strings.TrimSpace(raw)
	if segment == "" {
		return MarketSegmentQuery{}, ErrEmptySegment
	}
	return MarketSegmentQuery{segment: segment}, nil
}

// String returns the segment text exactly as it will appear in the prompt.
func (q MarketSegmentQuery) String() string {
	return q.segment
}

// Category classifies a competitor's position in the segment.
// Go has no enums, so these are typed string constants.
type Category string

const (
	CategoryLeader     Category = "Leader"
	CategoryChallenger Category = "Challenger"
	CategoryNiche      Category = "Niche"
)

// AllCategories is the closed set of categories, in display order.
var AllCategories = []Category{CategoryLeader, CategoryChallenger, CategoryNiche}

// Impact is the expected impact level of a market trend.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

// AllImpacts is the closed set of impact levels, strongest first.
var AllImpacts = []Impact{ImpactHigh, ImpactMedium, ImpactLow}

// CompetitorProfile describes one key player in the segment.
type CompetitorProfile struct {
	Name           string   `json:"name" validate:"required"`
	MarketShareEst float64  `json:"marketShareEst,omitempty" validate:"gte=0,lte=100"`
	RevenueEst     string   `json:"revenueEst,omitempty"`
	Category       Category `json:"category" validate:"required,oneof=Leader Challenger Niche"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses,omitempty"`
	RecentMoves    string   `json:"recentMoves"`
}

// MarketTrend is a named force shaping the segment.
type MarketTrend struct {
	Trend       string `json:"trend" validate:"required"`
	Impact      Impact `json:"impact" validate:"required,oneof=High Medium Low"`
	Description string `json:"description"`
}

// MarketAnalysis is the structured competitive analysis returned by the model.
// Players and Trends must be present (possibly empty); a missing array is a
// schema mismatch, not an empty default.
type MarketAnalysis struct {
	Segment             string              `json:"segment" validate:"required"`
	TotalMarketValueEst string              `json:"totalMarketValueEst,omitempty"`
	Players             []CompetitorProfile `json:"players" validate:"required,dive"`
	Trends              []MarketTrend       `json:"trends" validate:"required,dive"`
	AnalysisDate        string              `json:"analysisDate" validate:"required"`
	Summary             string              `json:"summary" validate:"required"`
}

// MarketValueLabel returns the total market value estimate or "N/A".
func (a *MarketAnalysis) MarketValueLabel() string {
	if strings.TrimSpace(a.TotalMarketValueEst) == "" {
		return "N/A"
	}
	return a.TotalMarketValueEst
}

// ShareSlice is one entry of the market-share chart.
type ShareSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	// Estimated is false when the model gave no share and Value is the
	// placeholder that keeps the player visible.
	Estimated bool `json:"estimated"`
}

// ShareSeries returns the chart series for the players, largest share first.
// Players without a share estimate are plotted as 1 so they stay visible.
func (a *MarketAnalysis) ShareSeries() []ShareSlice {
	series := make([]ShareSlice, 0, len(a.Players))
	for _, p := range a.Players {
		slice := ShareSlice{Name: p.Name, Value: p.MarketShareEst, Estimated: p.MarketShareEst != 0}
		if !slice.Estimated {
			slice.Value = 1
		}
		series = append(series, slice)
	}
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Value > series[j].Value
	})
	return series
}

// CitationSource is one web source the generation service consulted.
type CitationSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// AnalysisResult pairs an analysis with the sources that grounded it.
type AnalysisResult struct {
	Analysis MarketAnalysis   `json:"data"`
	Sources  []CitationSource `json:"sources"`
}
