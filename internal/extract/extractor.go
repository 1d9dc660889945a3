// Package extract turns a free-text model reply into a validated MarketAnalysis.
//
// Extraction runs an ordered list of strategies (labeled fence, any fence, raw
// text). The first strategy that matches supplies the only candidate: if that
// candidate isn't JSON the reply is rejected, no later strategy is tried.
// Parsed JSON is then validated field by field, so a reply missing a required
// field fails with an itemized SchemaMismatch instead of a half-filled record.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fleveque/market-radar/internal/model"
)

// Extractor is safe for concurrent use.
type Extractor struct {
	strategies []Strategy
	validate   *validator.Validate
}

// New creates an Extractor with the given strategies, or DefaultStrategies
// when none are passed.
func New(strategies ...Strategy) *Extractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names ("analysisDate") instead of Go ones ("AnalysisDate").
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Extractor{strategies: strategies, validate: v}
}

// Candidate returns the payload picked by the first matching strategy and
// that strategy's name.
func (e *Extractor) Candidate(text string) (payload string, strategy string) {
	for _, s := range e.strategies {
		if p, ok := s.Find(text); ok {
			return p, s.Name
		}
	}
	return "", ""
}

// Extract locates, parses and validates the analysis embedded in text.
// Failures are always *Error values.
func (e *Extractor) Extract(text string) (*model.MarketAnalysis, error) {
	payload, strategy := e.Candidate(text)

	var raw any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, &Error{Kind: KindInvalidJSON, Strategy: strategy, Err: err}
	}

	if _, ok := raw.(map[string]any); !ok {
		return nil, &Error{
			Kind:     KindSchemaMismatch,
			Strategy: strategy,
			Problems: []string{fmt.Sprintf("payload must be a JSON object, got %s", jsonKind(raw))},
		}
	}

	var analysis model.MarketAnalysis
	if err := json.Unmarshal([]byte(payload), &analysis); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &Error{
				Kind:     KindSchemaMismatch,
				Strategy: strategy,
				Problems: []string{fmt.Sprintf("%s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)},
				Err:      err,
			}
		}
		return nil, &Error{Kind: KindSchemaMismatch, Strategy: strategy, Err: err}
	}

	if err := e.validate.Struct(&analysis); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, &Error{Kind: KindSchemaMismatch, Strategy: strategy, Err: err}
		}
		return nil, &Error{
			Kind:     KindSchemaMismatch,
			Strategy: strategy,
			Problems: describe(verrs),
			Err:      err,
		}
	}

	return &analysis, nil
}

// describe renders one line per failed field, e.g.
// "players[1].category: must be one of Leader Challenger Niche".
func describe(verrs validator.ValidationErrors) []string {
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Namespace is "MarketAnalysis.players[1].category"; drop the type name.
		_, field, _ := strings.Cut(fe.Namespace(), ".")

		var msg string
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "oneof":
			msg = "must be one of " + fe.Param()
		case "gte":
			msg = "must be at least " + fe.Param()
		case "lte":
			msg = "must be at most " + fe.Param()
		default:
			msg = "failed " + fe.Tag()
		}
		problems = append(problems, field+": "+msg)
	}
	return problems
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return "object"
	}
}
