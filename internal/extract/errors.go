package extract

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an extraction failure.
type Kind string

const (
	KindInvalidJSON    Kind = "InvalidJSON"
	KindSchemaMismatch Kind = "SchemaMismatch"
)

// Sentinel errors for errors.Is checks against an *Error of the matching kind.
var (
	ErrInvalidJSON    = errors.New("AI did not return valid JSON")
	ErrSchemaMismatch = errors.New("AI response does not match the analysis schema")
)

// Error is returned when a reply can't be turned into a MarketAnalysis.
type Error struct {
	Kind Kind
	// Strategy names the strategy that produced the rejected candidate.
	Strategy string
	// Problems itemizes missing or mistyped fields for KindSchemaMismatch.
	Problems []string
	Err      error
}

func (e *Error) Error() string {
	msg := e.sentinel().Error()
	if len(e.Problems) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Problems, "; "))
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.sentinel() }

func (e *Error) sentinel() error {
	if e.Kind == KindSchemaMismatch {
		return ErrSchemaMismatch
	}
	return ErrInvalidJSON
}
