package cleaner

import (
	"regexp"

	"github.com/use-agent/domhash/models"
)

// Validator decides whether raw input looks like markup at all.
type Validator interface {
	Validate(raw string) error
}

// markupPattern requires a tag-like pattern followed later by another one.
// It is a heuristic, not a parser: malformed markup still passes.
var markupPattern = regexp.MustCompile(`(?s)<[^<>]+>.*?<[^<>]+>`)

// PatternValidator is the regex heuristic used by default.
type PatternValidator struct {
	pattern *regexp.Regexp
}

// NewPatternValidator returns the default tag-pair heuristic.
func NewPatternValidator() *PatternValidator {
	return &PatternValidator{pattern: markupPattern}
}

// Validate fails with INVALID_CONTENT when no tag pair is found.
func (v *PatternValidator) Validate(raw string) error {
	if !v.pattern.MatchString(raw) {
		return models.InvalidContent("content did not pass markup heuristic")
	}
	return nil
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(raw string) error

// Validate calls f(raw).
func (f ValidatorFunc) Validate(raw string) error {
	return f(raw)
}
