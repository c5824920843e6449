package cleaner

import (
	"github.com/use-agent/domhash/models"
)

// Extract modes.
const (
	ModeFull  = "full"
	ModeMain  = "main"
	ModePrune = "prune"
)

// Scope narrows markup before it reaches the Normalizer.
type Scope struct {
	CSSSelector string
	IncludeTags []string
	ExcludeTags []string
	ExtractMode string

	// SourceURL resolves relative links for readability; may be empty.
	SourceURL string
}

// ScopeFromOptions converts API scope options into a Scope.
func ScopeFromOptions(o models.ScopeOptions, sourceURL string) Scope {
	return Scope{
		CSSSelector: o.CSSSelector,
		IncludeTags: o.IncludeTags,
		ExcludeTags: o.ExcludeTags,
		ExtractMode: o.ExtractMode,
		SourceURL:   sourceURL,
	}
}

// IsZero reports whether the scope leaves input untouched.
func (s Scope) IsZero() bool {
	return s.CSSSelector == "" && len(s.IncludeTags) == 0 && len(s.ExcludeTags) == 0 &&
		(s.ExtractMode == "" || s.ExtractMode == ModeFull)
}

// Apply runs, in order: CSS selection, include/exclude filtering, and
// main-content extraction (readability, then block pruning). An unparseable selector is INVALID_INPUT.
func (s Scope) Apply(rawHTML string) (string, error) {
	if s.IsZero() {
		return rawHTML, nil
	}

	out := rawHTML
	if s.CSSSelector != "" {
		selected, err := ApplyCSSSelector(out, s.CSSSelector)
		if err != nil {
			return "", models.NewDigestError(models.ErrCodeInvalidInput, "invalid css_selector", err)
		}
		out = selected
	}

	out = FilterContent(out, s.IncludeTags, s.ExcludeTags)

	switch s.ExtractMode {
	case ModeMain:
		var ok bool
		if out, ok = ExtractMain(out, s.SourceURL); !ok {
			out, _ = PruneBoilerplate(out)
		}
	case ModePrune:
		out, _ = PruneBoilerplate(out)
	}
	return out, nil
}
