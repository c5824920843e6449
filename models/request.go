package models

// DigestOptions are per-request overrides of the configured digest options.
// Zero values keep the server default, except HashPrefixLength where only
// an absent field does.
type DigestOptions struct {
	// Strategy selects the chunking/digest scheme.
	// Allowed: "ngram" (word n-grams, Jaccard compare), "chunk" (adaptive
	// rune chunks, positional compare).
	Strategy string `json:"strategy,omitempty" binding:"omitempty,oneof=ngram chunk"`

	BaseChunkSize    int `json:"base_chunk_size,omitempty" binding:"omitempty,min=1"`
	ScalingFactor    int `json:"scaling_factor,omitempty" binding:"omitempty,min=1"`
	MaxUnits         int `json:"max_units,omitempty" binding:"omitempty,min=1"`
	NgramSize        int `json:"ngram_size,omitempty" binding:"omitempty,min=1,max=64"`
	DigestLength     int `json:"digest_length,omitempty" binding:"omitempty,min=1,max=1024"`
	MinContentLength int `json:"min_content_length,omitempty" binding:"omitempty,min=1"`

	// HashPrefixLength truncates each unit hash to a URL-safe base64 prefix.
	// 0 selects the full hex SHA-256; nil keeps the server default.
	HashPrefixLength *int `json:"hash_prefix_length,omitempty" binding:"omitempty,min=0,max=43"`
}

// ScopeOptions narrow the markup before it is normalized.
type ScopeOptions struct {
	// CSSSelector restricts digesting to the matched elements.
	CSSSelector string `json:"css_selector,omitempty"`

	// IncludeTags keeps only elements matching these selectors.
	IncludeTags []string `json:"include_tags,omitempty"`

	// ExcludeTags removes elements matching these selectors.
	ExcludeTags []string `json:"exclude_tags,omitempty"`

	// ExtractMode controls main-content extraction.
	// "full" (default): digest the whole document.
	// "main": run readability and digest only the main article.
	// "prune": drop low-scoring boilerplate blocks under <body>.
	ExtractMode string `json:"extract_mode,omitempty" binding:"omitempty,oneof=full main prune"`
}

// Defaults applies default values to unset fields.
func (s *ScopeOptions) Defaults() {
	if s.ExtractMode == "" {
		s.ExtractMode = "full"
	}
}

// DigestRequest is the payload for POST /api/v1/digest.
// Exactly one of Content or URL must be set.
type DigestRequest struct {
	// Content is the raw markup to digest.
	Content string `json:"content,omitempty"`

	// URL is fetched and its body digested.
	URL string `json:"url,omitempty" binding:"omitempty,url"`

	Options DigestOptions `json:"options"`
	Scope   ScopeOptions  `json:"scope"`
}

// Defaults applies default values to unset fields.
func (r *DigestRequest) Defaults() {
	r.Scope.Defaults()
}

// CompareRequest is the payload for POST /api/v1/compare.
//
// Either both digests or both contents must be supplied. When contents are
// given they are digested with Options first.
type CompareRequest struct {
	DigestA string `json:"digest_a,omitempty"`
	DigestB string `json:"digest_b,omitempty"`

	ContentA string `json:"content_a,omitempty"`
	ContentB string `json:"content_b,omitempty"`

	Options DigestOptions `json:"options"`
}

// HasDigests reports whether the request carries digest tokens.
func (r *CompareRequest) HasDigests() bool {
	return r.DigestA != "" || r.DigestB != ""
}

// MissingDigest names the absent side when only one digest is supplied,
// or returns "".
func (r *CompareRequest) MissingDigest() string {
	switch {
	case r.DigestA != "" && r.DigestB == "":
		return "digest_b"
	case r.DigestA == "" && r.DigestB != "":
		return "digest_a"
	}
	return ""
}
