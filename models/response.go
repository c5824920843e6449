package models

// DigestResponse is the response for POST /api/v1/digest.
type DigestResponse struct {
	// Success indicates whether the digest was produced.
	Success bool `json:"success"`

	// Digest is the versioned digest token ("n1-<n>-<p>:..." or "c1:...").
	Digest string `json:"digest,omitempty"`

	// Strategy names the scheme that produced Digest.
	Strategy string `json:"strategy,omitempty"`

	// Units is the number of units folded into the digest.
	Units int `json:"units"`

	// NormalizedLength is the rune length of the normalized text.
	NormalizedLength int `json:"normalized_length"`

	// SourceURL is set when the content was fetched.
	SourceURL string `json:"source_url,omitempty"`

	// CacheStatus indicates whether the digest was served from cache.
	// Values: "hit", "miss", "shared", or empty (cache disabled).
	CacheStatus string `json:"cache_status,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// CompareResponse is the response for POST /api/v1/compare.
type CompareResponse struct {
	Success bool `json:"success"`

	// Score is 0-100 for the positional metric and 0-1 for Jaccard.
	Score float64 `json:"score"`

	// Metric is "positional" or "jaccard".
	Metric string `json:"metric,omitempty"`

	DigestA string `json:"digest_a,omitempty"`
	DigestB string `json:"digest_b,omitempty"`

	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// FetchMs is the time spent fetching a URL (0 for inline content).
	FetchMs int64 `json:"fetch_ms"`

	// DigestMs is the time spent normalizing and digesting.
	DigestMs int64 `json:"digest_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status     string     `json:"status"`
	Uptime     string     `json:"uptime"`
	CacheStats CacheStats `json:"cache_stats"`
	Version    string     `json:"version"`
}

// CacheStats reports the state of the digest cache.
type CacheStats struct {
	Entries    int    `json:"entries"`
	MaxEntries int    `json:"max_entries"`
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
}

// ErrorResponse is the envelope for failures outside a specific endpoint
// (auth, rate limiting, malformed JSON).
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}
