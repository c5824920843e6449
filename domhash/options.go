// Package domhash computes similarity-preserving digests of markup and
// compares them.
//
// Two schemes are supported, each with its own comparison metric:
//
//	ngram (n1): sliding word n-grams, unit hashes kept as a set, Jaccard.
//	chunk (c1): adaptive rune chunks, unit hashes re-hashed into one
//	            fixed-length string, positional character overlap.
//
// Digests of different schemes never compare.
package domhash

import (
	"fmt"

	"github.com/use-agent/domhash/cleaner"
	"github.com/use-agent/domhash/models"
)

// Strategy names a chunking and digest scheme.
type Strategy string

const (
	StrategyNGram Strategy = "ngram"
	StrategyChunk Strategy = "chunk"
)

// sha256Base64Len is the unpadded URL-safe base64 length of a SHA-256 sum.
const sha256Base64Len = 43

// maxDigestLength caps the chunk digest length.
const maxDigestLength = 1024

// Options configures digest generation. Use DefaultOptions and override.
type Options struct {
	Strategy Strategy

	// BaseChunkSize and ScalingFactor set the chunk size:
	// BaseChunkSize + runes/ScalingFactor. Chunk strategy only.
	BaseChunkSize int
	ScalingFactor int

	// MaxUnits caps the chunks folded into a chunk digest. Chunks past
	// the cap are ignored, so very large documents are hashed by prefix.
	MaxUnits int

	// NgramSize is the number of words per n-gram unit.
	NgramSize int

	// DigestLength is the fixed length of a chunk digest.
	DigestLength int

	// MinContentLength is the normalized rune floor.
	MinContentLength int

	// HashPrefixLength truncates unit hashes to this many URL-safe base64
	// characters. 0 keeps the full 64-char hex SHA-256. Shorter prefixes
	// make unrelated units collide with probability about 64^-N.
	HashPrefixLength int
}

// DefaultOptions returns the reference configuration.
func DefaultOptions() Options {
	return Options{
		Strategy:         StrategyNGram,
		BaseChunkSize:    64,
		ScalingFactor:    100,
		MaxUnits:         10,
		NgramSize:        5,
		DigestLength:     64,
		MinContentLength: cleaner.DefaultMinLength,
		HashPrefixLength: 0,
	}
}

// Validate rejects options no digest can be built from.
func (o Options) Validate() error {
	switch {
	case o.Strategy != StrategyNGram && o.Strategy != StrategyChunk:
		return invalidOption("unknown strategy %q", o.Strategy)
	case o.BaseChunkSize < 1:
		return invalidOption("base_chunk_size must be positive, got %d", o.BaseChunkSize)
	case o.ScalingFactor < 1:
		return invalidOption("scaling_factor must be positive, got %d", o.ScalingFactor)
	case o.MaxUnits < 1:
		return invalidOption("max_units must be positive, got %d", o.MaxUnits)
	case o.NgramSize < 1:
		return invalidOption("ngram_size must be positive, got %d", o.NgramSize)
	case o.DigestLength < 1 || o.DigestLength > maxDigestLength:
		return invalidOption("digest_length must be within 1..%d, got %d", maxDigestLength, o.DigestLength)
	case o.MinContentLength < 1:
		return invalidOption("min_content_length must be positive, got %d", o.MinContentLength)
	case o.HashPrefixLength < 0 || o.HashPrefixLength > sha256Base64Len:
		return invalidOption("hash_prefix_length must be within 0..%d, got %d", sha256Base64Len, o.HashPrefixLength)
	}
	return nil
}

// Override returns a copy of o with every non-zero field of r applied.
// HashPrefixLength is applied whenever it is set, so an explicit 0 restores
// full hex hashes over a prefix default.
func (o Options) Override(r models.DigestOptions) Options {
	if r.Strategy != "" {
		o.Strategy = Strategy(r.Strategy)
	}
	if r.BaseChunkSize > 0 {
		o.BaseChunkSize = r.BaseChunkSize
	}
	if r.ScalingFactor > 0 {
		o.ScalingFactor = r.ScalingFactor
	}
	if r.MaxUnits > 0 {
		o.MaxUnits = r.MaxUnits
	}
	if r.NgramSize > 0 {
		o.NgramSize = r.NgramSize
	}
	if r.DigestLength > 0 {
		o.DigestLength = r.DigestLength
	}
	if r.MinContentLength > 0 {
		o.MinContentLength = r.MinContentLength
	}
	if r.HashPrefixLength != nil {
		o.HashPrefixLength = *r.HashPrefixLength
	}
	return o
}

// Fingerprint is a canonical rendering of the fields that affect output.
// Fields irrelevant to the strategy are left out so equivalent
// configurations share cache entries.
func (o Options) Fingerprint() string {
	switch o.Strategy {
	case StrategyChunk:
		return fmt.Sprintf("chunk|b=%d|s=%d|m=%d|l=%d|min=%d|p=%d",
			o.BaseChunkSize, o.ScalingFactor, o.MaxUnits, o.DigestLength, o.MinContentLength, o.HashPrefixLength)
	default:
		return fmt.Sprintf("%s|n=%d|min=%d|p=%d", o.Strategy, o.NgramSize, o.MinContentLength, o.HashPrefixLength)
	}
}

func invalidOption(format string, args ...any) error {
	return models.NewDigestError(models.ErrCodeInvalidInput, fmt.Sprintf(format, args...), nil)
}
