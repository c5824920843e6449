package domhash

import (
	"strings"
	"unicode/utf8"

	"github.com/use-agent/domhash/cleaner"
	"github.com/use-agent/domhash/models"
)

// Result is a digest plus the figures behind it.
type Result struct {
	Digest Digest

	// Units is the number of units hashed (before n-gram de-duplication).
	Units int

	// NormalizedLength is the rune count of the normalized text.
	NormalizedLength int
}

// Engine turns markup into digests under one fixed configuration.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	opts       Options
	normalizer *cleaner.Normalizer
	chunker    Chunker
}

// New validates opts and returns an Engine.
func New(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		opts:       opts,
		normalizer: cleaner.NewNormalizer(opts.MinContentLength),
		chunker:    chunkerFor(opts),
	}, nil
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Generate normalizes raw markup and digests it.
//
// Errors: NO_CONTENT for empty input, INVALID_CONTENT from the Normalizer.
// No partial digest is returned on failure.
func (e *Engine) Generate(raw string) (*Result, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, models.NoContent("no content supplied")
	}

	normalized, err := e.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}
	return e.DigestText(normalized)
}

// DigestText digests text that is already normalized.
func (e *Engine) DigestText(normalized string) (*Result, error) {
	if normalized == "" {
		return nil, models.NoContent("normalized content is empty")
	}

	units := e.chunker.Units(normalized)
	hashes := make([]string, len(units))
	for i, u := range units {
		hashes[i] = HashUnit(u, e.opts.HashPrefixLength)
	}

	var d Digest
	if e.opts.Strategy == StrategyChunk {
		d = Digest{Strategy: StrategyChunk, Value: combine(hashes, e.opts.DigestLength)}
	} else {
		d = newSetDigest(hashes, e.opts.NgramSize, e.opts.HashPrefixLength)
	}

	return &Result{
		Digest:           d,
		Units:            len(units),
		NormalizedLength: utf8.RuneCountInString(normalized),
	}, nil
}

// GenerateDigest digests content under opts.
func GenerateDigest(content string, opts Options) (Digest, error) {
	e, err := New(opts)
	if err != nil {
		return Digest{}, err
	}
	res, err := e.Generate(content)
	if err != nil {
		return Digest{}, err
	}
	return res.Digest, nil
}
