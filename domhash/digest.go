package domhash

import (
	"slices"
	"strconv"
	"strings"

	"github.com/use-agent/domhash/models"
)

// Digest tags: scheme letter plus format version.
const (
	tagNGram = "n1"
	tagChunk = "c1"

	tagSep   = ":"
	unitSep  = "."
	paramSep = "-"

	sha256HexLen = 64
)

// Digest is an immutable fuzzy hash.
//
// A chunk digest carries Value, a fixed-length string. An n-gram digest
// carries Units, the sorted distinct unit hashes, plus the NgramSize and
// PrefixLength they were produced with. NgramSize 0 means the settings were
// not recorded in the token.
type Digest struct {
	Strategy     Strategy
	Value        string
	Units        []string
	NgramSize    int
	PrefixLength int
}

// newSetDigest builds an n-gram digest from unit hashes in any order.
func newSetDigest(hashes []string, ngramSize, prefixLength int) Digest {
	units := slices.Clone(hashes)
	slices.Sort(units)
	return Digest{
		Strategy:     StrategyNGram,
		Units:        slices.Compact(units),
		NgramSize:    ngramSize,
		PrefixLength: prefixLength,
	}
}

// String renders the digest as a single token: "n1-<size>-<prefix>:h1.h2..."
// or "c1:value". An n-gram digest without recorded settings renders as
// "n1:h1.h2...".
func (d Digest) String() string {
	if d.Strategy == StrategyChunk {
		return tagChunk + tagSep + d.Value
	}
	tag := tagNGram
	if d.NgramSize > 0 {
		tag += paramSep + strconv.Itoa(d.NgramSize) + paramSep + strconv.Itoa(d.PrefixLength)
	}
	return tag + tagSep + strings.Join(d.Units, unitSep)
}

// unitLen is the length shared by every unit hash, or 0 for an empty set.
func (d Digest) unitLen() int {
	if len(d.Units) == 0 {
		return 0
	}
	return len(d.Units[0])
}

// Len is the number of positions (chunk) or distinct units (n-gram).
func (d Digest) Len() int {
	if d.Strategy == StrategyChunk {
		return len(d.Value)
	}
	return len(d.Units)
}

// Equal reports whether two digests are identical.
func (d Digest) Equal(other Digest) bool {
	return d.Strategy == other.Strategy && d.Value == other.Value &&
		d.NgramSize == other.NgramSize && d.PrefixLength == other.PrefixLength &&
		slices.Equal(d.Units, other.Units)
}

// ParseDigest parses a token produced by Digest.String.
//
// An untagged token is read as a legacy chunk digest. The empty string is an
// empty chunk digest, which parses but has nothing to compare.
func ParseDigest(s string) (Digest, error) {
	if strings.IndexFunc(s, isUnsafeRune) >= 0 {
		return Digest{}, models.NewDigestError(models.ErrCodeInvalidDigest, "digest contains whitespace or control characters", nil)
	}

	tag, payload, tagged := strings.Cut(s, tagSep)
	if !tagged {
		return Digest{Strategy: StrategyChunk, Value: s}, nil
	}

	switch {
	case tag == tagChunk:
		if strings.Contains(payload, tagSep) {
			return Digest{}, models.NewDigestError(models.ErrCodeInvalidDigest, "chunk digest payload contains a separator", nil)
		}
		return Digest{Strategy: StrategyChunk, Value: payload}, nil
	case tag == tagNGram || strings.HasPrefix(tag, tagNGram+paramSep):
		return parseNGram(tag, payload)
	default:
		return Digest{}, models.NewDigestError(models.ErrCodeInvalidDigest, "unknown digest tag "+tag, nil)
	}
}

// parseNGram reads an n-gram token. Every unit must have the same length,
// and when the tag records settings that length must match the hash form
// the prefix length implies.
func parseNGram(tag, payload string) (Digest, error) {
	size, prefix, err := parseNGramParams(tag)
	if err != nil {
		return Digest{}, err
	}
	if payload == "" {
		return Digest{Strategy: StrategyNGram, NgramSize: size, PrefixLength: prefix}, nil
	}

	units := strings.Split(payload, unitSep)
	want := len(units[0])
	if size > 0 {
		want = sha256HexLen
		if prefix > 0 {
			want = prefix
		}
	}
	for _, u := range units {
		if u == "" || strings.Contains(u, tagSep) {
			return Digest{}, models.NewDigestError(models.ErrCodeInvalidDigest, "malformed n-gram unit list", nil)
		}
		if len(u) != want {
			return Digest{}, models.NewDigestError(models.ErrCodeInvalidDigest, "n-gram units differ in length", nil)
		}
	}
	return newSetDigest(units, size, prefix), nil
}

// parseNGramParams reads "n1" as unrecorded settings and "n1-<size>-<prefix>"
// as explicit ones.
func parseNGramParams(tag string) (size, prefix int, err error) {
	if tag == tagNGram {
		return 0, 0, nil
	}
	parts := strings.Split(tag, paramSep)
	if len(parts) != 3 {
		return 0, 0, models.NewDigestError(models.ErrCodeInvalidDigest, "malformed n-gram tag "+tag, nil)
	}
	size, errSize := strconv.Atoi(parts[1])
	prefix, errPrefix := strconv.Atoi(parts[2])
	if errSize != nil || errPrefix != nil || size < 1 || prefix < 0 || prefix > sha256Base64Len {
		return 0, 0, models.NewDigestError(models.ErrCodeInvalidDigest, "malformed n-gram tag "+tag, nil)
	}
	return size, prefix, nil
}

func isUnsafeRune(r rune) bool {
	return r <= ' ' || r == 0x7f
}
