package domhash

import (
	"fmt"
	"math"

	"github.com/use-agent/domhash/models"
)

// Metric names a similarity measure.
type Metric string

const (
	// MetricPositional scores 0-100 by index-aligned character matches.
	MetricPositional Metric = "positional"
	// MetricJaccard scores 0-1 by set overlap.
	MetricJaccard Metric = "jaccard"
)

// Score is a similarity value and the metric that produced it.
type Score struct {
	Metric Metric
	Value  float64
}

// Max is the score of a digest compared with itself.
func (s Score) Max() float64 {
	if s.Metric == MetricPositional {
		return 100
	}
	return 1
}

// Ratio normalizes the score to 0-1.
func (s Score) Ratio() float64 {
	return s.Value / s.Max()
}

// Compare scores two digests of the same scheme. Mixing schemes fails with
// INCOMPATIBLE_DIGESTS, as do n-gram digests produced with different n-gram
// sizes or hash prefix lengths.
func Compare(a, b Digest) (Score, error) {
	if a.Strategy != b.Strategy {
		return Score{}, models.NewDigestError(models.ErrCodeIncompatibleDigests,
			"cannot compare "+string(a.Strategy)+" digest with "+string(b.Strategy)+" digest", nil)
	}

	if a.Strategy == StrategyChunk {
		v, err := ComparePositional(a.Value, b.Value)
		if err != nil {
			return Score{}, err
		}
		return Score{Metric: MetricPositional, Value: v}, nil
	}
	if err := compatibleSets(a, b); err != nil {
		return Score{}, err
	}
	return Score{Metric: MetricJaccard, Value: CompareJaccard(a.Units, b.Units)}, nil
}

// compatibleSets rejects n-gram digests whose units cannot overlap. Settings
// are checked when both tokens record them; unit length is always checked.
func compatibleSets(a, b Digest) error {
	if a.NgramSize > 0 && b.NgramSize > 0 &&
		(a.NgramSize != b.NgramSize || a.PrefixLength != b.PrefixLength) {
		return models.NewDigestError(models.ErrCodeIncompatibleDigests,
			fmt.Sprintf("cannot compare n-gram digests with settings %d/%d and %d/%d",
				a.NgramSize, a.PrefixLength, b.NgramSize, b.PrefixLength), nil)
	}
	if la, lb := a.unitLen(), b.unitLen(); la > 0 && lb > 0 && la != lb {
		return models.NewDigestError(models.ErrCodeIncompatibleDigests,
			fmt.Sprintf("cannot compare n-gram units of length %d with length %d", la, lb), nil)
	}
	return nil
}

// CompareStrings parses two digest tokens and compares them.
func CompareStrings(a, b string) (Score, error) {
	da, err := ParseDigest(a)
	if err != nil {
		return Score{}, err
	}
	db, err := ParseDigest(b)
	if err != nil {
		return Score{}, err
	}
	return Compare(da, db)
}

// ComparePositional truncates both strings to the shorter length and returns
// the percentage of index-aligned matching characters, rounded to 2 decimals.
// Zero comparable length fails with NO_COMPARABLE_CONTENT.
func ComparePositional(a, b string) (float64, error) {
	ra, rb := []rune(a), []rune(b)
	n := min(len(ra), len(rb))
	if n == 0 {
		return 0, models.NoComparableContent("no comparable length between digests")
	}

	matches := 0
	for i := 0; i < n; i++ {
		if ra[i] == rb[i] {
			matches++
		}
	}
	score := float64(matches) / float64(n) * 100
	return math.Round(score*100) / 100, nil
}

// CompareJaccard returns |A∩B| / |A∪B| over the distinct elements of a and b.
// Two empty sets score 0.
func CompareJaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, u := range a {
		setA[u] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, u := range b {
		setB[u] = struct{}{}
	}

	intersection := 0
	for u := range setA {
		if _, ok := setB[u]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
