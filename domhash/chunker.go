package domhash

import "strings"

// Chunker partitions normalized text into the units that get hashed.
type Chunker interface {
	Units(text string) []string
}

// AdaptiveChunker splits text into consecutive rune chunks whose size grows
// with the document, keeping at most MaxUnits of them.
type AdaptiveChunker struct {
	BaseSize      int
	ScalingFactor int
	MaxUnits      int
}

// ChunkSize returns the chunk size for a text of n runes.
func (c AdaptiveChunker) ChunkSize(n int) int {
	return c.BaseSize + n/c.ScalingFactor
}

// Units returns up to MaxUnits chunks. The last chunk may be shorter.
func (c AdaptiveChunker) Units(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	size := c.ChunkSize(len(runes))
	units := make([]string, 0, min(c.MaxUnits, (len(runes)+size-1)/size))
	for i := 0; i < len(runes) && len(units) < c.MaxUnits; i += size {
		end := min(i+size, len(runes))
		units = append(units, string(runes[i:end]))
	}
	return units
}

// NGramChunker produces a sliding window of N consecutive words.
type NGramChunker struct {
	N int
}

// Units returns len(words)-N+1 windows, or a single unit holding every word
// when the text has fewer than N words.
func (c NGramChunker) Units(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) < c.N {
		return []string{strings.Join(words, " ")}
	}
	return makeShingles(words, c.N)
}

// makeShingles creates n-gram shingles from a slice of tokens.
func makeShingles(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}

	shingles := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+n], " "))
	}
	return shingles
}

func chunkerFor(o Options) Chunker {
	if o.Strategy == StrategyChunk {
		return AdaptiveChunker{
			BaseSize:      o.BaseChunkSize,
			ScalingFactor: o.ScalingFactor,
			MaxUnits:      o.MaxUnits,
		}
	}
	return NGramChunker{N: o.NgramSize}
}
