package cleaner

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/use-agent/domhash/models"
)

// DefaultMinLength is the normalized rune count below which content is
// rejected as insufficient.
const DefaultMinLength = 20

// entityPattern matches named and numeric character references.
var entityPattern = regexp.MustCompile(`&(?:#[0-9]+|#[xX][0-9a-fA-F]+|[A-Za-z][A-Za-z0-9]*);`)

// Normalizer reduces markup to canonical text: script/style bodies dropped,
// tags removed, entities blanked, whitespace collapsed.
// It holds no per-call state and is safe for concurrent use.
type Normalizer struct {
	Validator Validator
	MinLength int
}

// NewNormalizer creates a Normalizer using the tag-pattern heuristic.
// A minLength <= 0 disables the length floor.
func NewNormalizer(minLength int) *Normalizer {
	return &Normalizer{
		Validator: NewPatternValidator(),
		MinLength: minLength,
	}
}

// Validate runs the configured markup heuristic.
func (n *Normalizer) Validate(raw string) error {
	v := n.Validator
	if v == nil {
		v = NewPatternValidator()
	}
	return v.Validate(raw)
}

// Normalize validates raw and returns its canonical text form.
//
// Flow:
//  1. Heuristic markup check.
//  2. Tokenizer walk: drop <script>/<style> bodies, replace every tag,
//     comment and doctype with a space, keep raw inter-tag text.
//  3. Blank out character entities and stray angle brackets.
//  4. Collapse whitespace runs and trim.
//  5. Enforce the minimum length.
func (n *Normalizer) Normalize(raw string) (string, error) {
	if err := n.Validate(raw); err != nil {
		return "", err
	}

	text := stripMarkup(raw)
	text = entityPattern.ReplaceAllString(text, " ")
	text = strings.NewReplacer("<", " ", ">", " ").Replace(text)
	text = strings.Join(strings.Fields(text), " ")

	if n.MinLength > 0 && utf8.RuneCountInString(text) < n.MinLength {
		return "", models.InvalidContent("insufficient content")
	}
	return text, nil
}

// stripMarkup walks raw with the HTML tokenizer and keeps only text tokens
// outside script and style elements. Text is taken from Raw() so entities
// survive undecoded for the entity pass.
func stripMarkup(raw string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder
	b.Grow(len(raw))
	skipping := ""

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a reader error; a strings.Reader only yields EOF.
			return b.String()
		case html.TextToken:
			if skipping == "" {
				b.Write(tokenizer.Raw())
			}
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if name := string(tn); isNoiseElement(name) {
				skipping = name
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == skipping {
				skipping = ""
			}
			b.WriteByte(' ')
		default:
			b.WriteByte(' ')
		}
	}
}

func isNoiseElement(name string) bool {
	return name == "script" || name == "style"
}
