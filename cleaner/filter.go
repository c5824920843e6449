package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FilterContent drops the elements matching any excludeTags selector, then,
// if includeTags is set, keeps only the outermost elements matching one of
// them.
//
// With both lists empty the input is returned untouched. When nothing
// matches includeTags, or the markup cannot be parsed, the exclude-filtered
// document is returned.
func FilterContent(rawHTML string, includeTags, excludeTags []string) string {
	if len(includeTags) == 0 && len(excludeTags) == 0 {
		return rawHTML
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	for _, selector := range excludeTags {
		doc.Find(selector).Remove()
	}

	if len(includeTags) > 0 {
		kept := outermost(doc.Find(strings.Join(includeTags, ", ")).Nodes)
		if len(kept) > 0 {
			if out, err := renderNodes(kept); err == nil {
				return out
			}
		}
	}

	out, err := doc.Html()
	if err != nil {
		return rawHTML
	}
	return out
}
