package cleaner

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Block signal weights. A top-level block is kept when its weighted score
// is above zero.
const (
	wTextDensity = 3.0
	wLinkDensity = -2.0
	wSemanticTag = 1.5
	wClassID     = 1.0
	wTextLength  = 0.5
)

var (
	contentHints     = []string{"content", "article", "post", "entry", "body", "main", "text"}
	boilerplateHints = []string{
		"sidebar", "ad", "widget", "nav", "menu", "comment", "footer",
		"header", "banner", "popup", "modal", "cookie", "social", "share",
		"related", "recommend", "promo",
	}
)

// PruneBoilerplate keeps the children of <body> that look like content and
// drops the ones that look like site chrome. Template blocks repeated on
// every page of a site would otherwise dominate the digest.
//
// ok is false when nothing was pruned: the document has no body, cannot be
// parsed, or no block scored above zero. In that case rawHTML is returned.
func PruneBoilerplate(rawHTML string) (content string, ok bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML, false
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		return rawHTML, false
	}

	var kept []string
	body.Children().Each(func(_ int, block *goquery.Selection) {
		if blockScore(block) <= 0 {
			return
		}
		if h, err := goquery.OuterHtml(block); err == nil {
			kept = append(kept, h)
		}
	})
	if len(kept) == 0 {
		return rawHTML, false
	}
	return strings.Join(kept, "\n"), true
}

// blockScore combines text density, link density, semantic tag, class/id
// hints and text length. Lengths are in runes.
func blockScore(block *goquery.Selection) float64 {
	outer, err := goquery.OuterHtml(block)
	if err != nil {
		return 0
	}

	text := strings.TrimSpace(block.Text())
	textLen := utf8.RuneCountInString(text)

	var textDensity float64
	if n := utf8.RuneCountInString(outer); n > 0 {
		textDensity = float64(textLen) / float64(n)
	}

	linkLen := 0
	block.Find("a").Each(func(_ int, a *goquery.Selection) {
		linkLen += utf8.RuneCountInString(strings.TrimSpace(a.Text()))
	})
	var linkDensity float64
	if textLen > 0 {
		linkDensity = float64(linkLen) / float64(textLen)
	}

	return textDensity*wTextDensity +
		linkDensity*wLinkDensity +
		semanticTagWeight(goquery.NodeName(block))*wSemanticTag +
		classIDWeight(block)*wClassID +
		math.Log10(float64(textLen)+1)*wTextLength
}

func semanticTagWeight(tag string) float64 {
	switch tag {
	case "article", "main", "section":
		return 5
	case "nav", "footer", "aside", "header":
		return -5
	}
	return 0
}

// classIDWeight counts at most one content hint and one boilerplate hint.
func classIDWeight(block *goquery.Selection) float64 {
	class, _ := block.Attr("class")
	id, _ := block.Attr("id")
	attrs := strings.ToLower(class + " " + id)

	var w float64
	if containsAny(attrs, contentHints) {
		w += 3
	}
	if containsAny(attrs, boilerplateHints) {
		w -= 3
	}
	return w
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
