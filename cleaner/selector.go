package cleaner

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// ApplyCSSSelector returns the outer HTML of the elements in rawHTML that
// match selector. A match nested inside another match is rendered once, as
// part of its ancestor, so its text is not counted twice.
//
// If nothing matches, rawHTML is returned unchanged so the document is still
// digested as a whole.
func ApplyCSSSelector(rawHTML string, selector string) (string, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return "", fmt.Errorf("cleaner: compile selector %q: %w", selector, err)
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("cleaner: parse html: %w", err)
	}

	matches := outermost(sel.MatchAll(doc))
	if len(matches) == 0 {
		return rawHTML, nil
	}

	out, err := renderNodes(matches)
	if err != nil {
		return "", fmt.Errorf("cleaner: render match: %w", err)
	}
	return out, nil
}

// outermost drops nodes that have an ancestor in nodes. Document order is kept.
func outermost(nodes []*html.Node) []*html.Node {
	if len(nodes) < 2 {
		return nodes
	}
	set := make(map[*html.Node]struct{}, len(nodes))
	for _, n := range nodes {
		set[n] = struct{}{}
	}

	kept := nodes[:0:0]
	for _, n := range nodes {
		nested := false
		for p := n.Parent; p != nil; p = p.Parent {
			if _, ok := set[p]; ok {
				nested = true
				break
			}
		}
		if !nested {
			kept = append(kept, n)
		}
	}
	return kept
}

// renderNodes concatenates the outer HTML of nodes, one per line.
func renderNodes(nodes []*html.Node) (string, error) {
	var b strings.Builder
	for i, n := range nodes {
		if i > 0 {
			b.WriteByte('\n')
		}
		if err := html.Render(&b, n); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
