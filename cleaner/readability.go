package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minMainLength is the minimum article text length (in bytes) for a
// readability result to replace the full document.
const minMainLength = 50

// ExtractMain runs the Mozilla Readability algorithm and returns the main
// article HTML. Boilerplate (navigation, sidebars, footers) shared across a
// site is dropped, so templated pages stop looking alike purely because of
// their chrome.
//
// The full document is returned, with ok=false, when sourceURL is invalid,
// readability fails, or the extracted text is shorter than minMainLength.
func ExtractMain(rawHTML, sourceURL string) (content string, ok bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("readability: invalid source URL, using full document",
			"url", sourceURL, "error", err,
		)
		return rawHTML, false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("readability: extraction failed, using full document",
			"url", sourceURL, "error", err,
		)
		return rawHTML, false
	}

	if len(strings.TrimSpace(article.TextContent)) < minMainLength {
		slog.Debug("readability: article too short, using full document",
			"url", sourceURL, "length", len(article.TextContent),
		)
		return rawHTML, false
	}

	return article.Content, true
}
