package article

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Selectors for nodes that never carry article text: scripts, styles,
// embeds, forms, figures and the "related posts" widgets the source
// site injects into rendered content.
const removeSelector = ".related-posts, .sharedaddy, .jp-relatedposts, script, style, iframe, figure, form"

// Block elements whose visible text makes up the article body.
const blockSelector = "p, h2, h3, ul, ol"

// A block shorter than this is a boilerplate candidate.
const boilerplateMaxLen = 100

// boilerplatePhrases marks short filler blocks ("read more", "we
// recommend") that the source site appends to rendered content.
var boilerplatePhrases = []string{
	"Прочитајте",
	"Read More",
	"Ви препорачуваме",
}

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Run converts raw article HTML into plain text. Non-content nodes are
// removed, then the visible text of block elements is collected in
// document order and joined by blank lines. Run never fails: malformed
// markup yields best-effort partial text, empty input yields "".
func (n *Normalizer) Run(rawHTML string) string {
	if rawHTML == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		slog.Warn("Failed to parse article HTML", "error", err)
		return ""
	}

	doc.Find(removeSelector).Remove()

	var blocks []string
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		if isBoilerplate(text) {
			return
		}
		blocks = append(blocks, text)
	})

	return strings.Join(blocks, "\n\n")
}

// isBoilerplate reports whether a block is a short filler phrase.
// Short genuine sentences that match no known phrase are kept.
func isBoilerplate(text string) bool {
	if utf8.RuneCountInString(text) >= boilerplateMaxLen {
		return false
	}
	for _, phrase := range boilerplatePhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
