package services

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// strippedText joins the text nodes under the first node of sel, each
// trimmed of surrounding whitespace, with no separator. Whitespace-only
// nodes are dropped and script and style contents are skipped. This is how
// listing cards render prices such as
// "<span>$ 250.000.000</span>\n<small>COP</small>" into one token.
func strippedText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	var b strings.Builder
	collectText(sel.Nodes[0], &b)
	return b.String()
}

func collectText(node *html.Node, b *strings.Builder) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		b.WriteString(strings.TrimSpace(node.Data))
		return
	}
	if node.Type == html.ElementNode && (node.DataAtom == atom.Script || node.DataAtom == atom.Style) {
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, b)
	}
}
