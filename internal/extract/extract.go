package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Document is the readable content of a page.
type Document struct {
	Title string
	Text  string
	// Method names the strategy that produced Text.
	Method string
}

// contentRoots are tried in order; the first present element is walked.
var contentRoots = []string{"article", "main", "body"}

// skipped elements never contribute text.
var skipped = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"nav": true, "footer": true, "aside": true, "iframe": true,
	"form": true, "button": true, "svg": true,
}

// blocks are separated from their neighbours by a line break.
var blocks = map[string]bool{
	"p": true, "div": true, "section": true, "li": true, "br": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "tr": true, "ul": true, "ol": true,
	"figcaption": true, "header": true,
}

// FromHTML walks the first of <article>, <main> or <body> and returns its
// text with one block per line, skipping navigation, scripts and consent
// banners. Unparseable input yields an empty Document.
func FromHTML(input []byte) Document {
	root, err := html.Parse(bytes.NewReader(input))
	if err != nil || root == nil {
		return Document{}
	}
	doc := Document{Title: strings.TrimSpace(textOf(find(find(root, "head"), "title"))), Method: "heuristic"}
	var content *html.Node
	for _, tag := range contentRoots {
		if content = find(root, tag); content != nil {
			break
		}
	}
	if content == nil {
		return doc
	}
	var b strings.Builder
	walk(&b, content)
	doc.Text = tidy(b.String())
	return doc
}

// find returns the first element named tag in document order below n.
func find(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func walk(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		name := strings.ToLower(n.Data)
		if skipped[name] || isConsentBanner(n) {
			return
		}
		if blocks[name] {
			b.WriteByte('\n')
			defer b.WriteByte('\n')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(b, c)
	}
}

// isConsentBanner matches cookie/consent/GDPR markers on id, class, role,
// aria-label and data-* attributes.
func isConsentBanner(n *html.Node) bool {
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && key != "role" && key != "aria-label" && !strings.HasPrefix(key, "data-") {
			continue
		}
		val := strings.ToLower(attr.Val)
		for _, marker := range []string{"cookie", "consent", "gdpr"} {
			if strings.Contains(val, marker) {
				return true
			}
		}
	}
	return false
}

// tidy collapses runs of whitespace inside lines and keeps at most one blank
// line between blocks.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" && (len(out) == 0 || out[len(out)-1] == "") {
			continue
		}
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
