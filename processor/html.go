package processor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/agrivaani"
	"golang.org/x/net/html"
)

// HTMLProcessor extracts and applies translations to HTML content.
type HTMLProcessor struct {
	ignoredTags map[string]bool
}

// NewHTMLProcessor creates a new HTML processor with default ignored tags.
func NewHTMLProcessor() *HTMLProcessor {
	return &HTMLProcessor{
		ignoredTags: agrivaani.IgnoredTags,
	}
}

// NewHTMLProcessorWithIgnoredTags creates a new HTML processor with custom ignored tags.
func NewHTMLProcessorWithIgnoredTags(tags []string) *HTMLProcessor {
	ignored := make(map[string]bool)
	for _, tag := range tags {
		ignored[strings.ToLower(tag)] = true
	}
	return &HTMLProcessor{
		ignoredTags: ignored,
	}
}

// Extract parses HTML and extracts translatable text nodes, one per
// distinct text.
func (p *HTMLProcessor) Extract(content string) (interface{}, []agrivaani.TextNode, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, nil, &agrivaani.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	var nodes []agrivaani.TextNode
	seenHashes := make(map[string]bool)

	p.walk(doc, func(n *html.Node) {
		trimmed := strings.TrimSpace(n.Data)
		hash := agrivaani.HashText(trimmed)
		if seenHashes[hash] {
			return
		}
		seenHashes[hash] = true

		node := agrivaani.TextNode{
			ID:       fmt.Sprintf("node-%d", len(nodes)),
			Text:     trimmed,
			Hash:     hash,
			NodeType: "html_text",
			Metadata: map[string]string{},
		}
		if n.Parent != nil && n.Parent.Type == html.ElementNode {
			node.Context = fmt.Sprintf("in <%s>", n.Parent.Data)
			node.Metadata["parent_tag"] = n.Parent.Data
		}
		nodes = append(nodes, node)
	})

	return doc, nodes, nil
}

// Apply applies translations (keyed by text hash) back to the document.
func (p *HTMLProcessor) Apply(parsed interface{}, nodes []agrivaani.TextNode, translations map[string]string) (string, error) {
	doc, ok := parsed.(*goquery.Document)
	if !ok {
		return "", &agrivaani.ProcessorError{
			Message:     "invalid parsed content type",
			ContentType: "html",
		}
	}

	p.walk(doc, func(n *html.Node) {
		if translated, ok := translations[agrivaani.HashText(n.Data)]; ok {
			n.Data = preserveWhitespace(n.Data, translated)
		}
	})

	out, err := doc.Html()
	if err != nil {
		return "", &agrivaani.ProcessorError{
			Message:     "failed to serialize HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	return out, nil
}

// ContentType returns "html".
func (p *HTMLProcessor) ContentType() string {
	return "html"
}

// walk visits every non-blank text node outside ignored or opted-out elements.
func (p *HTMLProcessor) walk(doc *goquery.Document, visit func(*html.Node)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && p.skipElement(n) {
			return
		}

		if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
			visit(n)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range doc.Nodes {
		walk(n)
	}
}

// skipElement reports whether an element's subtree must stay untranslated.
func (p *HTMLProcessor) skipElement(n *html.Node) bool {
	if p.ignoredTags[strings.ToLower(n.Data)] {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == "data-no-translate" {
			return true
		}
		if attr.Key == "translate" && strings.EqualFold(attr.Val, "no") {
			return true
		}
	}
	return false
}

// preserveWhitespace preserves the original leading/trailing whitespace.
func preserveWhitespace(original, translated string) string {
	leadingLen := len(original) - len(strings.TrimLeft(original, " \t\n\r"))
	leading := original[:leadingLen]

	trailingLen := len(original) - len(strings.TrimRight(original, " \t\n\r"))
	trailing := ""
	if trailingLen > 0 && trailingLen < len(original) {
		trailing = original[len(original)-trailingLen:]
	}

	return leading + translated + trailing
}

// Verify HTMLProcessor implements ContentProcessor
var _ ContentProcessor = (*HTMLProcessor)(nil)
