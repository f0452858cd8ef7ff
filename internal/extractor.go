package internal

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

const (
	roleAttr      = "data-message-author-role"
	messageIDAttr = "data-message-id"
)

// blockElements are the elements that get newline-separated from a
// following sibling when flattening a turn's subtree.
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"ul": true, "ol": true, "li": true, "pre": true,
	"blockquote": true, "table": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// ExtractTurns converts raw conversation markup into an ordered list of
// turns. Extraction never fails loudly: malformed or empty markup yields
// an empty list, and the caller decides how to report "no messages
// found". The source tree is never mutated; each turn keeps its original
// markup fragment for the renderer.
func ExtractTurns(markup string) []Turn {
	turns := []Turn{}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		LogDebug("markup parse failed: %v", err)
		return turns
	}

	nodes := selectRoleNodes(doc)
	for i, node := range nodes {
		role := attrValue(node, roleAttr)
		text := NormalizeText(UnescapeNewlines(flattenText(node)))
		if role == "" || text == "" {
			continue
		}

		id := attrValue(node, messageIDAttr)
		if id == "" {
			id = fmt.Sprintf("idx-%d", i)
		}

		turns = append(turns, Turn{
			ID:             id,
			Role:           role,
			Text:           text,
			SourceFragment: renderFragment(node),
		})
	}

	return turns
}

// selectRoleNodes returns every node carrying the author-role marker
// attribute, in document order.
func selectRoleNodes(doc *html.Node) []*html.Node {
	var nodes []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasAttr(n, roleAttr) {
			nodes = append(nodes, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return nodes
}

// flattenText produces the raw text of a subtree with explicit line
// breaks turned into newlines and adjacent blocks newline-separated. A
// trailing block at the end of its parent gets no separator, so no
// spurious blank line appears at the end.
func flattenText(node *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "br" {
				sb.WriteString("\n")
				return
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			if blockElements[n.Data] && n.NextSibling != nil {
				sb.WriteString("\n")
			}
		}
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return sb.String()
}

func renderFragment(node *html.Node) string {
	var sb strings.Builder
	if err := html.Render(&sb, node); err != nil {
		LogDebug("fragment render failed: %v", err)
		return ""
	}
	return sb.String()
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
