package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// strip removes the platform chrome from the content root in place:
// rule selectors, elements labeled with a text marker together with
// their parent, and then every element left empty.
func (e *Extractor) strip(root *goquery.Selection, extra []string) {
	for _, sel := range e.rules.Strip.Selectors {
		root.Find(sel).Remove()
	}
	for _, sel := range extra {
		root.Find(sel).Remove()
	}

	for _, rootNode := range root.Nodes {
		var doomed []*html.Node
		forEachElement(rootNode, func(n *html.Node) {
			own := ownText(n)
			if own == "" {
				return
			}
			for _, m := range e.rules.Strip.TextMarkers {
				if !m.Match(own) {
					continue
				}
				target := n
				if n.Parent != nil && n.Parent != rootNode {
					target = n.Parent
				}
				doomed = append(doomed, target)
				return
			}
		})

		for _, n := range doomed {
			if n.Parent != nil {
				n.Parent.RemoveChild(n)
			}
		}

		e.prune(rootNode)
	}
}

// prune removes, bottom-up, elements without element children and with
// blank text only, unless the tag is allowed to be empty. Comments go too.
func (e *Extractor) prune(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case html.ElementNode:
			e.prune(c)
			if e.empty(c) {
				n.RemoveChild(c)
			}
		case html.CommentNode:
			n.RemoveChild(c)
		}
		c = next
	}
}

func (e *Extractor) empty(n *html.Node) bool {
	if _, keep := e.keepEmpty[n.Data]; keep {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.ElementNode:
			return false
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) != "":
			return false
		}
	}
	return true
}

// forEachElement calls fn for every element below n in document order.
// fn must not mutate the tree.
func forEachElement(n *html.Node, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		fn(c)
		forEachElement(c, fn)
	}
}

// ownText returns the text of the direct text children of the node.
func ownText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			sb.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
