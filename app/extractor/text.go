package extractor

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var manyNewlines = regexp.MustCompile(`\n{3,}`)

// PlainText renders the normalized HTML fragment as plain text:
// blocks are separated by blank lines, list items are bulleted
// and preformatted blocks are fenced.
func PlainText(fragment string) string {
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return ""
	}

	tw := &textWriter{}
	for _, n := range nodes {
		tw.node(n)
	}

	return strings.TrimSpace(manyNewlines.ReplaceAllString(tw.sb.String(), "\n\n"))
}

type textWriter struct {
	sb strings.Builder
}

func (w *textWriter) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
	default:
		w.children(n)
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript:
	case atom.Br:
		w.sb.WriteString("\n")
	case atom.Pre:
		w.lineBreak()
		w.sb.WriteString("```\n")
		w.sb.WriteString(strings.Trim(rawText(n), "\n"))
		w.sb.WriteString("\n```\n\n")
	case atom.Li:
		w.lineBreak()
		w.sb.WriteString("• ")
		w.children(n)
		w.sb.WriteString("\n")
	case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.Blockquote, atom.Figcaption:
		w.children(n)
		w.sb.WriteString("\n\n")
	default:
		w.children(n)
	}
}

func (w *textWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
}

// text writes the collapsed text, separated by a single space
// from the preceding text on the same line.
func (w *textWriter) text(s string) {
	t := strings.Join(strings.Fields(s), " ")
	if t == "" {
		return
	}
	if !w.atLineStart() && !w.endsWith(' ') {
		w.sb.WriteByte(' ')
	}
	w.sb.WriteString(t)
}

func (w *textWriter) lineBreak() {
	if !w.atLineStart() {
		w.sb.WriteByte('\n')
	}
}

func (w *textWriter) atLineStart() bool {
	return w.sb.Len() == 0 || w.endsWith('\n')
}

func (w *textWriter) endsWith(b byte) bool {
	s := w.sb.String()
	return len(s) > 0 && s[len(s)-1] == b
}

// rawText returns the text of the subtree as is, with line breaks for <br>.
func rawText(n *html.Node) string {
	var sb strings.Builder
	walkNodes(n, func(c *html.Node) bool {
		switch {
		case c.Type == html.TextNode:
			sb.WriteString(c.Data)
		case c.Type == html.ElementNode && c.DataAtom == atom.Br:
			sb.WriteString("\n")
		}
		return true
	})
	return sb.String()
}
