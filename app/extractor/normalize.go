package extractor

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/Semior001/unpaywall/app/article"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	headingClassH3 = "text-2xl font-bold"
	headingClassH4 = "text-xl font-bold"
	imageClass     = "lazyload w-full h-auto"
	italicClass    = "italic"
)

// supported lists the tags emitted verbatim.
var supported = map[atom.Atom]article.ElementType{
	atom.H3:         article.ElementH3,
	atom.H4:         article.ElementH4,
	atom.Img:        article.ElementIMG,
	atom.P:          article.ElementP,
	atom.Ul:         article.ElementUL,
	atom.Ol:         article.ElementOL,
	atom.Pre:        article.ElementPRE,
	atom.Blockquote: article.ElementBlockquote,
	atom.Strong:     article.ElementStrong,
	atom.Em:         article.ElementEM,
	atom.A:          article.ElementA,
	atom.Code:       article.ElementCode,
	atom.Strike:     article.ElementStrike,
	atom.Mark:       article.ElementMark,
	atom.Sup:        article.ElementSup,
	atom.Sub:        article.ElementSub,
	atom.Figcaption: article.ElementFigcaption,
}

// normalizer maps the stripped content tree to the list of supported elements.
// It never mutates the tree, all rewrites happen on copies.
type normalizer struct {
	origin string   // platform origin for root-relative links
	page   *url.URL // source page for root-relative images, might be nil
}

// state is threaded through the walk, each step returns the updated copy.
type state struct {
	elements []article.Element
	visited  map[*html.Node]struct{}
}

func (s state) last() article.ElementType {
	if len(s.elements) == 0 {
		return ""
	}
	return s.elements[len(s.elements)-1].Type
}

func (s state) emit(typ article.ElementType, n *html.Node) state {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		// rendering into the buffer doesn't fail for the well-formed tree
		return s
	}
	s.elements = append(s.elements, article.Element{Type: typ, Content: buf.String()})
	return s
}

func (s state) markVisited(n *html.Node) state {
	s.visited[n] = struct{}{}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s = s.markVisited(c)
	}
	return s
}

// normalize walks the children of the root and returns the emitted elements.
func (nz normalizer) normalize(root *html.Node) []article.Element {
	st := nz.walk(root, state{visited: map[*html.Node]struct{}{}})
	return st.elements
}

func (nz normalizer) walk(n *html.Node, st state) state {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if _, seen := st.visited[c]; seen {
			continue
		}
		st = nz.visit(c, st)
	}
	return st
}

func (nz normalizer) visit(n *html.Node, st state) state {
	if n.Data == "picture" {
		return nz.picture(n, st).markVisited(n)
	}

	switch n.DataAtom {
	case atom.H1:
		return nz.heading(n, st, atom.H3, article.ElementH3, headingClassH3, "mt-10").markVisited(n)
	case atom.H2:
		return nz.heading(n, st, atom.H4, article.ElementH4, headingClassH4, "mt-8").markVisited(n)
	case atom.A:
		return st.emit(article.ElementA, nz.rewrite(clone(n))).markVisited(n)
	case atom.P:
		return nz.paragraph(n, st).markVisited(n)
	case atom.Li:
		if n.Parent != nil && (n.Parent.DataAtom == atom.Ul || n.Parent.DataAtom == atom.Ol) {
			return st.emit(article.ElementLI, nz.rewrite(clone(n))).markVisited(n)
		}
	}

	if typ, ok := supported[n.DataAtom]; ok {
		return st.emit(typ, nz.rewrite(clone(n))).markVisited(n)
	}

	return nz.walk(n, st)
}

// picture collapses the responsive image into a single lazy image
// wrapped into a spacing block.
func (nz normalizer) picture(n *html.Node, st state) state {
	img := findFirst(n, atom.Img)
	if img == nil {
		return st
	}

	cp := clone(img)
	cp.FirstChild, cp.LastChild = nil, nil

	if attr(cp, "src") == "" {
		if src := nz.srcFromSrcset(n); src != "" {
			setAttr(cp, "src", src)
		}
	}
	setAttr(cp, "class", imageClass)
	setAttr(cp, "loading", "lazy")

	margin := "mt-7"
	if len(st.elements) == 0 {
		margin = "mt-0"
	}

	wrapper := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Div,
		Data:     "div",
		Attr:     []html.Attribute{{Key: "class", Val: margin}},
	}
	wrapper.AppendChild(cp)

	return st.emit(article.ElementIMG, nz.rewrite(wrapper))
}

// srcFromSrcset returns the URL of the first candidate from the first
// non-empty srcset attribute in the subtree.
func (nz normalizer) srcFromSrcset(n *html.Node) string {
	var srcset string
	walkNodes(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode {
			srcset = attr(c, "srcset")
		}
		return srcset == ""
	})

	first, _, _ := strings.Cut(srcset, ",")
	if fields := strings.Fields(first); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

func (nz normalizer) heading(n *html.Node, st state, to atom.Atom, typ article.ElementType, class, margin string) state {
	if len(st.elements) == 0 {
		margin = "mt-0"
	}

	cp := clone(n)
	cp.DataAtom, cp.Data = to, to.String()
	setAttr(cp, "class", class+" "+margin)

	return st.emit(typ, nz.rewrite(cp))
}

func (nz normalizer) paragraph(n *html.Node, st state) state {
	class := "mt-7"
	if last := st.last(); last == article.ElementH3 || last == article.ElementH4 {
		class = "mt-3"
	}
	if p := n.Parent; p != nil && (p.DataAtom == atom.Blockquote || p.DataAtom == atom.A || p.DataAtom == atom.Figure) {
		class = italicClass
	}

	cp := clone(n)
	setAttr(cp, "class", class)

	return st.emit(article.ElementP, nz.rewrite(cp))
}

// rewrite makes root-relative links and image sources of the copy absolute
// and demotes the headings nested into the emitted element.
func (nz normalizer) rewrite(n *html.Node) *html.Node {
	walkNodes(n, func(c *html.Node) bool {
		if c.Type != html.ElementNode {
			return true
		}
		switch c.DataAtom {
		case atom.H1:
			c.DataAtom, c.Data = atom.H3, atom.H3.String()
			setAttr(c, "class", headingClassH3)
		case atom.H2:
			c.DataAtom, c.Data = atom.H4, atom.H4.String()
			setAttr(c, "class", headingClassH4)
		case atom.A:
			if href := attr(c, "href"); rootRelative(href) {
				setAttr(c, "href", nz.origin+href)
			}
		case atom.Img:
			if src := attr(c, "src"); rootRelative(src) && nz.page != nil {
				if u, err := nz.page.Parse(src); err == nil {
					setAttr(c, "src", u.String())
				}
			}
		}
		return true
	})
	return n
}

// rootRelative returns true for "/path", but not for the
// protocol-relative "//host/path".
func rootRelative(s string) bool {
	return strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//")
}

// clone returns a deep copy of the node, detached from the tree.
func clone(n *html.Node) *html.Node {
	cp := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cp.AppendChild(clone(c))
	}
	return cp
}

// walkNodes calls fn for n and its descendants in document order
// until fn returns false.
func walkNodes(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walkNodes(c, fn) {
			return false
		}
	}
	return true
}

func findFirst(n *html.Node, a atom.Atom) (res *html.Node) {
	walkNodes(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && c.DataAtom == a {
			res = c
			return false
		}
		return true
	})
	return res
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key && a.Namespace == "" {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key && a.Namespace == "" {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
