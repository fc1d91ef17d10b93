// Package article contains the models of the article pipeline, alongside
// with the pure helpers to validate input URLs and estimate reading time.
package article

import "strings"

// SourceType identifies which resolution path produced the final URL.
type SourceType string

// Source types, the order of constants doesn't reflect the resolution order.
const (
	SourceMedium   SourceType = "medium"
	SourceWebcache SourceType = "webcache"
	SourceArchive  SourceType = "archive"
	SourceFreedium SourceType = "freedium"
	SourceOriginal SourceType = "original"
)

// Valid returns true if the type is one of the known source types.
func (t SourceType) Valid() bool {
	switch t {
	case SourceMedium, SourceWebcache, SourceArchive, SourceFreedium, SourceOriginal:
		return true
	}
	return false
}

// Source describes where the content of an article came from.
type Source struct {
	Type SourceType `json:"type"`
	URL  string     `json:"url"`
}

// ElementType is a kind of the normalized content node.
type ElementType string

// Element types, emitted by the normalizer.
const (
	ElementH1         ElementType = "H1"
	ElementH2         ElementType = "H2"
	ElementH3         ElementType = "H3"
	ElementH4         ElementType = "H4"
	ElementIMG        ElementType = "IMG"
	ElementP          ElementType = "P"
	ElementUL         ElementType = "UL"
	ElementOL         ElementType = "OL"
	ElementLI         ElementType = "LI"
	ElementPRE        ElementType = "PRE"
	ElementBlockquote ElementType = "BLOCKQUOTE"
	ElementStrong     ElementType = "STRONG"
	ElementEM         ElementType = "EM"
	ElementA          ElementType = "A"
	ElementCode       ElementType = "CODE"
	ElementStrike     ElementType = "STRIKE"
	ElementMark       ElementType = "MARK"
	ElementSup        ElementType = "SUP"
	ElementSub        ElementType = "SUB"
	ElementFigcaption ElementType = "FIGCAPTION"
	ElementDiv        ElementType = "DIV"
)

// Element is a single recognized and normalized content node.
// Content is final once the element is appended to the list.
type Element struct {
	Type    ElementType
	Content string
}

// Details is the final result of the extraction.
// Empty strings in Author and Publication mean that the
// markup didn't expose the field.
type Details struct {
	Title       string      `json:"title"`
	HTMLContent string      `json:"html_content"`
	TextContent string      `json:"text_content"`
	Author      Author      `json:"author"`
	Publication Publication `json:"publication"`
	Language    string      `json:"language,omitempty"`
}

// Author describes the author of the article.
type Author struct {
	Name       string `json:"name,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	ProfileURL string `json:"profile_url,omitempty"`
}

// Publication describes the publication the article belongs to.
type Publication struct {
	Name        string `json:"name,omitempty"`
	ReadTime    string `json:"read_time,omitempty"`
	PublishDate string `json:"publish_date,omitempty"`
}

// Byline joins the known author, publication, publish date and reading time
// of the article.
func (d Details) Byline() string {
	var parts []string
	for _, s := range []string{d.Author.Name, d.Publication.Name, d.Publication.PublishDate, d.Publication.ReadTime} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " · ")
}
