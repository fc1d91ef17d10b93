// Package extractor turns the markup of a resolved article page into the
// normalized article: metadata by the per-source strategy, and the content
// stripped off the platform chrome and reduced to the supported elements.
package extractor

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/Semior001/unpaywall/app/article"
	"github.com/Semior001/unpaywall/app/rules"
	"github.com/abadojack/whatlanggo"
	"github.com/go-shiori/go-readability"
)

// Extractor extracts the article details from HTML pages.
type Extractor struct {
	lg         *slog.Logger
	rules      rules.Rules
	strategies map[article.SourceType]Strategy
	keepEmpty  map[string]struct{}
}

// Opts defines options for the Extractor.
type Opts struct {
	Logger *slog.Logger
	Rules  rules.Rules
	// Strategies overrides the default strategy table, sources
	// missing in the table are extracted with the original strategy.
	Strategies map[article.SourceType]Strategy
}

// New makes new Extractor.
func New(opts Opts) *Extractor {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Strategies == nil {
		opts.Strategies = DefaultStrategies()
	}
	if opts.Rules.Platform.Origin == "" {
		opts.Rules = rules.Default()
	}

	e := &Extractor{
		lg:         opts.Logger.With(slog.String("prefix", "extractor")),
		rules:      opts.Rules,
		strategies: opts.Strategies,
		keepEmpty:  make(map[string]struct{}, len(opts.Rules.Strip.KeepEmpty)),
	}
	for _, tag := range opts.Rules.Strip.KeepEmpty {
		e.keepEmpty[strings.ToLower(tag)] = struct{}{}
	}

	return e
}

// Extract parses the page and returns the article details.
// The extraction is deterministic: the same page yields the same details.
func (e *Extractor) Extract(page string, src article.Source) (article.Details, error) {
	if strings.TrimSpace(page) == "" {
		return article.Details{}, &Error{Source: src, Err: errors.New("empty page")}
	}

	st, ok := e.strategies[src.Type]
	if !ok {
		st = e.strategies[article.SourceOriginal]
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return article.Details{}, &Error{Source: src, Err: fmt.Errorf("parse html: %w", err)}
	}

	if st.Prepare != nil {
		st.Prepare(doc)
	}

	pageURL, _ := url.Parse(src.URL)

	// metadata is looked up before stripping, as the chrome carries most of it
	details := article.Details{
		Title: st.Title.Lookup(doc.Selection),
		Author: article.Author{
			Name:       st.AuthorName.Lookup(doc.Selection),
			ImageURL:   e.absolute(pageURL, st.AuthorImage.Lookup(doc.Selection)),
			ProfileURL: e.absolute(pageURL, st.AuthorProfile.Lookup(doc.Selection)),
		},
		Publication: article.Publication{
			Name:        st.Publication.Lookup(doc.Selection),
			ReadTime:    st.ReadTime.Lookup(doc.Selection),
			PublishDate: st.PublishDate.Lookup(doc.Selection),
		},
	}

	root := st.Root.Find(doc.Selection)
	if root == nil {
		return article.Details{}, &Error{Source: src, Err: ErrNoContentRoot}
	}

	e.strip(root, st.Strip)

	nz := normalizer{origin: e.rules.Platform.Origin, page: pageURL}
	elements := nz.normalize(root.Get(0))

	var sb strings.Builder
	sb.WriteString(`<div class="article-content">`)
	for _, el := range elements {
		sb.WriteString(el.Content)
	}
	sb.WriteString(`</div>`)

	details.HTMLContent = sb.String()
	details.TextContent = PlainText(details.HTMLContent)

	e.fallback(doc, page, pageURL, &details)

	if details.Publication.ReadTime == "" {
		details.Publication.ReadTime = article.ReadTime(details.TextContent)
	}

	if info := whatlanggo.Detect(details.TextContent); info.IsReliable() {
		details.Language = info.Lang.Iso6391()
	}

	e.lg.Debug("article extracted",
		slog.String("source_type", string(src.Type)),
		slog.String("url", src.URL),
		slog.Int("elements", len(elements)),
		slog.String("title", details.Title))

	return details, nil
}

// fallback fills in the metadata the strategy didn't find,
// from the page meta tags first and from the readability parse afterwards.
func (e *Extractor) fallback(doc *goquery.Document, page string, pageURL *url.URL, d *article.Details) {
	if d.Title == "" {
		d.Title = Fields{
			{Selector: `meta[property="og:title"]`, Attr: "content"},
			{Selector: `title`},
		}.Lookup(doc.Selection)
	}

	if d.Title != "" && d.Author.Name != "" {
		return
	}

	rd, err := readability.FromReader(strings.NewReader(page), pageURL)
	if err != nil {
		e.lg.Debug("readability metadata fallback failed", slog.Any("err", err))
		return
	}

	if d.Title == "" {
		d.Title = strings.TrimSpace(rd.Title)
	}
	if d.Author.Name == "" {
		d.Author.Name = strings.TrimSpace(rd.Byline)
	}
	if d.Publication.Name == "" && rd.SiteName != "" &&
		!e.rules.Platform.Matches("og:site_name", rd.SiteName) {
		d.Publication.Name = strings.TrimSpace(rd.SiteName)
	}
}

// absolute resolves the root-relative URL of the metadata against the
// platform origin and the page-relative one against the page itself.
func (e *Extractor) absolute(pageURL *url.URL, s string) string {
	switch {
	case s == "":
		return ""
	case rootRelative(s):
		return e.rules.Platform.Origin + s
	case pageURL != nil:
		if u, err := pageURL.Parse(s); err == nil {
			return u.String()
		}
	}
	return s
}
