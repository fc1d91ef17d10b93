package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/Semior001/unpaywall/app/article"
)

// Field locates a single value in the document.
type Field struct {
	Selector string
	// Attr is the attribute to take the value from, text of the element if empty.
	Attr string
	// Pattern, if set, filters candidates by their text and narrows the value
	// down to the match, or to its first group, if there is one.
	Pattern *regexp.Regexp
}

// Fields is a list of alternative locations of the value, the first found wins.
type Fields []Field

// Lookup returns the first non-empty value of the fields.
func (fs Fields) Lookup(s *goquery.Selection) string {
	for _, f := range fs {
		if v := f.lookup(s); v != "" {
			return v
		}
	}
	return ""
}

func (f Field) lookup(s *goquery.Selection) (res string) {
	s.Find(f.Selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		var v string
		if f.Attr == "" {
			v = strings.Join(strings.Fields(el.Text()), " ")
		} else {
			v = strings.TrimSpace(el.AttrOr(f.Attr, ""))
		}

		if f.Pattern != nil {
			m := f.Pattern.FindStringSubmatch(v)
			switch {
			case m == nil:
				v = ""
			case len(m) > 1:
				v = strings.TrimSpace(m[1])
			default:
				v = strings.TrimSpace(m[0])
			}
		}

		res = v
		return res == ""
	})
	return res
}

// Find returns the first element matched by the fields.
func (fs Fields) Find(s *goquery.Selection) *goquery.Selection {
	for _, f := range fs {
		if found := s.Find(f.Selector).First(); found.Length() > 0 {
			return found
		}
	}
	return nil
}

// Strategy describes the landmarks of the markup produced by a single resolution path.
type Strategy struct {
	Title         Fields
	Root          Fields
	AuthorName    Fields
	AuthorImage   Fields
	AuthorProfile Fields
	Publication   Fields
	ReadTime      Fields
	PublishDate   Fields

	// Strip lists selectors of the chrome specific to this markup,
	// removed in addition to the common rules.
	Strip []string
	// Prepare is called on the whole document before any lookup.
	Prepare func(doc *goquery.Document)
}

var (
	readTimeRe    = regexp.MustCompile(`\d+\s*min read`)
	publishDateRe = regexp.MustCompile(`([A-Z][a-z]{2,8}\.? \d{1,2}, \d{4})`)
	publishedInRe = regexp.MustCompile(`Published in\s+(.+)`)
)

// MediumStrategy returns the landmarks of the platform's own pages.
func MediumStrategy() Strategy {
	return Strategy{
		Title: Fields{
			{Selector: `h1[data-testid="storyTitle"]`},
			{Selector: `h1.pw-post-title`},
			{Selector: `article h1`},
		},
		Root: Fields{
			{Selector: `article`},
			{Selector: `[data-testid="storyContent"]`},
			{Selector: `main`},
		},
		AuthorName: Fields{
			{Selector: `[data-testid="authorName"]`},
			{Selector: `a[rel="author"]`},
			{Selector: `meta[name="author"]`, Attr: "content"},
		},
		AuthorImage: Fields{
			{Selector: `img[data-testid="authorPhoto"]`, Attr: "src"},
		},
		AuthorProfile: Fields{
			{Selector: `a[data-testid="authorName"]`, Attr: "href"},
			{Selector: `a:has([data-testid="authorName"])`, Attr: "href"},
			{Selector: `a[rel="author"]`, Attr: "href"},
			{Selector: `link[rel="author"]`, Attr: "href"},
		},
		Publication: Fields{
			{Selector: `[data-testid="publicationName"]`},
		},
		ReadTime: Fields{
			{Selector: `[data-testid="storyReadTime"]`, Pattern: readTimeRe},
		},
		PublishDate: Fields{
			{Selector: `[data-testid="storyPublishDate"]`},
			{Selector: `meta[property="article:published_time"]`, Attr: "content"},
		},
	}
}

// WebcacheStrategy returns the landmarks of the search engine cache snapshot,
// which is the platform's page under the cache banner.
func WebcacheStrategy() Strategy {
	st := MediumStrategy()
	st.Prepare = func(doc *goquery.Document) {
		doc.Find(`#bN015htcoyT__google-cache-hdr, #google-cache-hdr`).Remove()
	}
	return st
}

// FreediumStrategy returns the landmarks of the community de-paywall mirror.
func FreediumStrategy() Strategy {
	return Strategy{
		Title: Fields{
			{Selector: `h1.font-bold`},
			{Selector: `h1`},
		},
		Root: Fields{
			{Selector: `.main-content`},
		},
		AuthorName: Fields{
			{Selector: `div.flex.items-center a.font-semibold`},
			{Selector: `a[href*="/@"]`},
		},
		AuthorImage: Fields{
			{Selector: `div.flex.items-center img.rounded-full`, Attr: "src"},
		},
		AuthorProfile: Fields{
			{Selector: `div.flex.items-center a.font-semibold`, Attr: "href"},
			{Selector: `a[href*="/@"]`, Attr: "href"},
		},
		Publication: Fields{
			{Selector: `div.flex.items-center span, div.flex.items-center a`, Pattern: publishedInRe},
		},
		ReadTime: Fields{
			{Selector: `div.flex.items-center span`, Pattern: readTimeRe},
		},
		PublishDate: Fields{
			{Selector: `div.flex.items-center span`, Pattern: publishDateRe},
		},
	}
}

// ArchiveStrategy returns the minimal landmarks of the archive snapshot.
// Snapshots inline the styles of the origin, so only the structure is relied on.
func ArchiveStrategy() Strategy {
	return Strategy{
		Title: Fields{{Selector: `h1`}},
		Root:  Fields{{Selector: `article`}},
	}
}

// DefaultStrategies returns the strategy table keyed by the source type.
func DefaultStrategies() map[article.SourceType]Strategy {
	return map[article.SourceType]Strategy{
		article.SourceMedium:   MediumStrategy(),
		article.SourceWebcache: WebcacheStrategy(),
		article.SourceFreedium: FreediumStrategy(),
		article.SourceArchive:  ArchiveStrategy(),
		article.SourceOriginal: MediumStrategy(),
	}
}
