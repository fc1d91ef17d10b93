package resolver

import (
	"net/url"
	"strings"

	"github.com/Semior001/unpaywall/app/article"
)

// Mirror is a third-party service that serves an alternate rendering of the article.
type Mirror struct {
	Type     article.SourceType
	Prefix   string
	Escape   bool // percent-encode the article URL before appending it to the prefix
	Disabled bool

	// ResultSelector, when set, makes the resolver to scrape the page at
	// the mirror URL and take the first link matching the selector as a result.
	ResultSelector string
}

// URL returns the mirror URL for the article at u.
func (m Mirror) URL(u string) string {
	if m.Escape {
		return m.Prefix + url.QueryEscape(u)
	}
	return m.Prefix + u
}

// Host returns the host of the mirror.
func (m Mirror) Host() string {
	u, err := url.Parse(m.Prefix)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// Default mirror prefixes.
const (
	WebcachePrefix = "https://webcache.googleusercontent.com/search?q=cache:"
	ArchivePrefix  = "https://archive.ph/"
	FreediumPrefix = "https://freedium.cfd/"
)

// DefaultMirrors returns mirrors in the order of priority.
// Archive is defined, but disabled.
func DefaultMirrors() []Mirror {
	return []Mirror{
		{Type: article.SourceWebcache, Prefix: WebcachePrefix, Escape: true},
		{
			Type:           article.SourceArchive,
			Prefix:         ArchivePrefix,
			Disabled:       true,
			ResultSelector: "#row0 .TEXT-BLOCK a[href]",
		},
		{Type: article.SourceFreedium, Prefix: FreediumPrefix, Escape: true},
	}
}
