// Package resolver finds an accessible, paywall-free version of an article.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/Semior001/unpaywall/app/article"
	"github.com/Semior001/unpaywall/app/fetcher"
	"github.com/Semior001/unpaywall/app/rules"
	"github.com/Semior001/unpaywall/pkg/logx"
	"golang.org/x/net/html"
)

// Fetcher retrieves pages.
type Fetcher interface {
	Get(ctx context.Context, url string) (string, error)
	Check(ctx context.Context, url string) error
	Stream(ctx context.Context, url string) (io.ReadCloser, error)
}

// Opts defines options for Resolver.
type Opts struct {
	Logger *slog.Logger
	// Browser fetcher is used to detect the platform and to reach mirrors.
	Browser Fetcher
	// Direct fetcher is used for the last resort cookie-less request.
	Direct  Fetcher
	Rules   rules.Rules
	Mirrors []Mirror
	// AttemptTimeout bounds every single request of the resolution.
	AttemptTimeout time.Duration
}

// Resolver resolves the article URL to an accessible source.
type Resolver struct {
	log     *slog.Logger
	browser Fetcher
	direct  Fetcher
	rules   rules.Rules
	mirrors []Mirror
	timeout time.Duration
}

// New makes a new Resolver.
func New(opts Opts) *Resolver {
	if opts.Logger == nil {
		opts.Logger = slog.New(logx.NoOp())
	}
	if opts.Direct == nil {
		opts.Direct = opts.Browser
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 15 * time.Second
	}

	return &Resolver{
		log:     opts.Logger,
		browser: opts.Browser,
		direct:  opts.Direct,
		rules:   opts.Rules,
		mirrors: opts.Mirrors,
		timeout: opts.AttemptTimeout,
	}
}

// Resolve returns the accessible source of the article at u.
func (r *Resolver) Resolve(ctx context.Context, u string) (article.Source, error) {
	ctx = fetcher.WithSession(ctx)

	isPlatform, err := r.sniff(ctx, u)
	switch {
	case err != nil:
		r.log.WarnContext(ctx, "failed to detect platform, trying mirrors",
			slog.String("url", u), slog.Any("err", err))
	case !isPlatform:
		r.log.DebugContext(ctx, "not a platform article", slog.String("url", u))
		return article.Source{Type: article.SourceOriginal, URL: u}, nil
	default:
		indicator, err := r.paywall(ctx, u)
		if err == nil && indicator == "" {
			r.log.DebugContext(ctx, "article is free", slog.String("url", u))
			return article.Source{Type: article.SourceMedium, URL: u}, nil
		}

		r.log.DebugContext(ctx, "article is not directly accessible",
			slog.String("url", u),
			slog.String("indicator", indicator),
			slog.Any("err", err))
	}

	return r.fallback(ctx, u)
}

// TypeOf infers the source type from the host of the URL.
func (r *Resolver) TypeOf(u string) article.SourceType {
	pu, err := url.Parse(u)
	if err != nil {
		return article.SourceOriginal
	}

	host := strings.ToLower(pu.Hostname())
	for _, m := range r.mirrors {
		if mh := m.Host(); mh != "" && host == mh {
			return m.Type
		}
	}

	if r.rules.Platform.OwnsHost(host) {
		return article.SourceMedium
	}

	return article.SourceOriginal
}

// sniff reads the page until the platform signature is found or the head is over.
// The rest of the body is never downloaded.
func (r *Resolver) sniff(ctx context.Context, u string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	body, err := r.browser.Stream(ctx, u)
	if err != nil {
		return false, fmt.Errorf("stream page: %w", err)
	}
	defer body.Close()

	z := html.NewTokenizer(body)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return false, nil
			}
			return false, fmt.Errorf("tokenize page: %w", z.Err())
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "head" {
				return false, nil
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch {
			case string(name) == "body":
				return false, nil
			case string(name) != "meta" || !hasAttr:
				continue
			}

			if r.signature(z) {
				return true, nil
			}
		}
	}
}

func (r *Resolver) signature(z *html.Tokenizer) bool {
	var property, name, content string
	for {
		key, val, more := z.TagAttr()
		switch string(key) {
		case "property":
			property = string(val)
		case "name":
			name = string(val)
		case "content":
			content = string(val)
		}
		if !more {
			break
		}
	}

	return r.rules.Platform.Matches(property, content) || r.rules.Platform.Matches(name, content)
}

// paywall returns the found paywall indicator or an empty string if there is none.
func (r *Resolver) paywall(ctx context.Context, u string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	page, err := r.browser.Get(ctx, u)
	if err != nil {
		return "", fmt.Errorf("get page: %w", err)
	}

	return r.rules.Paywall.Detect(page), nil
}

// candidate is a lazily evaluated attempt to resolve the article.
type candidate struct {
	name string
	typ  article.SourceType
	try  func(ctx context.Context) (string, error)
}

func (r *Resolver) candidates(u string) []candidate {
	var res []candidate
	for _, m := range r.mirrors {
		if m.Disabled {
			continue
		}

		m := m
		res = append(res, candidate{
			name: string(m.Type),
			typ:  m.Type,
			try:  func(ctx context.Context) (string, error) { return r.tryMirror(ctx, m, u) },
		})
	}

	return append(res, candidate{
		name: "direct",
		typ:  article.SourceOriginal,
		try: func(ctx context.Context) (string, error) {
			if _, err := r.direct.Get(ctx, u); err != nil {
				return "", err
			}
			return u, nil
		},
	})
}

// fallback tries candidates one by one, in the order of priority,
// and returns the first successful one.
func (r *Resolver) fallback(ctx context.Context, u string) (article.Source, error) {
	berr := &BypassError{URL: u}

	for _, c := range r.candidates(u) {
		if err := ctx.Err(); err != nil {
			return article.Source{}, fmt.Errorf("resolve %s: %w", u, err)
		}

		resolved, err := r.attempt(ctx, c)
		if err != nil {
			r.log.WarnContext(ctx, "resolution attempt failed",
				slog.String("candidate", c.name),
				slog.String("url", u),
				slog.Any("err", err))
			berr.Attempts = append(berr.Attempts, Attempt{Name: c.name, Err: err})
			continue
		}

		r.log.InfoContext(ctx, "article resolved",
			slog.String("candidate", c.name),
			slog.String("url", u),
			slog.String("resolved", resolved))

		return article.Source{Type: c.typ, URL: resolved}, nil
	}

	return article.Source{}, berr
}

func (r *Resolver) attempt(ctx context.Context, c candidate) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return c.try(ctx)
}

func (r *Resolver) tryMirror(ctx context.Context, m Mirror, u string) (string, error) {
	target := m.URL(u)

	if m.ResultSelector == "" {
		if err := r.browser.Check(ctx, target); err != nil {
			return "", err
		}
		return target, nil
	}

	page, err := r.browser.Get(ctx, target)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse mirror page: %w", err)
	}

	href, ok := doc.Find(m.ResultSelector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", ErrNoMirrorResult
	}

	base, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse mirror url: %w", err)
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parse mirror result link: %w", err)
	}

	return base.ResolveReference(ref).String(), nil
}
