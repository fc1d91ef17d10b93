// Package reader provides the article pipeline as a whole:
// validation, paywall resolution, fetching, extraction and caching of results.
package reader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Semior001/unpaywall/app/article"
	"github.com/Semior001/unpaywall/app/events"
	"github.com/Semior001/unpaywall/app/fetcher"
	"github.com/Semior001/unpaywall/app/store"
	cache "github.com/go-pkgz/expirable-cache/v2"
)

//go:generate moq -out mock_resolver.go . Resolver
//go:generate moq -out mock_fetcher.go . Fetcher
//go:generate moq -out mock_extractor.go . Extractor

// Resolver finds the accessible source of the article.
type Resolver interface {
	Resolve(ctx context.Context, u string) (article.Source, error)
	TypeOf(u string) article.SourceType
}

// Fetcher retrieves the page markup.
type Fetcher interface {
	Get(ctx context.Context, u string) (string, error)
}

// Extractor extracts the article from the page markup.
type Extractor interface {
	Extract(page string, src article.Source) (article.Details, error)
}

// Result is the article, read from its accessible source.
type Result struct {
	Source  article.Source  `json:"source"`
	Details article.Details `json:"details"`
}

// Opts defines options for the Service.
type Opts struct {
	Logger    *slog.Logger
	Resolver  Resolver
	Extractor Extractor
	// Browser fetcher is used for the platform pages and mirrors.
	Browser Fetcher
	// Direct fetcher is used for the original sources.
	Direct Fetcher
	// Store is the optional persistent cache tier.
	Store     store.Interface
	Publisher events.Publisher

	CacheTTL  time.Duration
	CacheSize int
	// NoCache disables both cache tiers.
	NoCache bool
}

// Service reads articles.
type Service struct {
	log       *slog.Logger
	resolver  Resolver
	extractor Extractor
	browser   Fetcher
	direct    Fetcher
	store     store.Interface
	publisher events.Publisher
	cache     cache.Cache[string, Result]
	ttl       time.Duration
	noCache   bool
	now       func() time.Time
}

// NewService makes new Service.
func NewService(opts Opts) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Direct == nil {
		opts.Direct = opts.Browser
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NoOp{}
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 100
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 15 * time.Minute
	}

	return &Service{
		log:       opts.Logger.With(slog.String("prefix", "reader")),
		resolver:  opts.Resolver,
		extractor: opts.Extractor,
		browser:   opts.Browser,
		direct:    opts.Direct,
		store:     opts.Store,
		publisher: opts.Publisher,
		ttl:       opts.CacheTTL,
		noCache:   opts.NoCache,
		now:       time.Now,
		cache: cache.NewCache[string, Result]().
			WithLRU().
			WithMaxKeys(opts.CacheSize).
			WithTTL(opts.CacheTTL),
	}
}

// CacheStat returns the stats of the in-memory cache.
func (s *Service) CacheStat() cache.Stats { return s.cache.Stat() }

// Resolve validates the URL and resolves its accessible source.
func (s *Service) Resolve(ctx context.Context, u string) (article.Source, error) {
	u, err := article.Validate(u)
	if err != nil {
		return article.Source{}, err
	}

	src, err := s.resolver.Resolve(ctx, u)
	if err != nil {
		return article.Source{}, fmt.Errorf("resolve %s: %w", u, err)
	}

	return src, nil
}

// Extract extracts the article details from the page markup of the source.
func (s *Service) Extract(page string, src article.Source) (article.Details, error) {
	return s.extractor.Extract(page, src)
}

// ExtractURL extracts the article details from the page markup,
// inferring the source type from the URL the page was loaded from.
func (s *Service) ExtractURL(page, u string) (article.Details, error) {
	return s.extractor.Extract(page, article.Source{Type: s.resolver.TypeOf(u), URL: u})
}

// Read runs the whole pipeline for the article at u.
func (s *Service) Read(ctx context.Context, u string) (Result, error) {
	// resolution and download share cookies and the pages already fetched
	ctx = fetcher.WithSession(ctx)

	src, err := s.Resolve(ctx, u)
	if err != nil {
		return Result{}, err
	}

	if res, ok := s.cached(ctx, src.URL); ok {
		s.log.DebugContext(ctx, "serving cached article", slog.String("url", src.URL))
		s.publish(ctx, u, res, true)
		return res, nil
	}

	page, err := s.fetcher(src).Get(ctx, src.URL)
	if err != nil {
		return Result{}, fmt.Errorf("fetch %s source %s: %w", src.Type, src.URL, err)
	}

	details, err := s.extractor.Extract(page, src)
	if err != nil {
		return Result{}, err
	}

	res := Result{Source: src, Details: details}
	s.remember(ctx, res)
	s.publish(ctx, u, res, false)

	s.log.InfoContext(ctx, "article read",
		slog.String("url", u),
		slog.String("source_type", string(src.Type)),
		slog.String("source_url", src.URL),
		slog.String("read_time", details.Publication.ReadTime))

	return res, nil
}

// Forget drops the cached result for the resolved URL from both tiers.
func (s *Service) Forget(ctx context.Context, resolvedURL string) error {
	s.cache.Invalidate(resolvedURL)
	if s.store == nil {
		return nil
	}
	if err := s.store.Delete(ctx, resolvedURL); err != nil {
		return fmt.Errorf("delete from store: %w", err)
	}
	return nil
}

// PurgeExpired removes the stale entries from the persistent tier.
func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	s.cache.DeleteExpired()
	if s.store == nil {
		return 0, nil
	}

	n, err := s.store.Purge(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return 0, fmt.Errorf("purge store: %w", err)
	}

	return n, nil
}

func (s *Service) fetcher(src article.Source) Fetcher {
	if src.Type == article.SourceOriginal {
		return s.direct
	}
	return s.browser
}

func (s *Service) cached(ctx context.Context, key string) (Result, bool) {
	if s.noCache {
		return Result{}, false
	}

	if res, ok := s.cache.Get(key); ok {
		return res, true
	}

	if s.store == nil {
		return Result{}, false
	}

	e, err := s.store.Get(ctx, key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return Result{}, false
	case err != nil:
		s.log.WarnContext(ctx, "failed to get article from store",
			slog.String("url", key), slog.Any("err", err))
		return Result{}, false
	case e.Expired(s.now(), s.ttl):
		return Result{}, false
	}

	res := Result{Source: e.Source, Details: e.Details}
	s.cache.Set(key, res, 0)
	return res, true
}

func (s *Service) remember(ctx context.Context, res Result) {
	if s.noCache {
		return
	}

	s.cache.Set(res.Source.URL, res, 0)

	if s.store == nil {
		return
	}

	err := s.store.Put(ctx, store.Entry{
		URL:      res.Source.URL,
		Source:   res.Source,
		Details:  res.Details,
		CachedAt: s.now(),
	})
	if err != nil {
		s.log.WarnContext(ctx, "failed to put article to store",
			slog.String("url", res.Source.URL), slog.Any("err", err))
	}
}

func (s *Service) publish(ctx context.Context, requested string, res Result, cached bool) {
	e := events.ArticleRead(requested, res.Source, res.Details, cached, s.now())
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.WarnContext(ctx, "failed to publish event",
			slog.String("id", e.ID), slog.Any("err", err))
	}
}
