package reader

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Semior001/unpaywall/app/article"
	"github.com/Semior001/unpaywall/app/events"
	"github.com/Semior001/unpaywall/app/extractor"
	"github.com/Semior001/unpaywall/app/fetcher"
	"github.com/Semior001/unpaywall/app/resolver"
	"github.com/Semior001/unpaywall/app/rules"
	"github.com/Semior001/unpaywall/app/store"
	"github.com/Semior001/unpaywall/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed data/test/free-article.html
var freeArticle string

func TestService_Read_FreeArticle(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/@author/free-article-123" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(freeArticle))
	}))
	defer ts.Close()

	lg := slog.New(logx.NoOp())
	browser := fetcher.New(fetcher.Opts{Profile: fetcher.ProfileBrowser, Timeout: time.Second, Logger: lg})
	direct := fetcher.New(fetcher.Opts{Profile: fetcher.ProfileDirect, Timeout: time.Second, Logger: lg})
	rs := rules.Default()

	svc := NewService(Opts{
		Logger: lg,
		Resolver: resolver.New(resolver.Opts{
			Logger:  lg,
			Browser: browser,
			Direct:  direct,
			Rules:   rs,
			Mirrors: resolver.DefaultMirrors(),
		}),
		Extractor: extractor.New(extractor.Opts{Logger: lg, Rules: rs}),
		Browser:   browser,
		Direct:    direct,
	})

	u := ts.URL + "/@author/free-article-123"
	res, err := svc.Read(context.Background(), u)
	require.NoError(t, err)

	assert.Equal(t, article.Source{Type: article.SourceMedium, URL: u}, res.Source)
	assert.Equal(t, "A free story", res.Details.Title)
	assert.Equal(t, "Author", res.Details.Author.Name)
	assert.Equal(t, "https://medium.com/@author", res.Details.Author.ProfileURL)
	assert.NotEmpty(t, res.Details.HTMLContent)
	assert.NotEmpty(t, res.Details.TextContent)
	assert.Contains(t, res.Details.HTMLContent, `<a href="https://medium.com/@author/other-story-456">link</a>`)
	assert.Equal(t, article.ReadTime(res.Details.TextContent), res.Details.Publication.ReadTime)
	assert.EqualValues(t, 2, hits.Load(), "page checked for paywall is not downloaded again")
}

type pipeline struct {
	svc       *Service
	resolver  *ResolverMock
	browser   *FetcherMock
	direct    *FetcherMock
	extractor *ExtractorMock
	publisher *events.PublisherMock
}

func newPipeline(t *testing.T, opts Opts) pipeline {
	t.Helper()
	p := pipeline{
		resolver: &ResolverMock{
			ResolveFunc: func(_ context.Context, u string) (article.Source, error) {
				return article.Source{Type: article.SourceFreedium, URL: "https://freedium.cfd/" + u}, nil
			},
			TypeOfFunc: func(string) article.SourceType { return article.SourceFreedium },
		},
		browser: &FetcherMock{GetFunc: func(context.Context, string) (string, error) { return "<html>browser</html>", nil }},
		direct:  &FetcherMock{GetFunc: func(context.Context, string) (string, error) { return "<html>direct</html>", nil }},
		extractor: &ExtractorMock{ExtractFunc: func(page string, src article.Source) (article.Details, error) {
			return article.Details{
				Title:       page,
				TextContent: "text",
				Publication: article.Publication{ReadTime: "1 min read"},
			}, nil
		}},
		publisher: &events.PublisherMock{PublishFunc: func(context.Context, events.Event) error { return nil }},
	}

	opts.Logger = slog.New(logx.NoOp())
	opts.Resolver, opts.Browser, opts.Direct = p.resolver, p.browser, p.direct
	opts.Extractor, opts.Publisher = p.extractor, p.publisher
	p.svc = NewService(opts)
	return p
}

const articleURL = "https://medium.com/@a/story-1"

func TestService_Read(t *testing.T) {
	p := newPipeline(t, Opts{})

	res, err := p.svc.Read(context.Background(), articleURL)
	require.NoError(t, err)
	assert.Equal(t, Result{
		Source: article.Source{Type: article.SourceFreedium, URL: "https://freedium.cfd/" + articleURL},
		Details: article.Details{
			Title:       "<html>browser</html>",
			TextContent: "text",
			Publication: article.Publication{ReadTime: "1 min read"},
		},
	}, res)

	require.Len(t, p.browser.GetCalls(), 1)
	assert.Equal(t, "https://freedium.cfd/"+articleURL, p.browser.GetCalls()[0].U)
	assert.Empty(t, p.direct.GetCalls())

	require.Len(t, p.publisher.PublishCalls(), 1)
	e := p.publisher.PublishCalls()[0].E
	assert.Equal(t, events.TypeArticleRead, e.Type)
	assert.Equal(t, articleURL, e.RequestedURL)
	assert.Equal(t, res.Source, e.Source)
	assert.False(t, e.Cached)
}

func TestService_Read_OriginalUsesDirectFetcher(t *testing.T) {
	p := newPipeline(t, Opts{})
	p.resolver.ResolveFunc = func(_ context.Context, u string) (article.Source, error) {
		return article.Source{Type: article.SourceOriginal, URL: u}, nil
	}

	res, err := p.svc.Read(context.Background(), articleURL)
	require.NoError(t, err)
	assert.Equal(t, "<html>direct</html>", res.Details.Title)
	assert.Empty(t, p.browser.GetCalls())
	assert.Len(t, p.direct.GetCalls(), 1)
}

func TestService_Read_Cache(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		p := newPipeline(t, Opts{})

		first, err := p.svc.Read(context.Background(), articleURL)
		require.NoError(t, err)

		second, err := p.svc.Read(context.Background(), articleURL)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Len(t, p.browser.GetCalls(), 1)
		assert.Len(t, p.extractor.ExtractCalls(), 1)
		assert.Len(t, p.resolver.ResolveCalls(), 2, "cache is keyed by the resolved url")
		assert.Equal(t, 1, p.svc.CacheStat().Hits)

		require.Len(t, p.publisher.PublishCalls(), 2)
		assert.True(t, p.publisher.PublishCalls()[1].E.Cached)
	})

	t.Run("disabled", func(t *testing.T) {
		p := newPipeline(t, Opts{NoCache: true})

		for i := 0; i < 2; i++ {
			_, err := p.svc.Read(context.Background(), articleURL)
			require.NoError(t, err)
		}

		assert.Len(t, p.browser.GetCalls(), 2)
	})

	t.Run("store", func(t *testing.T) {
		b, err := store.NewBolt(t.TempDir())
		require.NoError(t, err)
		defer b.Close()

		p := newPipeline(t, Opts{Store: b, CacheTTL: time.Hour})
		first, err := p.svc.Read(context.Background(), articleURL)
		require.NoError(t, err)

		// fresh memory tier, same store
		p2 := newPipeline(t, Opts{Store: b, CacheTTL: time.Hour})
		second, err := p2.svc.Read(context.Background(), articleURL)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Empty(t, p2.browser.GetCalls())

		// expired entries are misses
		p3 := newPipeline(t, Opts{Store: b, CacheTTL: time.Hour})
		p3.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err = p3.svc.Read(context.Background(), articleURL)
		require.NoError(t, err)
		assert.Len(t, p3.browser.GetCalls(), 1)
	})
}

func TestService_Read_Errors(t *testing.T) {
	t.Run("invalid url", func(t *testing.T) {
		p := newPipeline(t, Opts{})
		_, err := p.svc.Read(context.Background(), "ftp://example.com/file")

		var verr *article.ValidationError
		require.True(t, errors.As(err, &verr), "got %v", err)
		assert.Empty(t, p.resolver.ResolveCalls())
	})

	t.Run("paywall bypass failed", func(t *testing.T) {
		p := newPipeline(t, Opts{})
		p.resolver.ResolveFunc = func(_ context.Context, u string) (article.Source, error) {
			return article.Source{}, &resolver.BypassError{URL: u}
		}

		_, err := p.svc.Read(context.Background(), articleURL)
		assert.ErrorIs(t, err, resolver.ErrPaywallBypass)
		assert.Empty(t, p.publisher.PublishCalls())
	})

	t.Run("fetch failed", func(t *testing.T) {
		p := newPipeline(t, Opts{})
		p.browser.GetFunc = func(_ context.Context, u string) (string, error) {
			return "", &fetcher.Error{Kind: fetcher.KindStatus, URL: u, StatusCode: http.StatusBadGateway}
		}

		_, err := p.svc.Read(context.Background(), articleURL)
		var ferr *fetcher.Error
		require.True(t, errors.As(err, &ferr), "got %v", err)
		assert.Equal(t, http.StatusBadGateway, ferr.StatusCode)
	})

	t.Run("extraction failed", func(t *testing.T) {
		p := newPipeline(t, Opts{})
		p.extractor.ExtractFunc = func(_ string, src article.Source) (article.Details, error) {
			return article.Details{}, &extractor.Error{Source: src, Err: extractor.ErrNoContentRoot}
		}

		_, err := p.svc.Read(context.Background(), articleURL)
		assert.ErrorIs(t, err, extractor.ErrNoContentRoot)

		// failures are not cached
		_, _ = p.svc.Read(context.Background(), articleURL)
		assert.Len(t, p.browser.GetCalls(), 2)
	})

	t.Run("publishing failure doesn't fail the read", func(t *testing.T) {
		p := newPipeline(t, Opts{})
		p.publisher.PublishFunc = func(context.Context, events.Event) error { return errors.New("broker is down") }

		_, err := p.svc.Read(context.Background(), articleURL)
		assert.NoError(t, err)
	})
}

func TestService_ExtractURL(t *testing.T) {
	p := newPipeline(t, Opts{})

	d, err := p.svc.ExtractURL("<html>page</html>", "https://freedium.cfd/x")
	require.NoError(t, err)
	assert.Equal(t, "<html>page</html>", d.Title)

	require.Len(t, p.extractor.ExtractCalls(), 1)
	assert.Equal(t, article.Source{Type: article.SourceFreedium, URL: "https://freedium.cfd/x"},
		p.extractor.ExtractCalls()[0].Src)

	_, err = p.svc.Extract("<html>page</html>", article.Source{Type: article.SourceMedium, URL: articleURL})
	require.NoError(t, err)
	assert.Equal(t, article.SourceMedium, p.extractor.ExtractCalls()[1].Src.Type)
}

func TestService_Resolve(t *testing.T) {
	p := newPipeline(t, Opts{})

	src, err := p.svc.Resolve(context.Background(), articleURL)
	require.NoError(t, err)
	assert.Equal(t, article.SourceFreedium, src.Type)

	_, err = p.svc.Resolve(context.Background(), "")
	var verr *article.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestService_ForgetAndPurge(t *testing.T) {
	b, err := store.NewBolt(t.TempDir())
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	p := newPipeline(t, Opts{Store: b, CacheTTL: time.Hour})

	res, err := p.svc.Read(ctx, articleURL)
	require.NoError(t, err)

	require.NoError(t, p.svc.Forget(ctx, res.Source.URL))
	_, err = b.Get(ctx, res.Source.URL)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = p.svc.Read(ctx, articleURL)
	require.NoError(t, err)
	assert.Len(t, p.browser.GetCalls(), 2)

	n, err := p.svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	p.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	n, err = p.svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
