// Package fetcher retrieves raw markup of pages, pretending to be a desktop browser
// where needed, as many of the mirror services block non-browser-looking requests.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Semior001/unpaywall/pkg/logx"
	"github.com/go-pkgz/requester"
	"github.com/go-pkgz/requester/middleware"
)

// Profile defines the signature of the requests.
type Profile string

const (
	// ProfileBrowser makes requests look like the ones of a desktop browser.
	ProfileBrowser Profile = "browser"
	// ProfileDirect makes plain requests without cookies and browser headers.
	ProfileDirect Profile = "direct"
)

// DefaultUserAgent is a desktop browser user agent.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0"

// DefaultMaxBodySize is the default limit of the response body.
const DefaultMaxBodySize = 16 * 1024 * 1024

// Opts defines options for Fetcher.
type Opts struct {
	Profile   Profile
	UserAgent string
	Timeout   time.Duration
	// MaxBodySize limits the amount of bytes read from a response body, 0 means default.
	MaxBodySize int64
	// FingerprintTLS enables the browser-like TLS handshake for https requests.
	// Works only with ProfileBrowser.
	FingerprintTLS bool
	// BlockPrivate prevents connections to loopback and private networks.
	BlockPrivate bool
	Logger       *slog.Logger
}

// Fetcher makes GET and HEAD requests and returns raw responses.
// It never retries, callers decide what to do on failure.
type Fetcher struct {
	rq      *requester.Requester
	maxBody int64
	profile Profile
}

// New makes a new Fetcher.
func New(opts Opts) *Fetcher {
	if opts.Profile == "" {
		opts.Profile = ProfileBrowser
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(logx.NoOp())
	}

	dialer := &net.Dialer{Timeout: opts.Timeout}
	dial := dialer.DialContext
	if opts.BlockPrivate {
		dial = guardedDialContext(dialer)
	}

	var transport http.RoundTripper = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dial,
		TLSHandshakeTimeout: opts.Timeout,
		MaxIdleConnsPerHost: 4,
	}

	cl := http.Client{Timeout: opts.Timeout, Transport: transport}

	mws := []middleware.RoundTripperHandler{
		logx.LoggingRoundTripper(opts.Logger, logx.RoundTripperOpts{
			Level:         slog.LevelDebug,
			SecretHeaders: []string{"Cookie", "Set-Cookie"},
		}),
		middleware.Header("User-Agent", opts.UserAgent),
	}

	switch opts.Profile {
	case ProfileBrowser:
		if opts.FingerprintTLS {
			cl.Transport = newBrowserTransport(dial)
		}

		for _, h := range browserHeaders {
			mws = append(mws, middleware.Header(h[0], h[1]))
		}
		mws = append(mws, sessionCookies)
	case ProfileDirect:
		mws = append(mws, middleware.Header("Accept", "text/html,*/*"))
	}

	return &Fetcher{
		rq:      requester.New(cl, mws...),
		maxBody: opts.MaxBodySize,
		profile: opts.Profile,
	}
}

var browserHeaders = [][2]string{
	{"Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
	{"Accept-Language", "en-US,en;q=0.5"},
	{"Sec-Fetch-Dest", "document"},
	{"Sec-Fetch-Mode", "navigate"},
	{"Sec-Fetch-Site", "none"},
	{"Upgrade-Insecure-Requests", "1"},
}

// Profile returns the request profile of the fetcher.
func (f *Fetcher) Profile() Profile { return f.profile }

// Get returns the body of the page at url.
// Within a session (see WithSession) the page is downloaded only once.
func (f *Fetcher) Get(ctx context.Context, url string) (string, error) {
	sess, hasSession := sessionFrom(ctx)
	if hasSession {
		if page, ok := sess.page(f.profile, url); ok {
			return page, nil
		}
	}

	resp, err := f.do(ctx, http.MethodGet, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if !ok(resp.StatusCode) {
		return "", &Error{Kind: KindStatus, URL: url, StatusCode: resp.StatusCode}
	}

	body, err := readLimited(resp.Body, f.maxBody)
	if err != nil {
		return "", &Error{Kind: KindNetwork, URL: url, StatusCode: resp.StatusCode, Err: err}
	}

	if strings.TrimSpace(string(body)) == "" {
		return "", &Error{Kind: KindEmptyBody, URL: url, StatusCode: resp.StatusCode}
	}

	if hasSession {
		sess.remember(f.profile, url, string(body))
	}

	return string(body), nil
}

// Check makes a plain GET request and succeeds only on HTTP 200.
// The body is discarded.
func (f *Fetcher) Check(ctx context.Context, url string) error {
	resp, err := f.do(ctx, http.MethodGet, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &Error{Kind: KindStatus, URL: url, StatusCode: resp.StatusCode}
	}

	return nil
}

// Head returns the status code of the HEAD request to url.
func (f *Fetcher) Head(ctx context.Context, url string) (int, error) {
	resp, err := f.do(ctx, http.MethodHead, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

// Stream returns the body of the page at url without reading it.
// The caller must close the body, closing it earlier cancels the rest
// of the transfer.
func (f *Fetcher) Stream(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, err := f.do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}

	if !ok(resp.StatusCode) {
		_ = resp.Body.Close()
		return nil, &Error{Kind: KindStatus, URL: url, StatusCode: resp.StatusCode}
	}

	return &limitedBody{rd: io.LimitReader(resp.Body, f.maxBody), Closer: resp.Body}, nil
}

func (f *Fetcher) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, http.NoBody)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: url, Err: fmt.Errorf("build request: %w", err)}
	}

	resp, err := f.rq.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: url, Err: err}
	}

	return resp, nil
}

func ok(code int) bool { return code >= http.StatusOK && code < http.StatusMultipleChoices }

// ErrTooLarge is returned when the response body exceeds the limit.
var ErrTooLarge = errors.New("response body is too large")

// readLimited reads up to limit bytes from r and fails if there is more.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}

type limitedBody struct {
	rd io.Reader
	io.Closer
}

func (b *limitedBody) Read(p []byte) (int, error) { return b.rd.Read(p) }
