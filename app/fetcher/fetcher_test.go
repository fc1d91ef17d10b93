package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Get(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
			assert.Equal(t, "en-US,en;q=0.5", r.Header.Get("Accept-Language"))
			assert.Contains(t, r.Header.Get("Accept"), "text/html")
			_, _ = w.Write([]byte("<html>hello</html>"))
		case "/empty":
			_, _ = w.Write([]byte("  \n"))
		case "/large":
			_, _ = w.Write([]byte(strings.Repeat("a", 100)))
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer ts.Close()

	f := New(Opts{Timeout: time.Second, MaxBodySize: 50})

	body, err := f.Get(context.Background(), ts.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, "<html>hello</html>", body)

	_, err = f.Get(context.Background(), ts.URL+"/empty")
	assertKind(t, err, KindEmptyBody)

	_, err = f.Get(context.Background(), ts.URL+"/forbidden")
	ferr := assertKind(t, err, KindStatus)
	assert.Equal(t, http.StatusForbidden, ferr.StatusCode)

	_, err = f.Get(context.Background(), ts.URL+"/large")
	assertKind(t, err, KindNetwork)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = f.Get(context.Background(), "http://127.0.0.1:1/unreachable")
	assertKind(t, err, KindNetwork)
}

func TestFetcher_DirectProfile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Sec-Fetch-Mode"))
		assert.Empty(t, r.Header.Get("Cookie"))
		assert.Equal(t, "unpaywall-test", r.Header.Get("User-Agent"))
		http.SetCookie(w, &http.Cookie{Name: "uid", Value: "1"})
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	f := New(Opts{Profile: ProfileDirect, UserAgent: "unpaywall-test", Timeout: time.Second})
	assert.Equal(t, ProfileDirect, f.Profile())

	for i := 0; i < 2; i++ {
		body, err := f.Get(context.Background(), ts.URL)
		require.NoError(t, err)
		assert.Equal(t, "ok", body)
	}
}

func TestFetcher_BrowserProfileSessions(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("meter"); err != nil {
			http.SetCookie(w, &http.Cookie{Name: "meter", Value: r.URL.Path})
			_, _ = w.Write([]byte("no cookie"))
			return
		}
		c, _ := r.Cookie("meter")
		_, _ = w.Write([]byte("cookie " + c.Value))
	}))
	defer ts.Close()

	f := New(Opts{Timeout: time.Second})

	get := func(ctx context.Context, path string) string {
		body, err := f.Get(ctx, ts.URL+path)
		require.NoError(t, err)
		return body
	}

	first := WithSession(context.Background())
	assert.Equal(t, "no cookie", get(first, "/a"))
	assert.Equal(t, "cookie /a", get(first, "/b"), "requests of one session share cookies")
	assert.Equal(t, first, WithSession(first), "session is not replaced")

	second := WithSession(context.Background())
	assert.Equal(t, "no cookie", get(second, "/c"), "sessions don't share cookies")
	assert.Equal(t, "cookie /c", get(second, "/d"))

	assert.Equal(t, "no cookie", get(context.Background(), "/e"))
	assert.Equal(t, "no cookie", get(context.Background(), "/f"), "requests without a session keep no cookies")
}

func TestFetcher_SessionRemembersPages(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = fmt.Fprintf(w, "page %d", n)
	}))
	defer ts.Close()

	browser := New(Opts{Timeout: time.Second})
	direct := New(Opts{Profile: ProfileDirect, Timeout: time.Second})

	ctx := WithSession(context.Background())

	body, err := browser.Get(ctx, ts.URL+"/a")
	require.NoError(t, err)
	assert.Equal(t, "page 1", body)

	body, err = browser.Get(ctx, ts.URL+"/a")
	require.NoError(t, err)
	assert.Equal(t, "page 1", body, "page is downloaded once per session")

	body, err = direct.Get(ctx, ts.URL+"/a")
	require.NoError(t, err)
	assert.Equal(t, "page 2", body, "profiles don't share pages")

	body, err = browser.Get(WithSession(context.Background()), ts.URL+"/a")
	require.NoError(t, err)
	assert.Equal(t, "page 3", body, "sessions don't share pages")

	for i := 0; i < 2; i++ {
		_, err = browser.Get(ctx, ts.URL+"/fail")
		assertKind(t, err, KindStatus)
	}
	assert.EqualValues(t, 5, hits.Load(), "failures are not remembered")
}

func TestFetcher_Check(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/created" {
			w.WriteHeader(http.StatusCreated)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	f := New(Opts{Timeout: time.Second})
	require.NoError(t, f.Check(context.Background(), ts.URL))

	err := f.Check(context.Background(), ts.URL+"/created")
	assertKind(t, err, KindStatus)
}

func TestFetcher_Head(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	code, err := New(Opts{Timeout: time.Second}).Head(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFetcher_Stream(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("<html><head></head><body>" + strings.Repeat("x", 1000) + "</body></html>"))
	}))
	defer ts.Close()

	f := New(Opts{Timeout: time.Second})

	body, err := f.Stream(context.Background(), ts.URL)
	require.NoError(t, err)

	buf := make([]byte, 12)
	_, err = io.ReadFull(body, buf)
	require.NoError(t, err)
	assert.Equal(t, "<html><head>", string(buf))
	require.NoError(t, body.Close())

	_, err = f.Stream(context.Background(), ts.URL+"/bad")
	assertKind(t, err, KindStatus)
}

func TestFetcher_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer ts.Close()

	_, err := New(Opts{Timeout: 50 * time.Millisecond}).Get(context.Background(), ts.URL)
	assertKind(t, err, KindNetwork)
}

func TestFetcher_BlockPrivate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	_, err := New(Opts{Timeout: time.Second, BlockPrivate: true}).Get(context.Background(), ts.URL)
	assertKind(t, err, KindNetwork)
	assert.ErrorIs(t, err, ErrPrivateAddress)
}

func TestIsPrivateIP(t *testing.T) {
	for ip, private := range map[string]bool{
		"127.0.0.1":       true,
		"10.1.2.3":        true,
		"172.20.0.1":      true,
		"192.168.1.1":     true,
		"169.254.169.254": true,
		"::1":             true,
		"fd00::1":         true,
		"8.8.8.8":         false,
		"2001:4860::1":    false,
	} {
		assert.Equal(t, private, isPrivateIP(net.ParseIP(ip)), ip)
	}
}

func TestBrowserTransport_PlainHTTP(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain"))
	}))
	defer ts.Close()

	f := New(Opts{Timeout: time.Second, FingerprintTLS: true})
	body, err := f.Get(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "plain", body)
}

func TestConnBody_ReleasesOnce(t *testing.T) {
	released := 0
	body := &connBody{
		ReadCloser: io.NopCloser(strings.NewReader("data")),
		release:    func() error { released++; return nil },
	}

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
	assert.Zero(t, released, "connection is held while the body is open")

	require.NoError(t, body.Close())
	require.NoError(t, body.Close())
	assert.Equal(t, 1, released)

	failing := &connBody{
		ReadCloser: io.NopCloser(strings.NewReader("")),
		release:    func() error { return errors.New("conn closed") },
	}
	assert.EqualError(t, failing.Close(), "conn closed")
}

func assertKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	var ferr *Error
	require.True(t, errors.As(err, &ferr), "expected *fetcher.Error, got %v", err)
	assert.Equal(t, kind, ferr.Kind, ferr.Error())
	return ferr
}
