package fetcher

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"sync"

	"github.com/go-pkgz/requester/middleware"
)

type sessionKey struct{}

// session is the state shared by the requests of a single call:
// browser cookies and the pages already downloaded.
type session struct {
	jar http.CookieJar

	mu    sync.Mutex
	pages map[string]string
}

// WithSession returns a context carrying a fresh session. Browser-profile
// requests made with the context share the cookie jar, requests of other
// sessions never see its cookies. Get returns the page already downloaded
// within the session by the same profile instead of downloading it again.
// A context that already carries a session is returned as is.
func WithSession(ctx context.Context) context.Context {
	if _, ok := sessionFrom(ctx); ok {
		return ctx
	}

	// error is always nil without options
	jar, _ := cookiejar.New(nil)
	return context.WithValue(ctx, sessionKey{}, &session{jar: jar, pages: map[string]string{}})
}

func sessionFrom(ctx context.Context) (*session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*session)
	return s, ok
}

func (s *session) page(profile Profile, url string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.pages[string(profile)+" "+url]
	return page, ok
}

func (s *session) remember(profile Profile, url, page string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[string(profile)+" "+url] = page
}

// sessionCookies sends and stores the cookies of the session carried by
// the request context. Requests without a session go without cookies.
func sessionCookies(next http.RoundTripper) http.RoundTripper {
	return middleware.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		sess, ok := sessionFrom(req.Context())
		if !ok {
			return next.RoundTrip(req)
		}

		if cookies := sess.jar.Cookies(req.URL); len(cookies) > 0 {
			req = req.Clone(req.Context())
			for _, c := range cookies {
				req.AddCookie(c)
			}
		}

		resp, err := next.RoundTrip(req)
		if err != nil {
			return resp, err
		}

		if cookies := resp.Cookies(); len(cookies) > 0 {
			sess.jar.SetCookies(req.URL, cookies)
		}

		return resp, nil
	})
}
