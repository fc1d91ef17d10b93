// Package rest provides the HTTP API of the article pipeline.
package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Semior001/unpaywall/app/article"
	"github.com/Semior001/unpaywall/app/reader"
)

//go:generate moq -out mock_reader.go . Reader
//go:generate moq -out mock_revisor.go . Revisor

// Reader runs the article pipeline.
type Reader interface {
	Read(ctx context.Context, u string) (reader.Result, error)
	Resolve(ctx context.Context, u string) (article.Source, error)
}

// Revisor rewrites articles.
type Revisor interface {
	Summarize(ctx context.Context, src article.Source, d article.Details) (string, error)
	Translate(ctx context.Context, src article.Source, d article.Details, lang string) (string, error)
}

// Server is a REST API server.
type Server struct {
	Addr   string
	Reader Reader
	// Revisor is optional, rewrite endpoints respond with 501 without it.
	Revisor Revisor
	Logger  *slog.Logger

	RateLimit RateLimitOpts
	// TrustProxy makes the server take client addresses from X-Forwarded-For.
	TrustProxy   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Version      string
}

// Run starts the server and blocks until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}

	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.routes(ctx),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.ReadTimeout,
		WriteTimeout:      s.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.Logger.WarnContext(ctx, "failed to shutdown http server", slog.Any("err", err))
		}
	}()

	s.Logger.InfoContext(ctx, "starting http server", slog.String("addr", s.Addr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// routes makes the handler of the server, ctx bounds the background
// routines of the middlewares.
func (s *Server) routes(ctx context.Context) http.Handler {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", s.ping)

	mux.HandleFunc("POST /api/v1/resolve", s.resolve)
	mux.HandleFunc("POST /api/v1/article", s.postArticle)
	mux.HandleFunc("GET /api/v1/article", s.getArticle)
	mux.HandleFunc("POST /api/v1/readtime", s.readTime)
	mux.HandleFunc("POST /api/v1/summary", s.summary)
	mux.HandleFunc("POST /api/v1/translate", s.translate)

	limiter := newRateLimiter(ctx, s.RateLimit)

	mws := []func(http.Handler) http.Handler{RequestID}
	if s.TrustProxy {
		mws = append(mws, RealIP)
	}
	mws = append(mws, Recover(s.Logger), Logger(s.Logger), limiter.Middleware)

	return chain(mux, mws...)
}

// chain wraps the handler with middlewares, the first one is the outermost.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
