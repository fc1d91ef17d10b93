package rest

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Semior001/unpaywall/pkg/logx"
	"github.com/google/uuid"
)

// RequestIDHeader is the header, which carries the request id.
const RequestIDHeader = "X-Request-Id"

// RequestID is a middleware that adds request id to context and to the response headers.
// Incoming ids are kept, if they are valid uuids.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logx.ContextWithRequestID(r.Context(), id)))
	})
}

// Recover is a middleware that recovers from panics.
func Recover(lg *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					lg.ErrorContext(r.Context(), "panic recovered", slog.Any("panic", rec))
					writeJSON(w, r, http.StatusInternalServerError, errResponse(r, "internal error"))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RealIP replaces the remote address of the request with the first address
// of X-Forwarded-For. The header is set by clients at will, so the middleware
// is only for servers behind a proxy that overwrites it.
func RealIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				r = r.WithContext(r.Context())
				r.RemoteAddr = net.JoinHostPort(ip.String(), "0")
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Logger is a middleware that logs all requests.
func Logger(lg *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			args := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("remote", clientIP(r)),
			}

			if lg.Handler().Enabled(r.Context(), slog.LevelDebug) {
				lg.DebugContext(r.Context(), "request processed",
					append(args, slog.String("query", r.URL.RawQuery), slog.Int("size", sw.size))...)
				return
			}

			lg.InfoContext(r.Context(), "request processed", args...)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}
