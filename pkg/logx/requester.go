package logx

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/requester/middleware"
	"github.com/samber/lo"
)

// RoundTripperOpts contains options for client logger.
type RoundTripperOpts struct {
	Level         slog.Level
	SecretHeaders []string
	// BodyLimit is the amount of bytes of the body to log, 0 means default.
	BodyLimit int64
}

// LoggingRoundTripper logs every client request.
// Bodies are logged only when the level is enabled, so the body is not
// buffered in production setups.
func LoggingRoundTripper(lg *slog.Logger, opts RoundTripperOpts) middleware.RoundTripperHandler {
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = defaultBodyLimit
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return middleware.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if !lg.Enabled(req.Context(), opts.Level) {
				return next.RoundTrip(req)
			}

			le := logEntry{}

			le.Request.URL = req.URL.String()
			le.Request.Method = req.Method
			le.Request.Headers = headers(req.Header, opts.SecretHeaders)
			req.Body, le.Request.Body = copyAndTrim(req.Body, opts.BodyLimit)

			lg.LogAttrs(req.Context(), opts.Level, "request sent", slog.Any("request", le.Request))

			start := time.Now()
			resp, err := next.RoundTrip(req)
			le.Elapsed = time.Since(start)

			if err != nil {
				lg.LogAttrs(req.Context(), opts.Level, "request failed",
					slog.String("url", le.Request.URL),
					slog.Duration("elapsed", le.Elapsed),
					slog.Any("err", err),
				)
				return resp, err
			}

			le.Response.StatusCode = resp.StatusCode
			le.Response.Headers = headers(resp.Header, opts.SecretHeaders)
			resp.Body, le.Response.Body = copyAndTrim(resp.Body, opts.BodyLimit)

			lg.LogAttrs(req.Context(), opts.Level, "response received",
				slog.Any("response", le.Response),
				slog.Duration("elapsed", le.Elapsed),
			)

			return resp, nil
		})
	}
}

type logEntry struct {
	Request struct {
		Method  string
		URL     string
		Headers map[string]string
		Body    string
	}
	Response struct {
		StatusCode int
		Headers    map[string]string
		Body       string
	}
	Elapsed time.Duration
}

const defaultBodyLimit = 1024

func headers(h http.Header, secret []string) map[string]string {
	res := make(map[string]string, len(h))
	for k, vals := range h {
		if lo.Contains(secret, k) {
			res[k] = "***"
			continue
		}
		res[k] = strings.Join(vals, ",")
	}
	return res
}

func copyAndTrim(r io.ReadCloser, limit int64) (rd io.ReadCloser, result string) {
	if r == nil || r == http.NoBody {
		return r, ""
	}

	rd, result, read := readPortion(r, limit)
	if read == limit {
		result += "..."
	}
	result = strings.ReplaceAll(result, "\n", "")
	result = strings.ReplaceAll(result, "\t", "")

	return rd, result
}

// readPortion reads up to limit bytes and returns a reader, which
// replays the read portion before the rest of src.
func readPortion(src io.ReadCloser, limit int64) (rd io.ReadCloser, portion string, read int64) {
	buf := &bytes.Buffer{}

	read, err := io.CopyN(buf, src, limit)
	if err != nil {
		_ = src.Close()
		return io.NopCloser(bytes.NewReader(buf.Bytes())), buf.String(), read
	}

	return &closer{rd: io.MultiReader(bytes.NewReader(buf.Bytes()), src), closeFn: src.Close}, buf.String(), read
}

type closer struct {
	rd      io.Reader
	closeFn func() error
}

func (c *closer) Read(p []byte) (n int, err error) { return c.rd.Read(p) }
func (c *closer) Close() error                     { return c.closeFn() }
