package botmw

import (
	"context"
	"errors"
	"time"

	"github.com/Semior001/unpaywall/pkg/botx"
)

var (
	// ErrTimeout is returned by Timeout middleware when handler timed out.
	ErrTimeout = errors.New("timed out")
	// ErrPanic is returned by Recover middleware when handler panicked.
	ErrPanic = errors.New("handler panicked")
)

// Timeout sets the timeout for handler.
// Zero or negative duration disables the timeout.
func Timeout(dur time.Duration) botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		if dur <= 0 {
			return next
		}

		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			// set context timeout additionally
			ctx, cancel := context.WithTimeout(ctx, dur)
			defer cancel()

			type result struct {
				resps []botx.Response
				err   error
			}

			done := make(chan result, 1)

			go func() {
				resps, err := next(ctx, req)
				done <- result{resps: resps, err: err}
			}()

			select {
			case res := <-done:
				return res.resps, res.err
			case <-ctx.Done():
				return nil, ErrTimeout
			}
		}
	}
}
