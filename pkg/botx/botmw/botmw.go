// Package botmw provides middlewares for bot handler.
package botmw

import (
	"context"
	"log/slog"

	"github.com/Semior001/unpaywall/pkg/botx"
	"github.com/Semior001/unpaywall/pkg/logx"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// RequestID tags the request with a fresh id, available through
// logx.RequestIDFromContext. When the request fails, the id is referenced
// in the replies to the requester, and the requester left without
// a reply gets the fallback text.
func RequestID(fallback string) botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			id := uuid.NewString()
			ctx = logx.ContextWithRequestID(ctx, id)

			resps, err := next(ctx, req)
			if err == nil {
				return resps, nil
			}

			ref := "\n\nRequest ID: `" + id + "`"
			replied := false
			for i := range resps {
				if resps[i].ChatID != req.Chat.ID {
					continue
				}
				resps[i].Text += ref
				replied = true
			}

			if !replied {
				resps = append(resps, botx.Response{ChatID: req.Chat.ID, Text: fallback + ref})
			}

			return resps, err
		}
	}
}

// Logger is a middleware that logs all requests
func Logger(lg *slog.Logger) botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			args := []any{
				slog.String("chat_id", req.Chat.ID),
				slog.String("chat_username", req.Chat.Username),
			}

			if lg.Handler().Enabled(ctx, slog.LevelDebug) {
				lg.DebugContext(ctx, "request received", append(args, slog.String("command", req.Text))...)
			} else {
				lg.InfoContext(ctx, "request received", args...)
			}

			res, err := next(ctx, req)

			if lg.Handler().Enabled(ctx, slog.LevelDebug) {
				lg.DebugContext(ctx, "request processed", slog.Any("responses", res), slog.Any("err", err))
				return res, err
			}

			lg.InfoContext(ctx, "request processed",
				slog.Any("chats", lo.Map(res, func(r botx.Response, _ int) string { return r.ChatID })),
				slog.Any("err", err),
			)

			return res, err
		}
	}
}

// Recover is a middleware that recovers from panics.
func Recover(lg *slog.Logger) botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) (resps []botx.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					lg.ErrorContext(ctx, "panic recovered", slog.Any("panic", r))
					resps, err = nil, ErrPanic
				}
			}()

			return next(ctx, req)
		}
	}
}
