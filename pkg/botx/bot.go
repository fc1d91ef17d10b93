// Package botx provides interfaces and types to handle bot updates,
// with a chi-like router.
package botx

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Semior001/unpaywall/pkg/logx"
)

// API defines methods for an API interface to receive and send chat messages.
//
//go:generate moq -out mock_api.go . API
type API interface {
	Updates() <-chan Request
	SendMessage(ctx context.Context, resp Response) error
}

// BotOpts defines options for Bot.
type BotOpts struct {
	// Workers is the amount of updates handled in parallel, at least one.
	Workers int
	Logger  *slog.Logger
}

// Bot passes the updates of the API to the handler and sends the responses back.
type Bot struct {
	h       Handler
	api     API
	workers int
	log     *slog.Logger
}

// NewBot creates a new Bot.
func NewBot(h Handler, api API, opts BotOpts) *Bot {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(logx.NoOp())
	}

	return &Bot{h: h, api: api, workers: opts.Workers, log: opts.Logger}
}

// Run starts updates listener and blocks until the context is done
// or the updates channel is closed.
func (b *Bot) Run(ctx context.Context) {
	wg := &sync.WaitGroup{}
	wg.Add(b.workers)

	for i := 0; i < b.workers; i++ {
		go func(idx int) {
			b.log.InfoContext(ctx, "starting worker", slog.Int("worker", idx))

			defer func() {
				b.log.InfoContext(ctx, "stopping worker", slog.Int("worker", idx))
				wg.Done()
			}()

			for {
				select {
				case <-ctx.Done():
					return
				case req, ok := <-b.api.Updates():
					if !ok {
						return
					}
					b.handleUpdate(ctx, req)
				}
			}
		}(i)
	}

	wg.Wait()
}

func (b *Bot) handleUpdate(ctx context.Context, req Request) {
	resps, err := b.h(ctx, req)
	if err != nil {
		b.log.ErrorContext(ctx, "failed to handle request", slog.Any("err", err))
	}

	for _, resp := range resps {
		if err := b.api.SendMessage(ctx, resp); err != nil {
			b.log.WarnContext(ctx, "failed to send message", slog.Any("err", err))
		}
	}
}
