package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/Semior001/unpaywall/pkg/botx"
	"github.com/samber/lo"
)

func (c *Ctrl) ensureAdmin(h botx.Handler) botx.Handler {
	return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
		if !lo.Contains(c.AdminIDs, req.Chat.ID) {
			return botx.NotFound(ctx, req)
		}

		return h(ctx, req)
	}
}

func (c *Ctrl) cacheStats(_ context.Context, req botx.Request) ([]botx.Response, error) {
	stats := c.Reader.CacheStat()
	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text: fmt.Sprintf("hits: %d, misses: %d, added: %d, evicted: %d",
			stats.Hits, stats.Misses, stats.Added, stats.Evicted),
	}}, nil
}

func (c *Ctrl) forget(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	tokens := strings.Fields(req.Text)
	if len(tokens) != 2 {
		return []botx.Response{{ChatID: req.Chat.ID, Text: "Usage: /forget <resolved link>"}}, nil
	}

	if err := c.Reader.Forget(ctx, tokens[1]); err != nil {
		return nil, fmt.Errorf("forget article: %w", err)
	}

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text:   fmt.Sprintf("Article %s was forgotten.", escapeMarkdown(tokens[1])),
	}}, nil
}
