// Package bot contains routers and controllers for the telegram front-end.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/Semior001/unpaywall/app/article"
	"github.com/Semior001/unpaywall/app/extractor"
	"github.com/Semior001/unpaywall/app/reader"
	"github.com/Semior001/unpaywall/app/resolver"
	"github.com/Semior001/unpaywall/app/revisor"
	"github.com/Semior001/unpaywall/pkg/botx"
	"github.com/Semior001/unpaywall/pkg/botx/botmw"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/samber/lo"
)

// Reader reads articles.
//
//go:generate moq -out mock_reader.go . Reader
type Reader interface {
	Read(ctx context.Context, u string) (reader.Result, error)
	Forget(ctx context.Context, resolvedURL string) error
	CacheStat() cache.Stats
}

// Revisor summarizes articles.
//
//go:generate moq -out mock_revisor.go . Revisor
type Revisor interface {
	Summarize(ctx context.Context, src article.Source, d article.Details) (string, error)
}

// Ctrl provides routes and controllers for bot updates.
type Ctrl struct {
	Logger *slog.Logger
	Reader Reader
	// Revisor is optional, /summary is unavailable without it.
	Revisor        Revisor
	API            botx.API
	AdminIDs       []string
	HandlerTimeout time.Duration
}

// Routes returns a multiplexer for bot controllers.
func (c *Ctrl) Routes() *botx.Router {
	rtr := botx.NewRouter()

	rtr.Use(
		botmw.RequestID("Something went wrong, please ask the admins for help."),
		botmw.Logger(c.Logger),
		botmw.Timeout(c.HandlerTimeout),
		botmw.Recover(c.Logger),
	)

	rtr.NotFound(c.article)
	rtr.Add("/start", c.help)
	rtr.Add("/help", c.help)
	rtr.Add("/summary", c.summary)

	rtr.Group(func(rtr *botx.Router) {
		rtr.Use(c.ensureAdmin)

		rtr.Add("/cache", c.cacheStats)
		rtr.Add("/forget", c.forget)
	})

	return rtr
}

const helpText = "Send me a link to an article and I'll find a version of it you can read.\n\n" +
	"/summary <link> - summarize the article\n" +
	"/help - show this message"

func (c *Ctrl) help(_ context.Context, req botx.Request) ([]botx.Response, error) {
	return []botx.Response{{ChatID: req.Chat.ID, Text: helpText}}, nil
}

var articleMessageTmpl = template.Must(template.New("articleMessage").Parse(
	`*{{.Title}}*
{{- with .Byline}}
_{{.}}_{{end}}

Found at {{.Source}}: [read]({{.URL}})`))

func (c *Ctrl) article(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	u := strings.TrimSpace(req.Text)
	if _, err := article.Validate(u); err != nil {
		return []botx.Response{{
			ChatID: req.Chat.ID,
			Text:   "Please, send me just a link without any other text.\n\n" + helpText,
		}}, nil
	}

	res, resps, err := c.read(ctx, req, u)
	if err != nil || resps != nil {
		return resps, err
	}

	sb := &strings.Builder{}
	err = articleMessageTmpl.Execute(sb, struct {
		Title, Byline, Source, URL string
	}{
		Title:  escapeMarkdown(lo.Ternary(res.Details.Title != "", res.Details.Title, "Untitled")),
		Byline: escapeMarkdown(res.Details.Byline()),
		Source: string(res.Source.Type),
		URL:    res.Source.URL,
	})
	if err != nil {
		return nil, fmt.Errorf("execute article message template: %w", err)
	}

	return []botx.Response{{
		ChatID:           req.Chat.ID,
		ReplyToMessageID: req.MessageID,
		Text:             sb.String(),
	}}, nil
}

func (c *Ctrl) summary(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	if c.Revisor == nil {
		return []botx.Response{{ChatID: req.Chat.ID, Text: "Summaries are not enabled."}}, nil
	}

	u := strings.TrimSpace(strings.TrimPrefix(req.Text, "/summary"))
	if _, err := article.Validate(u); err != nil {
		return []botx.Response{{ChatID: req.Chat.ID, Text: "Usage: /summary <link>"}}, nil
	}

	res, resps, err := c.read(ctx, req, u)
	if err != nil || resps != nil {
		return resps, err
	}

	summary, err := c.Revisor.Summarize(ctx, res.Source, res.Details)
	switch {
	case errors.Is(err, revisor.ErrTooManyTokens):
		return []botx.Response{{
			ChatID: req.Chat.ID,
			Text:   "The article is too long, I can't summarize it.",
		}}, nil
	case err != nil:
		return nil, fmt.Errorf("summarize article: %w", err)
	}

	return []botx.Response{{
		ChatID:           req.Chat.ID,
		ReplyToMessageID: req.MessageID,
		Text: fmt.Sprintf("*%s*\n\n%s\n\n[source](%s)",
			escapeMarkdown(res.Details.Title), escapeMarkdown(summary), res.Source.URL),
	}}, nil
}

// read notifies the user that the article is on its way and reads it.
// Non-nil responses mean that the user has to be told about the failure.
func (c *Ctrl) read(ctx context.Context, req botx.Request, u string) (reader.Result, []botx.Response, error) {
	err := c.API.SendMessage(ctx, botx.Response{
		ChatID: req.Chat.ID,
		Text:   "I'm working on it, please wait...",
	})
	if err != nil {
		return reader.Result{}, nil, fmt.Errorf("send start message: %w", err)
	}

	res, err := c.Reader.Read(ctx, u)
	var xerr *extractor.Error
	switch {
	case errors.Is(err, resolver.ErrPaywallBypass):
		return reader.Result{}, []botx.Response{{ChatID: req.Chat.ID, Text: resolver.BypassMessage}}, nil
	case errors.As(err, &xerr):
		return reader.Result{}, []botx.Response{{
			ChatID: req.Chat.ID,
			Text:   "Failed to extract the article, the source might have changed, try again later.",
		}}, nil
	case err != nil:
		return reader.Result{}, nil, fmt.Errorf("read article: %w", err)
	}

	return res, nil, nil
}

// NotifyAdmins sends a message to all admins.
func (c *Ctrl) NotifyAdmins(ctx context.Context, msg string) error {
	for _, adminID := range c.AdminIDs {
		if err := c.API.SendMessage(ctx, botx.Response{
			ChatID: adminID,
			Text:   msg,
		}); err != nil {
			return fmt.Errorf("send message to admin: %w", err)
		}
	}

	return nil
}

var mdEscaper = strings.NewReplacer(
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	"[", "\\[",
)

func escapeMarkdown(s string) string {
	return mdEscaper.Replace(s)
}
