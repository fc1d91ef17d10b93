package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Semior001/unpaywall/app/article"
	"github.com/Semior001/unpaywall/app/extractor"
	"github.com/Semior001/unpaywall/app/reader"
	"github.com/Semior001/unpaywall/app/resolver"
	"github.com/Semior001/unpaywall/app/revisor"
	"github.com/Semior001/unpaywall/pkg/botx"
	"github.com/Semior001/unpaywall/pkg/logx"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var result = reader.Result{
	Source: article.Source{Type: article.SourceFreedium, URL: "https://freedium.cfd/https://medium.com/a-1"},
	Details: article.Details{
		Title:       "Go *fast*",
		Author:      article.Author{Name: "Jane_Doe"},
		Publication: article.Publication{ReadTime: "3 min read"},
	},
}

type sink struct {
	mu   sync.Mutex
	sent []botx.Response
}

func (s *sink) api() *botx.APIMock {
	return &botx.APIMock{SendMessageFunc: func(_ context.Context, resp botx.Response) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.sent = append(s.sent, resp)
		return nil
	}}
}

func newCtrl(rd Reader, rv Revisor, api botx.API) *Ctrl {
	return &Ctrl{
		Logger:         slog.New(logx.NoOp()),
		Reader:         rd,
		Revisor:        rv,
		API:            api,
		AdminIDs:       []string{"1"},
		HandlerTimeout: 5 * time.Second,
	}
}

func handle(t *testing.T, c *Ctrl, chatID, text string) ([]botx.Response, error) {
	t.Helper()
	return c.Routes().Handle(context.Background(), botx.Request{
		MessageID: "7",
		Chat:      botx.Chat{ID: chatID, Username: "user"},
		Text:      text,
	})
}

func TestCtrl_Article(t *testing.T) {
	s := &sink{}
	rd := &ReaderMock{ReadFunc: func(_ context.Context, u string) (reader.Result, error) {
		assert.Equal(t, "https://medium.com/a-1", u)
		return result, nil
	}}

	resps, err := handle(t, newCtrl(rd, nil, s.api()), "42", " https://medium.com/a-1 ")
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, botx.Response{
		ChatID:           "42",
		ReplyToMessageID: "7",
		Text: "*Go \\*fast\\**\n_Jane\\_Doe · 3 min read_\n\n" +
			"Found at freedium: [read](https://freedium.cfd/https://medium.com/a-1)",
	}, resps[0])

	require.Len(t, s.sent, 1)
	assert.Equal(t, "I'm working on it, please wait...", s.sent[0].Text)
}

func TestCtrl_ArticleUntitled(t *testing.T) {
	s := &sink{}
	rd := &ReaderMock{ReadFunc: func(context.Context, string) (reader.Result, error) {
		return reader.Result{Source: article.Source{Type: article.SourceOriginal, URL: "https://x.com/a"}}, nil
	}}

	resps, err := handle(t, newCtrl(rd, nil, s.api()), "42", "https://x.com/a")
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "*Untitled*\n\nFound at original: [read](https://x.com/a)", resps[0].Text)
}

func TestCtrl_ArticleErrors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		err      error
		wantText string
		wantErr  bool
	}{
		{name: "not a link", text: "hello there", wantText: "Please, send me just a link"},
		{
			name:     "bypass",
			text:     "https://medium.com/a-1",
			err:      &resolver.BypassError{URL: "https://medium.com/a-1"},
			wantText: resolver.BypassMessage,
		},
		{
			name:     "extraction",
			text:     "https://medium.com/a-1",
			err:      &extractor.Error{Source: result.Source, Err: extractor.ErrNoContentRoot},
			wantText: "Failed to extract the article",
		},
		{
			name:     "internal",
			text:     "https://medium.com/a-1",
			err:      errors.New("disk is on fire"),
			wantText: "Something went wrong",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rd := &ReaderMock{ReadFunc: func(context.Context, string) (reader.Result, error) {
				return reader.Result{}, tt.err
			}}

			resps, err := handle(t, newCtrl(rd, nil, (&sink{}).api()), "42", tt.text)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Len(t, resps, 1)
			assert.Equal(t, "42", resps[0].ChatID)
			assert.Contains(t, resps[0].Text, tt.wantText)
		})
	}
}

func TestCtrl_Summary(t *testing.T) {
	rd := &ReaderMock{ReadFunc: func(context.Context, string) (reader.Result, error) { return result, nil }}

	t.Run("success", func(t *testing.T) {
		rv := &RevisorMock{SummarizeFunc: func(_ context.Context, src article.Source, d article.Details) (string, error) {
			assert.Equal(t, result.Source, src)
			assert.Equal(t, result.Details, d)
			return "- point_one", nil
		}}

		resps, err := handle(t, newCtrl(rd, rv, (&sink{}).api()), "42", "/summary https://medium.com/a-1")
		require.NoError(t, err)
		require.Len(t, resps, 1)
		assert.Equal(t, "*Go \\*fast\\**\n\n- point\\_one\n\n[source](https://freedium.cfd/https://medium.com/a-1)",
			resps[0].Text)
	})

	t.Run("too long", func(t *testing.T) {
		rv := &RevisorMock{SummarizeFunc: func(context.Context, article.Source, article.Details) (string, error) {
			return "", revisor.ErrTooManyTokens
		}}

		resps, err := handle(t, newCtrl(rd, rv, (&sink{}).api()), "42", "/summary https://medium.com/a-1")
		require.NoError(t, err)
		require.Len(t, resps, 1)
		assert.Contains(t, resps[0].Text, "too long")
	})

	t.Run("no revisor", func(t *testing.T) {
		rd := &ReaderMock{}
		resps, err := handle(t, newCtrl(rd, nil, (&sink{}).api()), "42", "/summary https://medium.com/a-1")
		require.NoError(t, err)
		require.Len(t, resps, 1)
		assert.Equal(t, "Summaries are not enabled.", resps[0].Text)
		assert.Empty(t, rd.ReadCalls())
	})

	t.Run("no link", func(t *testing.T) {
		resps, err := handle(t, newCtrl(rd, &RevisorMock{}, (&sink{}).api()), "42", "/summary")
		require.NoError(t, err)
		require.Len(t, resps, 1)
		assert.Equal(t, "Usage: /summary <link>", resps[0].Text)
	})
}

func TestCtrl_Help(t *testing.T) {
	for _, cmd := range []string{"/start", "/help"} {
		resps, err := handle(t, newCtrl(&ReaderMock{}, nil, (&sink{}).api()), "42", cmd)
		require.NoError(t, err)
		require.Len(t, resps, 1)
		assert.Equal(t, helpText, resps[0].Text)
	}
}

func TestCtrl_Admin(t *testing.T) {
	rd := &ReaderMock{
		CacheStatFunc: func() cache.Stats { return cache.Stats{Hits: 3, Misses: 2, Added: 5, Evicted: 1} },
		ForgetFunc:    func(context.Context, string) error { return nil },
	}
	c := newCtrl(rd, nil, (&sink{}).api())

	t.Run("cache stats", func(t *testing.T) {
		resps, err := handle(t, c, "1", "/cache")
		require.NoError(t, err)
		require.Len(t, resps, 1)
		assert.Equal(t, "hits: 3, misses: 2, added: 5, evicted: 1", resps[0].Text)
	})

	t.Run("forget", func(t *testing.T) {
		resps, err := handle(t, c, "1", "/forget https://medium.com/a_1")
		require.NoError(t, err)
		require.Len(t, resps, 1)
		assert.Equal(t, "Article https://medium.com/a\\_1 was forgotten.", resps[0].Text)
		require.Len(t, rd.ForgetCalls(), 1)
		assert.Equal(t, "https://medium.com/a_1", rd.ForgetCalls()[0].ResolvedURL)
	})

	t.Run("forget usage", func(t *testing.T) {
		resps, err := handle(t, c, "1", "/forget")
		require.NoError(t, err)
		require.Len(t, resps, 1)
		assert.Contains(t, resps[0].Text, "Usage")
	})

	t.Run("not an admin", func(t *testing.T) {
		resps, err := handle(t, c, "42", "/cache")
		require.NoError(t, err)
		require.Len(t, resps, 1)
		assert.Equal(t, "command not found", resps[0].Text)
	})
}

func TestCtrl_NotifyAdmins(t *testing.T) {
	s := &sink{}
	c := newCtrl(&ReaderMock{}, nil, s.api())
	c.AdminIDs = []string{"1", "2"}

	require.NoError(t, c.NotifyAdmins(context.Background(), "started"))
	assert.Equal(t, []botx.Response{{ChatID: "1", Text: "started"}, {ChatID: "2", Text: "started"}}, s.sent)
}
