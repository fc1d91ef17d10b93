package botmw

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Semior001/unpaywall/pkg/botx"
	"github.com/Semior001/unpaywall/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var req = botx.Request{Chat: botx.Chat{ID: "42", Username: "user"}, Text: "/cmd"}

func TestRequestID(t *testing.T) {
	const fallback = "Something went wrong."

	var id string
	handle := func(resps []botx.Response, err error) botx.Handler {
		return RequestID(fallback)(func(ctx context.Context, _ botx.Request) ([]botx.Response, error) {
			id, _ = logx.RequestIDFromContext(ctx)
			return resps, err
		})
	}

	t.Run("no error", func(t *testing.T) {
		resps, err := handle([]botx.Response{{ChatID: "42", Text: "ok"}}, nil)(context.Background(), req)
		require.NoError(t, err)
		assert.Len(t, id, 36)
		assert.Equal(t, []botx.Response{{ChatID: "42", Text: "ok"}}, resps)
	})

	t.Run("error with requester reply", func(t *testing.T) {
		resps, err := handle([]botx.Response{
			{ChatID: "42", Text: "partial"},
			{ChatID: "admin", Text: "alert"},
		}, errors.New("failed"))(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, []botx.Response{
			{ChatID: "42", Text: "partial\n\nRequest ID: `" + id + "`"},
			{ChatID: "admin", Text: "alert"},
		}, resps)
	})

	t.Run("error without requester reply", func(t *testing.T) {
		resps, err := handle([]botx.Response{{ChatID: "admin", Text: "alert"}}, errors.New("failed"))(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, []botx.Response{
			{ChatID: "admin", Text: "alert"},
			{ChatID: "42", Text: fallback + "\n\nRequest ID: `" + id + "`"},
		}, resps)
	})
}

func TestRecover(t *testing.T) {
	h := Recover(slog.New(logx.NoOp()))(func(context.Context, botx.Request) ([]botx.Response, error) {
		panic("boom")
	})

	resps, err := h(context.Background(), req)
	assert.ErrorIs(t, err, ErrPanic)
	assert.Empty(t, resps)
}

func TestTimeout(t *testing.T) {
	t.Run("timed out", func(t *testing.T) {
		h := Timeout(10 * time.Millisecond)(func(ctx context.Context, _ botx.Request) ([]botx.Response, error) {
			<-ctx.Done()
			time.Sleep(10 * time.Millisecond)
			return []botx.Response{{Text: "late"}}, nil
		})
		resps, err := h(context.Background(), req)
		assert.ErrorIs(t, err, ErrTimeout)
		assert.Empty(t, resps)
	})

	t.Run("in time", func(t *testing.T) {
		h := Timeout(time.Second)(func(context.Context, botx.Request) ([]botx.Response, error) {
			return []botx.Response{{Text: "ok"}}, nil
		})
		resps, err := h(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, []botx.Response{{Text: "ok"}}, resps)
	})

	t.Run("disabled", func(t *testing.T) {
		h := Timeout(0)(func(ctx context.Context, _ botx.Request) ([]botx.Response, error) {
			_, ok := ctx.Deadline()
			assert.False(t, ok)
			return nil, nil
		})
		_, err := h(context.Background(), req)
		require.NoError(t, err)
	})
}

func TestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	lg := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	h := Logger(lg)(func(context.Context, botx.Request) ([]botx.Response, error) {
		return []botx.Response{{ChatID: "42", Text: "secret text"}}, nil
	})

	_, err := h(context.Background(), req)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "request received")
	assert.Contains(t, out, "request processed")
	assert.Contains(t, out, "chat_id=42")
	assert.NotContains(t, out, "secret text")
	assert.NotContains(t, out, "/cmd")
}
