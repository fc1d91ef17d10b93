package store

import (
	"context"
	"testing"
	"time"

	"github.com/Semior001/unpaywall/app/article"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prepBolt(t *testing.T) *Bolt {
	t.Helper()
	b, err := NewBolt(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, b.Close()) })
	return b
}

func entry(url string, at time.Time) Entry {
	return Entry{
		URL:    url,
		Source: article.Source{Type: article.SourceMedium, URL: url},
		Details: article.Details{
			Title:       "title of " + url,
			HTMLContent: `<div class="article-content"><p class="mt-7">text</p></div>`,
			TextContent: "text",
			Author:      article.Author{Name: "Jane Doe"},
			Publication: article.Publication{ReadTime: "1 min read"},
		},
		CachedAt: at.UTC(),
	}
}

func TestBolt_PutGet(t *testing.T) {
	ctx := context.Background()
	b := prepBolt(t)
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

	e := entry("https://medium.com/@a/b", now)
	require.NoError(t, b.Put(ctx, e))

	got, err := b.Get(ctx, e.URL)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	e.Details.Title = "updated"
	require.NoError(t, b.Put(ctx, e))

	got, err = b.Get(ctx, e.URL)
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Details.Title)

	_, err = b.Get(ctx, "https://medium.com/@a/unknown")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, b.Put(ctx, Entry{}))
}

func TestBolt_ListDelete(t *testing.T) {
	ctx := context.Background()
	b := prepBolt(t)
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

	for _, u := range []string{"https://medium.com/@a/2", "https://medium.com/@a/1"} {
		require.NoError(t, b.Put(ctx, entry(u, now)))
	}

	list, err := b.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "https://medium.com/@a/1", list[0].URL)
	assert.Equal(t, "https://medium.com/@a/2", list[1].URL)

	require.NoError(t, b.Delete(ctx, "https://medium.com/@a/1"))
	require.NoError(t, b.Delete(ctx, "https://medium.com/@a/not-there"))

	list, err = b.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "https://medium.com/@a/2", list[0].URL)
}

func TestBolt_Purge(t *testing.T) {
	ctx := context.Background()
	b := prepBolt(t)
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

	require.NoError(t, b.Put(ctx, entry("https://medium.com/@a/old", now.Add(-48*time.Hour))))
	require.NoError(t, b.Put(ctx, entry("https://medium.com/@a/new", now)))

	removed, err := b.Purge(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = b.Get(ctx, "https://medium.com/@a/old")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = b.Get(ctx, "https://medium.com/@a/new")
	assert.NoError(t, err)
}

func TestEntry_Expired(t *testing.T) {
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	e := entry("u", now.Add(-2*time.Hour))

	assert.True(t, e.Expired(now, time.Hour))
	assert.False(t, e.Expired(now, 3*time.Hour))
	assert.False(t, e.Expired(now, 0))
}
