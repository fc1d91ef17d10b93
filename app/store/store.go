// Package store provides the persistent tier of the article cache.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Semior001/unpaywall/app/article"
)

// ErrNotFound is an error that is returned when the requested entity is not found.
var ErrNotFound = errors.New("not found")

// Interface defines methods for store.
type Interface interface {
	Put(ctx context.Context, e Entry) error
	Get(ctx context.Context, url string) (Entry, error)
	List(ctx context.Context) ([]Entry, error)
	Delete(ctx context.Context, url string) error
	Purge(ctx context.Context, olderThan time.Time) (int, error)
}

// Entry is an extracted article, stored under its resolved URL.
type Entry struct {
	URL      string          `json:"url"`
	Source   article.Source  `json:"source"`
	Details  article.Details `json:"details"`
	CachedAt time.Time       `json:"cached_at"`
}

// Expired returns true if the entry is older than ttl at the moment now.
// Zero ttl means that entries never expire.
func (e Entry) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(e.CachedAt) > ttl
}
