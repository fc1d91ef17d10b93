package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	bolt "go.etcd.io/bbolt"
)

const articlesBktName = "articles"

// Bolt is a storage that uses BoltDB as a backend.
type Bolt struct {
	db *bolt.DB
}

// NewBolt creates new Bolt storage in the given directory.
func NewBolt(dir string) (*Bolt, error) {
	db, err := bolt.Open(path.Join(dir, "articles.db"), 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to make boltdb for %s: %w", dir, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{articlesBktName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create top-level bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("make buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Put puts the entry to storage, replacing the previous one for the same URL.
func (b *Bolt) Put(_ context.Context, e Entry) error {
	if e.URL == "" {
		return fmt.Errorf("entry without url")
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(articlesBktName))

		bts, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}

		if err := bkt.Put([]byte(e.URL), bts); err != nil {
			return fmt.Errorf("put entry to storage: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// List returns all entries from storage, ordered by URL.
func (b *Bolt) List(context.Context) ([]Entry, error) {
	var result []Entry
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(articlesBktName))
		err := bkt.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("unmarshal entry %s: %w", k, err)
			}
			result = append(result, e)
			return nil
		})
		if err != nil {
			return fmt.Errorf("foreach: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("view storage: %w", err)
	}
	return result, nil
}

// Get returns the entry for the URL from storage.
func (b *Bolt) Get(_ context.Context, url string) (e Entry, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(articlesBktName))

		bts := bkt.Get([]byte(url))
		if bts == nil {
			return ErrNotFound
		}

		if err := json.Unmarshal(bts, &e); err != nil {
			return fmt.Errorf("unmarshal entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return Entry{}, fmt.Errorf("view storage: %w", err)
	}

	return e, nil
}

// Delete removes the entry for the URL from storage.
func (b *Bolt) Delete(_ context.Context, url string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(articlesBktName))

		if err := bkt.Delete([]byte(url)); err != nil {
			return fmt.Errorf("remove: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// Purge removes entries cached before olderThan and returns their count.
func (b *Bolt) Purge(_ context.Context, olderThan time.Time) (removed int, err error) {
	err = b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(articlesBktName))

		var keys [][]byte
		err := bkt.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("unmarshal entry %s: %w", k, err)
			}
			if e.CachedAt.Before(olderThan) {
				keys = append(keys, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("foreach: %w", err)
		}

		for _, k := range keys {
			if err := bkt.Delete(k); err != nil {
				return fmt.Errorf("remove %s: %w", k, err)
			}
		}

		removed = len(keys)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("update storage: %w", err)
	}

	return removed, nil
}

// Close closes the storage.
func (b *Bolt) Close() error { return b.db.Close() }
