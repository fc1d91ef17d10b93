// Package events publishes the notifications about read articles
// to the downstream consumers.
package events

import (
	"context"
	"time"

	"github.com/Semior001/unpaywall/app/article"
	"github.com/google/uuid"
)

// TypeArticleRead is the type of the event, emitted on every served article.
const TypeArticleRead = "article.read"

//go:generate moq -out mock_publisher.go . Publisher

// Publisher publishes events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Event describes a single served article.
type Event struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	RequestedURL string         `json:"requested_url"`
	Source       article.Source `json:"source"`
	Title        string         `json:"title,omitempty"`
	ReadTime     string         `json:"read_time,omitempty"`
	Cached       bool           `json:"cached"`
	At           time.Time      `json:"at"`
}

// ArticleRead makes a new event about the served article.
func ArticleRead(requested string, src article.Source, d article.Details, cached bool, at time.Time) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         TypeArticleRead,
		RequestedURL: requested,
		Source:       src,
		Title:        d.Title,
		ReadTime:     d.Publication.ReadTime,
		Cached:       cached,
		At:           at,
	}
}

// NoOp drops all events.
type NoOp struct{}

// Publish does nothing.
func (NoOp) Publish(context.Context, Event) error { return nil }
