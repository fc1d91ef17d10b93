package extractor

import (
	"errors"
	"fmt"

	"github.com/Semior001/unpaywall/app/article"
)

// ErrNoContentRoot is returned when the strategy didn't find the article body.
var ErrNoContentRoot = errors.New("no content root found")

// Error describes the failure to extract an article from the markup.
// Callers may treat it as retryable, the markup of mirrors changes over time.
type Error struct {
	Source article.Source
	Err    error
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("extract article from %s source %s: %v", e.Source.Type, e.Source.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }
