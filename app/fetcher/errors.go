package fetcher

import "fmt"

// ErrorKind describes the failure of the request.
type ErrorKind string

// Kinds of failures.
const (
	KindNetwork   ErrorKind = "network"
	KindStatus    ErrorKind = "status"
	KindEmptyBody ErrorKind = "empty body"
)

// Error is returned by Fetcher when the request failed.
type Error struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	Err        error
}

// Error returns the description of the failure.
func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("fetch %s: unexpected status code %d", e.URL, e.StatusCode)
	case KindEmptyBody:
		return fmt.Sprintf("fetch %s: empty body", e.URL)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }
