package article

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError is returned when the user-supplied URL is not acceptable.
type ValidationError struct {
	Value  string
	Reason string
}

// Error returns a human-readable message.
func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid url: %s", e.Reason)
	}
	return fmt.Sprintf("invalid url %q: %s", e.Value, e.Reason)
}

// Validate checks that s is a non-empty absolute http(s) URL and returns it unchanged.
func Validate(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", &ValidationError{Reason: "url is empty"}
	}

	u, err := url.ParseRequestURI(s)
	if err != nil {
		return "", &ValidationError{Value: s, Reason: "not a valid url"}
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &ValidationError{Value: s, Reason: "scheme must be http or https"}
	}

	if u.Host == "" {
		return "", &ValidationError{Value: s, Reason: "host is missing"}
	}

	return s, nil
}
