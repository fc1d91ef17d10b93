package resolver

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPaywallBypass is wrapped by BypassError.
var ErrPaywallBypass = errors.New("unable to bypass paywall")

// ErrNoMirrorResult is returned when the mirror page has no result link.
var ErrNoMirrorResult = errors.New("mirror has no result for the article")

// BypassMessage is a user-facing description of BypassError.
const BypassMessage = "Unable to bypass paywall. Article might not be accessible."

// Attempt is a failed attempt to resolve the article.
type Attempt struct {
	Name string
	Err  error
}

// BypassError is returned when every resolution attempt failed.
type BypassError struct {
	URL      string
	Attempts []Attempt
}

// Error lists the failed attempts.
func (e *BypassError) Error() string {
	sb := &strings.Builder{}
	_, _ = fmt.Fprintf(sb, "%v for %s", ErrPaywallBypass, e.URL)
	for i, a := range e.Attempts {
		sep := ", "
		if i == 0 {
			sep = ", attempts: "
		}
		_, _ = fmt.Fprintf(sb, "%s%s (%v)", sep, a.Name, a.Err)
	}
	return sb.String()
}

// Unwrap returns ErrPaywallBypass.
func (e *BypassError) Unwrap() error { return ErrPaywallBypass }
