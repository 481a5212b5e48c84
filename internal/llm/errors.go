package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Failure kinds. Match them with errors.Is.
var (
	ErrUnavailable   = errors.New("provider unavailable")
	ErrRateLimited   = errors.New("rate limited")
	ErrRejected      = errors.New("request rejected")
	ErrInvalidOutput = errors.New("invalid response")
	ErrTruncated     = errors.New("response truncated at max tokens")
)

// Error is a provider failure of one of the kinds above.
type Error struct {
	Kind   error
	Vendor string

	// RetryAfter is the server's wait hint on rate limits, when it sent one.
	RetryAfter time.Duration

	// Content is the offending reply for invalid or truncated output.
	Content json.RawMessage

	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Vendor != "" {
		msg = e.Vendor + ": " + msg
	}
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// RetryAfter returns the wait hint carried by err, or zero.
func RetryAfter(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}

// httpFailure maps a vendor HTTP status to a failure kind. Statuses other
// than 429 in the 4xx range mean the request itself is wrong.
func httpFailure(vendor string, status int, header http.Header, err error) *Error {
	e := &Error{Kind: ErrUnavailable, Vendor: vendor, Err: err}
	switch {
	case status == http.StatusTooManyRequests:
		e.Kind = ErrRateLimited
		if header != nil {
			e.RetryAfter = parseRetryAfter(header.Get("Retry-After"))
		}
	case status >= 400 && status < 500:
		e.Kind = ErrRejected
	}
	return e
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
