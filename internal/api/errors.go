package api

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// ErrTransport indicates the request never produced an HTTP response
// (connection refused, timeout, cancelled context).
type ErrTransport struct {
	Endpoint string
	Err      error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Endpoint, e.Err)
}

func (e *ErrTransport) Unwrap() error { return e.Err }

// ErrStatus indicates the backend answered with a non-2xx status.
type ErrStatus struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *ErrStatus) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Endpoint, e.Code)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Endpoint, e.Code, truncate(e.Body, 200))
}

// ErrDecode indicates the response body was not JSON or did not match the
// expected structure.
type ErrDecode struct {
	Endpoint string
	Body     json.RawMessage
	Err      error
}

func (e *ErrDecode) Error() string {
	return fmt.Sprintf("%s: invalid response body: %v", e.Endpoint, e.Err)
}

func (e *ErrDecode) Unwrap() error { return e.Err }

// truncate cuts s to at most n bytes on a rune boundary and marks the cut.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
