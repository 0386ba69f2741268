// Package httputil holds helpers for talking to HTTP services.
package httputil

import (
	"fmt"
	"io"
	"net/http"
	"slices"
)

// StatusError is returned by CheckResponse when the status code is not
// acceptable.
type StatusError struct {
	StatusCode int
	Status     string
	// Body is a prefix of the response body, if it could be read.
	Body []byte
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Body != nil {
		return fmt.Sprintf("unexpected status code: %s (body starts: %q)", e.Status, e.Body)
	}
	return fmt.Sprintf("unexpected status code: %s", e.Status)
}

// Transient reports whether the status indicates the server may succeed
// later: 429 or any 5xx.
func (e *StatusError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// CheckResponse takes a http.Response and a variadic of ints representing
// acceptable http status codes. The error returned is a *StatusError and will
// attempt to include some content from the server's response.
func CheckResponse(resp *http.Response, acceptableCodes ...int) error {
	if slices.Contains(acceptableCodes, resp.StatusCode) {
		return nil
	}
	err := &StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}
	if b, rerr := io.ReadAll(io.LimitReader(resp.Body, 256)); rerr == nil {
		err.Body = b
	}
	return err
}

// UserAgent is sent on outgoing requests.
const UserAgent = "sbomkit (+https://github.com/quay/sbomkit)"
