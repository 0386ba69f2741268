package test

import "net/http"

// RoundTripFunc is an [http.RoundTripper] implemented by a function.
//
// The function should validate the incoming request is what's expected.
type RoundTripFunc func(req *http.Request) (*http.Response, error)

// RoundTrip implements [http.RoundTripper].
func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// NewClient returns an [http.Client] whose every request is handled by fn.
func NewClient(fn RoundTripFunc) *http.Client {
	return &http.Client{Transport: fn}
}
