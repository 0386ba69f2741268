package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

var respBody = `Sorry this resource isn't available at the moment, please try again later when the resource might be available`

func TestLimitedReadResponse(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(respBody))
	}))
	defer svr.Close()

	cl := svr.Client()
	res, err := cl.Get(svr.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	err = CheckResponse(res, http.StatusOK)
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Error() != "unexpected status code: 404 Not Found (body starts: \"Sorry this resource isn't available at the moment, please try again later when the resource might be available\")" {
		t.Errorf("expected different error message but got: %s", err.Error())
	}
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("got: %T, want: *StatusError", err)
	}
	if se.Transient() {
		t.Error("404 reported as transient")
	}
}

func TestTransient(t *testing.T) {
	tt := []struct {
		Code int
		Want bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusUnauthorized, false},
		{http.StatusBadRequest, false},
	}
	for _, tc := range tt {
		t.Run(http.StatusText(tc.Code), func(t *testing.T) {
			svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.Code)
			}))
			defer svr.Close()
			res, err := svr.Client().Get(svr.URL)
			if err != nil {
				t.Fatal(err)
			}
			defer res.Body.Close()
			err = CheckResponse(res, http.StatusOK)
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("got: %v, want: *StatusError", err)
			}
			if got := se.Transient(); got != tc.Want {
				t.Errorf("got: %v, want: %v", got, tc.Want)
			}
		})
	}
}
