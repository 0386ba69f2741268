package sbomkit

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"testing"
)

func ExampleError() {
	fmt.Println(&Error{
		Kind:    ErrInvalid,
		Message: "no documents",
		Op:      "merge.Merge",
	})
	fmt.Println(&Error{
		Inner:   io.ErrUnexpectedEOF,
		Kind:    ErrTransient,
		Message: "reading response",
		Op:      "github.Vulnerabilities",
	})
	fmt.Println(fmt.Errorf("advisory: batch 2: %w", &Error{
		Inner: io.ErrUnexpectedEOF,
		Kind:  ErrTransient,
	}))

	// Output:
	// merge.Merge [invalid]: no documents
	// github.Vulnerabilities [transient]: reading response: unexpected EOF
	// advisory: batch 2: unexpected EOF
}

type kindTestcase struct {
	Err       error
	Invalid   bool
	Transient bool
	Permanent bool
}

func (tc kindTestcase) Run(t *testing.T) {
	t.Log(tc.Err)
	if got, want := errors.Is(tc.Err, ErrInvalid), tc.Invalid; got != want {
		t.Errorf("%v: got: %v, want: %v", ErrInvalid, got, want)
	}
	if got, want := errors.Is(tc.Err, ErrTransient), tc.Transient; got != want {
		t.Errorf("%v: got: %v, want: %v", ErrTransient, got, want)
	}
	if got, want := errors.Is(tc.Err, ErrPermanent), tc.Permanent; got != want {
		t.Errorf("%v: got: %v, want: %v", ErrPermanent, got, want)
	}
}

func TestErrorKind(t *testing.T) {
	tt := []kindTestcase{
		// 0: Invalid
		{
			Err:     &Error{Kind: ErrInvalid, Message: "bad"},
			Invalid: true,
		},
		// 1: Transient, wrapped
		{
			Err:       fmt.Errorf("wrapped: %w", &Error{Kind: ErrTransient, Inner: io.EOF}),
			Transient: true,
		},
		// 2: Nested kinds are both visible.
		{
			Err: &Error{
				Kind: ErrTransient,
				Inner: &Error{
					Inner: errors.New("confused"),
					Kind:  ErrPermanent,
				},
			},
			Transient: true,
			Permanent: true,
		},
		// 3: Plain errors have no kind.
		{
			Err: io.EOF,
		},
	}

	for i, tc := range tt {
		t.Run(strconv.Itoa(i), tc.Run)
	}
}
