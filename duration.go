package sbomkit

import (
	"time"
)

// Duration is a [time.Duration] that serializes as its string form, for use
// in configuration files.
type Duration time.Duration

// UnmarshalText implements [encoding.TextUnmarshaler].
//
// An empty value is the zero Duration.
func (d *Duration) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = 0
		return nil
	}
	dur, err := time.ParseDuration(string(b))
	if err != nil {
		return &Error{Op: "sbomkit.Duration", Kind: ErrInvalid, Inner: err}
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Or returns d as a [time.Duration], or def if d is zero.
func (d Duration) Or(def time.Duration) time.Duration {
	if d == 0 {
		return def
	}
	return time.Duration(d)
}
