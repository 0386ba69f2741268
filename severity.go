package sbomkit

import (
	"bytes"
	"fmt"
	"strings"
)

// Severity is an advisory severity, in the vocabulary used by GitHub
// security advisories.
type Severity uint

//go:generate go tool stringer -type=Severity

const (
	Unknown Severity = iota
	Low
	Moderate
	High
	Critical
)

// ParseSeverity parses a severity name case-insensitively. "MEDIUM" is
// accepted as an alias for Moderate.
func ParseSeverity(s string) (Severity, error) {
	var sev Severity
	err := sev.UnmarshalText([]byte(s))
	return sev, err
}

// MarshalText implements encoding.TextMarshaler.
//
// Severities are written upper-cased, matching the advisory source.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(strings.ToUpper(s.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*s = Unknown
		return nil
	}
	if bytes.EqualFold(b, []byte("medium")) {
		*s = Moderate
		return nil
	}
	for n := range len(_Severity_index) - 1 {
		if bytes.EqualFold(b, []byte(_Severity_name[_Severity_index[n]:_Severity_index[n+1]])) {
			*s = Severity(n)
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", string(b))
}
