package license

import (
	"bytes"
	"fmt"

	"github.com/quay/sbomkit"
)

//go:generate go tool stringer -type=Severity

// Severity is the risk tier assigned to a license.
type Severity uint8

const (
	Unknown Severity = iota
	Low
	Medium
	High
)

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	for i := range len(_Severity_index) - 1 {
		if bytes.EqualFold(b, []byte(Severity(i).String())) {
			*s = Severity(i)
			return nil
		}
	}
	return fmt.Errorf("license: unknown severity %q", string(b))
}

// Reasons reported by the assessor.
const (
	ReasonNotFound     = "License not found"
	ReasonNoCommercial = "Commercial use is not permitted"
	ReasonNoAssertion  = "No license information"
	ReasonInvalid      = "Invalid license expression"
)

// Risk is the derived assessment of a license.
type Risk struct {
	Severity Severity `json:"severity"`
	Reasons  []string `json:"reasons,omitempty"`
}

func (r *Risk) raise(s Severity, reason string) {
	if s > r.Severity {
		r.Severity = s
	}
	r.Reasons = appendReason(r.Reasons, reason)
}

func appendReason(rs []string, r string) []string {
	for _, x := range rs {
		if x == r {
			return rs
		}
	}
	return append(rs, r)
}

// AssessRisk classifies a single license identifier.
//
// An identifier missing from the table is Unknown. A known license starts at
// Low, becomes Medium when it does not grant commercial use, and becomes High
// when it requires source disclosure, including over a network. Every
// triggered rule contributes a reason.
func AssessRisk(id string) Risk {
	l, ok := Lookup(id)
	if !ok {
		return Risk{Severity: Unknown, Reasons: []string{ReasonNotFound}}
	}
	r := Risk{Severity: Low}
	if !l.Permits(CommercialUse) {
		r.raise(Medium, ReasonNoCommercial)
	}
	for _, tag := range []string{DiscloseSource, NetworkUseDisclose} {
		if !l.Requires(tag) {
			continue
		}
		reason := tag
		if c, ok := Condition(tag); ok {
			reason = c.Description
		}
		r.raise(High, reason)
	}
	return r
}

// AssessPackage classifies the package's concluded license, falling back to
// the declared license.
func AssessPackage(p *sbomkit.Package) Risk {
	expr := p.LicenseConcluded
	if !sbomkit.IsSet(expr) {
		expr = p.LicenseDeclared
	}
	return AssessExpression(expr)
}
