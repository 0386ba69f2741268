package sbomkit

import (
	"regexp"
	"strings"
)

// SupplierType is the kind of entity named in a supplier or creator string.
type SupplierType string

// Supplier types defined by SPDX.
const (
	SupplierOrganization SupplierType = "Organization"
	SupplierPerson       SupplierType = "Person"
	SupplierTool         SupplierType = "Tool"
)

// Supplier is the parsed form of an SPDX supplier, originator, or creator
// string.
type Supplier struct {
	Type  SupplierType
	Name  string
	Email string
}

// String renders the Supplier in SPDX form.
func (s Supplier) String() string {
	var b strings.Builder
	b.WriteString(string(s.Type))
	b.WriteString(": ")
	b.WriteString(s.Name)
	if s.Email != "" {
		b.WriteString(" (")
		b.WriteString(s.Email)
		b.WriteString(")")
	}
	return b.String()
}

// SupplierRegexp matches
//
//	("Organization" | "Person" | "Tool") ":" name [ "(" email ")" ]
//
// The type keyword is matched case-insensitively.
var supplierRegexp = regexp.MustCompile(`^(?i:(organization|person|tool))\s*:\s*([^()]*?)\s*(?:\(([^()]*)\))?\s*$`)

// ParseSupplier parses a raw supplier string such as
// "Organization: Example Inc. (security@example.com)".
//
// The boolean is false for NOASSERTION, empty names, or strings not matching
// the grammar.
func ParseSupplier(raw string) (Supplier, bool) {
	if !IsSet(raw) {
		return Supplier{}, false
	}
	m := supplierRegexp.FindStringSubmatch(raw)
	if m == nil || m[2] == "" {
		return Supplier{}, false
	}
	var t SupplierType
	switch strings.ToLower(m[1]) {
	case "organization":
		t = SupplierOrganization
	case "person":
		t = SupplierPerson
	case "tool":
		t = SupplierTool
	}
	return Supplier{
		Type:  t,
		Name:  m[2],
		Email: strings.TrimSpace(m[3]),
	}, true
}
