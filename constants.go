package sbomkit

import (
	"strings"

	"golang.org/x/text/cases"
)

// SPDX string constants.
//
// Documents in the wild spell these inconsistently ("PACKAGE-MANAGER",
// "PACKAGE_MANAGER", "package-manager"), so never compare them with ==; use
// [EqualConst].
const (
	NoAssertion = "NOASSERTION"
	None        = "NONE"

	RelDependsOn = "DEPENDS_ON"
	RelDescribes = "DESCRIBES"
	RelContains  = "CONTAINS"

	CategorySecurity       = "SECURITY"
	CategoryPackageManager = "PACKAGE-MANAGER"
	CategoryPersistentID   = "PERSISTENT-ID"
	CategoryOther          = "OTHER"

	RefTypePurl     = "purl"
	RefTypeAdvisory = "advisory"
	RefTypeURL      = "url"
)

var fold = cases.Fold()

// Normalize returns the comparison form of an SPDX constant: case-folded,
// with hyphens mapped to underscores and surrounding space removed.
func Normalize(s string) string {
	return strings.ReplaceAll(fold.String(strings.TrimSpace(s)), "-", "_")
}

// EqualConst reports whether two SPDX constants are structurally equal.
func EqualConst(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// IsSet reports whether s carries a value, treating NOASSERTION and NONE as
// absent.
func IsSet(s string) bool {
	return s != "" && !EqualConst(s, NoAssertion) && !EqualConst(s, None)
}

// ExternalRef is a package external reference.
type ExternalRef struct {
	Category string `json:"referenceCategory"`
	Type     string `json:"referenceType"`
	Locator  string `json:"referenceLocator"`
	Comment  string `json:"comment,omitempty"`
}

// Is reports whether the reference has the provided category and type.
func (r *ExternalRef) Is(category, typ string) bool {
	return EqualConst(r.Category, category) && EqualConst(r.Type, typ)
}

// RefKind discriminates the payload carried by an ExternalRef.
type RefKind uint8

//go:generate go tool stringer -type=RefKind -trimprefix=RefKind

// Known reference kinds.
const (
	RefKindOther RefKind = iota
	// PACKAGE-MANAGER/purl: Locator is a package URL.
	RefKindPurl
	// SECURITY/advisory: Locator is a permalink, Comment is human-readable.
	RefKindAdvisory
	// SECURITY/url with a data URI: Locator is an encoded SecurityVulnerability.
	RefKindVulnerability
	// SECURITY/url with anything else, or a legacy advisory comment.
	RefKindSecurity
)

// DataURIPrefix is the prefix on locators carrying an encoded
// SecurityVulnerability.
const DataURIPrefix = "data:text/json;base64,"

// Kind classifies the reference.
func (r *ExternalRef) Kind() RefKind {
	switch {
	case r.Is(CategoryPackageManager, RefTypePurl):
		return RefKindPurl
	case r.Is(CategorySecurity, RefTypeAdvisory):
		return RefKindAdvisory
	case r.Is(CategorySecurity, RefTypeURL) && strings.HasPrefix(r.Locator, DataURIPrefix):
		return RefKindVulnerability
	case EqualConst(r.Category, CategorySecurity):
		return RefKindSecurity
	}
	return RefKindOther
}
