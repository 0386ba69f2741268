package sbomkit

import (
	"strings"
	"time"

	"github.com/quay/claircore/toolkit/types/cvss"
)

// SecurityVulnerability is a single advisory as it applies to a single
// package in a Document.
//
// Values are constructed per fetch and not modified afterwards.
type SecurityVulnerability struct {
	// Ecosystem in the advisory source's vocabulary, e.g. "GO" or "PIP".
	Ecosystem string     `json:"ecosystem"`
	Package   PackageRef `json:"package"`
	Advisory  Advisory   `json:"advisory"`
	// VulnerableVersionRange is a comma-separated list of range clauses that
	// must all hold, e.g. ">= 1.0.0, < 1.4.2".
	VulnerableVersionRange string `json:"vulnerableVersionRange"`
	FirstPatchedVersion    string `json:"firstPatchedVersion,omitempty"`
}

// PackageRef names the affected package.
type PackageRef struct {
	// ID is opaque; for packages in a Document it is the SPDXID.
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Advisory is the advisory half of a SecurityVulnerability.
type Advisory struct {
	Identifiers []Identifier `json:"identifiers"`
	Severity    Severity     `json:"severity"`
	Summary     string       `json:"summary"`
	Description string       `json:"description,omitempty"`
	References  []string     `json:"references,omitempty"`
	CVSS        CVSS         `json:"cvss"`
	EPSS        EPSS         `json:"epss"`
	CWEs        []CWE        `json:"cwes,omitempty"`
	PublishedAt *time.Time   `json:"publishedAt,omitempty"`
	UpdatedAt   *time.Time   `json:"updatedAt,omitempty"`
	WithdrawnAt *time.Time   `json:"withdrawnAt,omitempty"`
	Permalink   string       `json:"permalink"`
}

// Identifier is a typed advisory identifier, e.g. {GHSA, GHSA-xxxx-xxxx-xxxx}.
type Identifier struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// CVSS is a base score and its vector.
type CVSS struct {
	Score  float64 `json:"score"`
	Vector string  `json:"vectorString,omitempty"`
}

// EPSS is an exploit prediction.
type EPSS struct {
	Percentage float64 `json:"percentage"`
	Percentile float64 `json:"percentile"`
}

// CWE is a weakness classification.
type CWE struct {
	ID          string `json:"cweId"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Withdrawn reports whether the advisory has been withdrawn.
func (a *Advisory) Withdrawn() bool {
	return a.WithdrawnAt != nil && !a.WithdrawnAt.IsZero()
}

// PrimaryID returns the most useful identifier: GHSA, then CVE, then
// whatever is first.
func (a *Advisory) PrimaryID() string {
	for _, pref := range []string{"GHSA", "CVE"} {
		for _, id := range a.Identifiers {
			if strings.EqualFold(id.Type, pref) {
				return id.Value
			}
		}
	}
	if len(a.Identifiers) != 0 {
		return a.Identifiers[0].Value
	}
	return ""
}

// Qualitative reports the qualitative severity implied by the vector.
// Vectors that fail to parse report Unknown.
func (c CVSS) Qualitative() Severity {
	if c.Vector == "" {
		return Unknown
	}
	var q cvss.Qualitative
	switch cvss.Version(c.Vector) {
	case 4:
		v, err := cvss.ParseV4(c.Vector)
		if err != nil {
			return Unknown
		}
		q = cvss.QualitativeScore[cvss.V4Metric](&v)
	case 3:
		v, err := cvss.ParseV3(c.Vector)
		if err != nil {
			return Unknown
		}
		q = cvss.QualitativeScore[cvss.V3Metric](&v)
	default:
		v, err := cvss.ParseV2(c.Vector)
		if err != nil {
			return Unknown
		}
		q = cvss.QualitativeScore[cvss.V2Metric](&v)
	}
	switch q {
	case cvss.Low:
		return Low
	case cvss.Medium:
		return Moderate
	case cvss.High:
		return High
	case cvss.Critical:
		return Critical
	}
	return Unknown
}
