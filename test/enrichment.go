package test

import (
	"fmt"
	"time"

	"github.com/quay/sbomkit"
)

// Vulnerability creates an advisory for the named package, as an advisory
// source would return it.
func Vulnerability(ghsa, name, vulnerableRange string, sev sbomkit.Severity) sbomkit.SecurityVulnerability {
	published := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return sbomkit.SecurityVulnerability{
		Package: sbomkit.PackageRef{Name: name},
		Advisory: sbomkit.Advisory{
			Identifiers: []sbomkit.Identifier{{Type: "GHSA", Value: ghsa}},
			Severity:    sev,
			Summary:     fmt.Sprintf("Issue %s in %s", ghsa, name),
			References:  []string{"https://example.com/" + ghsa},
			CVSS:        sbomkit.CVSS{Score: 7.5, Vector: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:N/I:N/A:H"},
			EPSS:        sbomkit.EPSS{Percentage: 0.01, Percentile: 0.5},
			CWEs:        []sbomkit.CWE{{ID: "CWE-400", Name: "Uncontrolled Resource Consumption"}},
			PublishedAt: &published,
			UpdatedAt:   &published,
			Permalink:   "https://github.com/advisories/" + ghsa,
		},
		VulnerableVersionRange: vulnerableRange,
	}
}

// GenVulnerabilities creates n distinct advisories for the named package, all
// matching every version below 99.0.0.
func GenVulnerabilities(name string, n int) []sbomkit.SecurityVulnerability {
	out := make([]sbomkit.SecurityVulnerability, n)
	for i := range out {
		out[i] = Vulnerability(fmt.Sprintf("GHSA-%04d-xxxx-xxxx", i), name, "< 99.0.0", sbomkit.Moderate)
	}
	return out
}
