// Package advisory enriches documents with security advisories.
//
// Packages are grouped by ecosystem using their package URLs, the advisory
// [Source] is queried once per distinct package name in bounded concurrent
// batches, and every advisory whose vulnerable range covers the installed
// version is written back to the package as a pair of SECURITY external
// references.
package advisory

import (
	"context"

	"github.com/quay/sbomkit"
)

// Source is an advisory database.
//
// Vulnerabilities returns the advisories recorded for the named package in
// the ecosystem, regardless of version. The returned values' Package.ID and
// Package.Version fields are not meaningful.
type Source interface {
	Vulnerabilities(ctx context.Context, ecosystem, name string) ([]sbomkit.SecurityVulnerability, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context, ecosystem, name string) ([]sbomkit.SecurityVulnerability, error)

// Vulnerabilities implements [Source].
func (f SourceFunc) Vulnerabilities(ctx context.Context, ecosystem, name string) ([]sbomkit.SecurityVulnerability, error) {
	return f(ctx, ecosystem, name)
}
