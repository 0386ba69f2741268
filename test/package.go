package test

import (
	"fmt"
	"strings"

	"github.com/quay/sbomkit"
)

// GenUniquePackages creates n packages with distinct ids, names, and npm
// package URLs. Ids are "SPDXRef-Package-<i>".
func GenUniquePackages(n int) []sbomkit.Package {
	pkgs := make([]sbomkit.Package, 0, n)
	for i := range n {
		pkgs = append(pkgs, NPMPackage(fmt.Sprintf("SPDXRef-Package-%d", i), fmt.Sprintf("package-%d", i), "1.0.0"))
	}
	return pkgs
}

// NPMPackage returns a package with a PACKAGE-MANAGER purl reference for the
// npm ecosystem.
func NPMPackage(id, name, version string) sbomkit.Package {
	return PurlPackage(id, name, version, fmt.Sprintf("pkg:npm/%s@%s", name, version))
}

// PurlPackage returns a package with the provided purl locator.
func PurlPackage(id, name, version, purl string) sbomkit.Package {
	return sbomkit.Package{
		ID:               id,
		Name:             name,
		Version:          version,
		LicenseDeclared:  sbomkit.NoAssertion,
		LicenseConcluded: sbomkit.NoAssertion,
		DownloadLocation: sbomkit.NoAssertion,
		CopyrightText:    sbomkit.NoAssertion,
		ExternalRefs: []sbomkit.ExternalRef{
			{
				Category: sbomkit.CategoryPackageManager,
				Type:     sbomkit.RefTypePurl,
				Locator:  purl,
			},
		},
	}
}

// Graph builds a document from an edge list.
//
// Each edge is written "A>B" for "SPDXRef-A DEPENDS_ON SPDXRef-B". Every
// mentioned id gets a package unless it appears in dangling. Roots become the
// document's describes list.
func Graph(roots []string, edges []string, dangling ...string) *sbomkit.Document {
	skip := make(map[string]struct{}, len(dangling))
	for _, d := range dangling {
		skip[d] = struct{}{}
	}
	doc := &sbomkit.Document{
		SPDXID:      sbomkit.DocumentID,
		Name:        "graph",
		SPDXVersion: "SPDX-2.3",
	}
	seen := make(map[string]struct{})
	add := func(name string) string {
		id := "SPDXRef-" + name
		if _, ok := seen[id]; ok {
			return id
		}
		seen[id] = struct{}{}
		if _, ok := skip[name]; !ok {
			doc.Packages = append(doc.Packages, NPMPackage(id, name, "1.0.0"))
		}
		return id
	}
	for _, r := range roots {
		doc.DocumentDescribes = append(doc.DocumentDescribes, add(r))
	}
	for _, e := range edges {
		a, b, ok := strings.Cut(e, ">")
		if !ok {
			panic(fmt.Sprintf("bad edge %q", e))
		}
		doc.Relationships = append(doc.Relationships, sbomkit.Relationship{
			Element: add(a),
			Type:    sbomkit.RelDependsOn,
			Related: add(b),
		})
	}
	return doc
}
