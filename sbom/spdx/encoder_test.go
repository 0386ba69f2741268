package spdx

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/quay/sbomkit"
	"github.com/quay/sbomkit/test"
)

func TestRoundTrip(t *testing.T) {
	ctx := test.Logging(t)
	want := &sbomkit.Document{
		SPDXID:      sbomkit.DocumentID,
		Name:        "App 2.0.0",
		Namespace:   "https://sbom.example.com/App/2.0.0/1234",
		SPDXVersion: "SPDX-2.3",
		DataLicense: "CC0-1.0",
		CreationInfo: sbomkit.CreationInfo{
			Created:  time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC).Format(time.RFC3339),
			Creators: []string{"Organization: Contoso", "Tool: sbomkit"},
		},
		DocumentDescribes: []string{"SPDXRef-RootPackage"},
		Packages: []sbomkit.Package{
			{
				ID:               "SPDXRef-RootPackage",
				Name:             "App",
				Version:          "2.0.0",
				LicenseDeclared:  "Apache-2.0",
				LicenseConcluded: "Apache-2.0",
				DownloadLocation: sbomkit.NoAssertion,
				CopyrightText:    sbomkit.NoAssertion,
				Supplier:         "Organization: Contoso",
				HasFiles:         []string{"SPDXRef-File-1"},
			},
			{
				ID:               "SPDXRef-Package-lodash",
				Name:             "lodash",
				Version:          "4.17.20",
				LicenseDeclared:  "MIT",
				LicenseConcluded: "MIT",
				DownloadLocation: "https://registry.npmjs.org/lodash/-/lodash-4.17.20.tgz",
				CopyrightText:    sbomkit.NoAssertion,
				ExternalRefs: []sbomkit.ExternalRef{
					{Category: sbomkit.CategoryPackageManager, Type: sbomkit.RefTypePurl, Locator: "pkg:npm/lodash@4.17.20"},
					{Category: sbomkit.CategorySecurity, Type: sbomkit.RefTypeAdvisory, Locator: "https://github.com/advisories/GHSA-35jh-r3h4-6jhm", Comment: "[HIGH] Command Injection in lodash; Affects lodash v4.17.20"},
				},
			},
		},
		Files: []sbomkit.File{
			{
				ID:                 "SPDXRef-File-1",
				Name:               "index.js",
				Checksums:          []sbomkit.Checksum{{Algorithm: "SHA1", Value: "da39a3ee5e6b4b0d3255bfef95601890afd80709"}},
				LicenseConcluded:   sbomkit.NoAssertion,
				LicenseInfoInFiles: []string{sbomkit.NoAssertion},
				CopyrightText:      sbomkit.NoAssertion,
			},
		},
		Relationships: []sbomkit.Relationship{
			{Element: "SPDXRef-RootPackage", Type: sbomkit.RelDependsOn, Related: "SPDXRef-Package-lodash"},
			{Element: "SPDXRef-RootPackage", Type: sbomkit.RelContains, Related: "SPDXRef-File-1"},
		},
	}

	var buf bytes.Buffer
	if err := NewDefaultEncoder(WithIndent("  ")).Encode(ctx, &buf, want); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\n  \"spdxVersion\"") {
		t.Errorf("output not indented:\n%s", buf.String())
	}
	got, err := NewDefaultDecoder().Decode(ctx, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(got, want) {
		t.Error(cmp.Diff(got, want))
	}
}

func TestEncodeDefaults(t *testing.T) {
	ctx := test.Logging(t)
	doc := &sbomkit.Document{
		Name: "bare",
		Packages: []sbomkit.Package{
			{ID: "SPDXRef-a", Name: "a"},
		},
	}
	var buf bytes.Buffer
	if err := NewDefaultEncoder().Encode(ctx, &buf, doc); err != nil {
		t.Fatal(err)
	}
	got, err := NewDefaultDecoder().Decode(ctx, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := got.SPDXVersion, "SPDX-2.3"; got != want {
		t.Errorf("version: got: %q, want: %q", got, want)
	}
	if got, want := got.SPDXID, sbomkit.DocumentID; got != want {
		t.Errorf("SPDXID: got: %q, want: %q", got, want)
	}
	if got, want := got.Packages[0].DownloadLocation, sbomkit.NoAssertion; got != want {
		t.Errorf("download location: got: %q, want: %q", got, want)
	}
}

func TestExternalDocumentRefs(t *testing.T) {
	ctx := test.Logging(t)
	want := []sbomkit.ExternalDocumentRef{
		{
			ID:       "DocumentRef-base-image",
			URI:      "https://sbom.example.com/base/1.0/5678",
			Checksum: sbomkit.Checksum{Algorithm: "SHA1", Value: "d6a770ba38583ed4bb4525bd96e50461655d2759"},
		},
	}
	doc := &sbomkit.Document{
		Name:                 "App 2.0.0",
		Namespace:            "https://sbom.example.com/App/2.0.0/1234",
		DocumentDescribes:    []string{"SPDXRef-RootPackage"},
		Packages:             []sbomkit.Package{test.NPMPackage("SPDXRef-RootPackage", "App", "2.0.0")},
		ExternalDocumentRefs: want,
	}

	var buf bytes.Buffer
	if err := NewDefaultEncoder().Encode(ctx, &buf, doc); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"DocumentRef-base-image"`) {
		t.Errorf("external document id not prefixed:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "DocumentRef-DocumentRef-") {
		t.Errorf("external document id prefixed twice:\n%s", buf.String())
	}
	got, err := NewDefaultDecoder().Decode(ctx, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(got.ExternalDocumentRefs, want) {
		t.Error(cmp.Diff(got.ExternalDocumentRefs, want))
	}
}
