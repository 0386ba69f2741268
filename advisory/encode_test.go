package advisory

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/quay/sbomkit"
	"github.com/quay/sbomkit/test"
)

func TestEncodeRoundTrip(t *testing.T) {
	v := test.Vulnerability("GHSA-35jh-r3h4-6jhm", "lodash", "< 4.17.21", sbomkit.High)
	v.Ecosystem = "NPM"
	v.Package.ID = "SPDXRef-Package-lodash"
	v.Package.Version = "4.17.20"
	v.FirstPatchedVersion = "4.17.21"

	adv, vuln, err := EncodeRefs(&v)
	if err != nil {
		t.Fatal(err)
	}
	wantAdv := sbomkit.ExternalRef{
		Category: sbomkit.CategorySecurity,
		Type:     sbomkit.RefTypeAdvisory,
		Locator:  "https://github.com/advisories/GHSA-35jh-r3h4-6jhm",
		Comment:  "[HIGH] Issue GHSA-35jh-r3h4-6jhm in lodash; Affects lodash v4.17.20",
	}
	if !cmp.Equal(adv, wantAdv) {
		t.Error(cmp.Diff(adv, wantAdv))
	}
	if got, want := vuln.Kind(), sbomkit.RefKindVulnerability; got != want {
		t.Errorf("kind: got: %v, want: %v", got, want)
	}
	if got, want := vuln.Comment, "GHSA-35jh-r3h4-6jhm"; got != want {
		t.Errorf("comment: got: %q, want: %q", got, want)
	}

	got, err := DecodeVulnerabilityRef(&vuln)
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(got, &v) {
		t.Error(cmp.Diff(got, &v))
	}
}

func TestEncodePermalinkFallback(t *testing.T) {
	v := test.Vulnerability("GHSA-35jh-r3h4-6jhm", "lodash", "< 4.17.21", sbomkit.Low)
	v.Advisory.Permalink = ""
	adv, _, err := EncodeRefs(&v)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := adv.Locator, "https://github.com/advisories/GHSA-35jh-r3h4-6jhm"; got != want {
		t.Errorf("got: %q, want: %q", got, want)
	}
}

func TestDecodeInvalid(t *testing.T) {
	tt := []struct {
		Name string
		Ref  sbomkit.ExternalRef
	}{
		{
			Name: "WrongType",
			Ref:  sbomkit.ExternalRef{Category: sbomkit.CategoryPackageManager, Type: sbomkit.RefTypePurl, Locator: "pkg:npm/x@1"},
		},
		{
			Name: "NotDataURI",
			Ref:  sbomkit.ExternalRef{Category: sbomkit.CategorySecurity, Type: sbomkit.RefTypeURL, Locator: "https://example.com"},
		},
		{
			Name: "BadBase64",
			Ref:  sbomkit.ExternalRef{Category: sbomkit.CategorySecurity, Type: sbomkit.RefTypeURL, Locator: sbomkit.DataURIPrefix + "!!!"},
		},
		{
			Name: "NotJSON",
			Ref: sbomkit.ExternalRef{
				Category: sbomkit.CategorySecurity,
				Type:     sbomkit.RefTypeURL,
				Locator:  sbomkit.DataURIPrefix + base64.StdEncoding.EncodeToString([]byte("hello")),
			},
		},
	}
	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := DecodeVulnerabilityRef(&tc.Ref)
			if !errors.Is(err, sbomkit.ErrInvalid) {
				t.Errorf("got: %v, want: %v", err, sbomkit.ErrInvalid)
			}
		})
	}
}

func TestParseLegacyComment(t *testing.T) {
	tt := []struct {
		Name    string
		Comment string
		Want    LegacyAdvisory
		OK      bool
	}{
		{
			Name:    "Legacy",
			Comment: "[CRITICAL] Prototype Pollution in minimist; GHSA-xvch-5gv4-984h CVE-2021-44906",
			Want: LegacyAdvisory{
				Severity: sbomkit.Critical,
				Summary:  "Prototype Pollution in minimist",
				IDs:      []string{"GHSA-xvch-5gv4-984h", "CVE-2021-44906"},
			},
			OK: true,
		},
		{
			Name:    "Current",
			Comment: "[MODERATE] ReDoS in semver; Affects semver v5.7.1",
			Want: LegacyAdvisory{
				Severity: sbomkit.Moderate,
				Summary:  "ReDoS in semver",
			},
			OK: true,
		},
		{
			Name:    "UnknownSeverity",
			Comment: "[SPICY] Something; https://github.com/advisories/GHSA-c2qf-rxjj-qqgw",
			Want: LegacyAdvisory{
				Severity: sbomkit.Unknown,
				Summary:  "Something",
				IDs:      []string{"GHSA-c2qf-rxjj-qqgw"},
			},
			OK: true,
		},
		{
			Name:    "NoBrackets",
			Comment: "HIGH Something; CVE-2020-0001",
		},
		{
			Name:    "NoSemicolon",
			Comment: "[HIGH] Something",
		},
	}
	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			got, ok := ParseLegacyComment(tc.Comment)
			if ok != tc.OK {
				t.Fatalf("ok: got: %v, want: %v", ok, tc.OK)
			}
			if !cmp.Equal(got, tc.Want) {
				t.Error(cmp.Diff(got, tc.Want))
			}
		})
	}
}

func TestPackageVulnerabilities(t *testing.T) {
	full := test.Vulnerability("GHSA-35jh-r3h4-6jhm", "lodash", "< 4.17.21", sbomkit.High)
	adv, vuln, err := EncodeRefs(&full)
	if err != nil {
		t.Fatal(err)
	}
	pkg := test.NPMPackage("SPDXRef-Package-lodash", "lodash", "4.17.20")
	pkg.ExternalRefs = append(pkg.ExternalRefs,
		adv,
		vuln,
		sbomkit.ExternalRef{
			Category: "SECURITY",
			Type:     "advisory",
			Locator:  "https://github.com/advisories/GHSA-p6mc-m468-83gw",
			Comment:  "[HIGH] Prototype Pollution in lodash; GHSA-p6mc-m468-83gw CVE-2020-8203",
		},
		sbomkit.ExternalRef{
			Category: sbomkit.CategorySecurity,
			Type:     sbomkit.RefTypeURL,
			Locator:  sbomkit.DataURIPrefix + "!!!",
		},
	)

	got := PackageVulnerabilities(&pkg)
	if len(got) != 2 {
		t.Fatalf("findings: got: %d, want: 2 (%+v)", len(got), got)
	}
	if got[0].Vulnerability == nil || got[0].ID != "GHSA-35jh-r3h4-6jhm" {
		t.Errorf("first finding: got: %+v", got[0])
	}
	want := Finding{
		ID:        "GHSA-p6mc-m468-83gw",
		Severity:  sbomkit.High,
		Summary:   "Prototype Pollution in lodash",
		Permalink: "https://github.com/advisories/GHSA-p6mc-m468-83gw",
	}
	if !cmp.Equal(got[1], want) {
		t.Error(cmp.Diff(got[1], want))
	}
}
