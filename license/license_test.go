package license

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/quay/sbomkit"
)

func TestTable(t *testing.T) {
	seen := make(map[string]string)
	for _, l := range All() {
		k := key(l.ID)
		if prev, ok := seen[k]; ok {
			t.Errorf("%s: key %q also used by %s", l.ID, k, prev)
		}
		seen[k] = l.ID
		if l.Name == "" || l.URL == "" {
			t.Errorf("%s: missing name or url", l.ID)
		}
		for _, c := range l.Conditions {
			if _, ok := Condition(c); !ok {
				t.Errorf("%s: undescribed condition %q", l.ID, c)
			}
		}
	}
}

func TestLookup(t *testing.T) {
	tt := []struct {
		In   string
		Want string
		OK   bool
	}{
		{"MIT", "MIT", true},
		{"mit", "MIT", true},
		{" Apache-2.0 ", "Apache-2.0", true},
		{"GPL-3.0-only", "GPL-3.0", true},
		{"GPL-3.0-or-later", "GPL-3.0", true},
		{"GPL-2.0+", "GPL-2.0", true},
		{"lgpl-2.1-only", "LGPL-2.1", true},
		{"LicenseRef-Proprietary", "", false},
		{"", "", false},
	}
	for _, tc := range tt {
		l, ok := Lookup(tc.In)
		if ok != tc.OK {
			t.Errorf("%q: ok: got: %v, want: %v", tc.In, ok, tc.OK)
			continue
		}
		if got := l.ID; got != tc.Want {
			t.Errorf("%q: got: %q, want: %q", tc.In, got, tc.Want)
		}
	}
}

func TestAssessRisk(t *testing.T) {
	disclose, _ := Condition(DiscloseSource)
	network, _ := Condition(NetworkUseDisclose)
	tt := []struct {
		ID   string
		Want Risk
	}{
		{"MIT", Risk{Severity: Low}},
		{"Apache-2.0", Risk{Severity: Low}},
		{"BSD-3-Clause", Risk{Severity: Low}},
		{"CC-BY-NC-4.0", Risk{Severity: Medium, Reasons: []string{ReasonNoCommercial}}},
		{"CC-BY-NC-SA-4.0", Risk{Severity: Medium, Reasons: []string{ReasonNoCommercial}}},
		{"GPL-3.0", Risk{Severity: High, Reasons: []string{disclose.Description}}},
		{"GPL-2.0-only", Risk{Severity: High, Reasons: []string{disclose.Description}}},
		{"MPL-2.0", Risk{Severity: High, Reasons: []string{disclose.Description}}},
		{"AGPL-3.0", Risk{Severity: High, Reasons: []string{disclose.Description, network.Description}}},
		{"Bogus-1.0", Risk{Severity: Unknown, Reasons: []string{ReasonNotFound}}},
	}
	for _, tc := range tt {
		t.Run(tc.ID, func(t *testing.T) {
			got := AssessRisk(tc.ID)
			if !cmp.Equal(got, tc.Want) {
				t.Error(cmp.Diff(got, tc.Want))
			}
		})
	}
}

func TestAssessExpression(t *testing.T) {
	disclose, _ := Condition(DiscloseSource)
	tt := []struct {
		Name string
		Expr string
		Want Risk
	}{
		{"Single", "MIT", Risk{Severity: Low}},
		{"OrPicksLowest", "GPL-2.0-only OR MIT", Risk{Severity: Low}},
		{"AndPicksHighest", "MIT AND GPL-3.0-or-later", Risk{Severity: High, Reasons: []string{disclose.Description}}},
		{"LowercaseOps", "mit and cc-by-nc-4.0", Risk{Severity: Medium, Reasons: []string{ReasonNoCommercial}}},
		{"With", "GPL-2.0-or-later WITH Classpath-exception-2.0", Risk{Severity: High, Reasons: []string{disclose.Description}}},
		{"Parens", "(MIT OR GPL-3.0) AND Apache-2.0", Risk{Severity: Low}},
		{"NestedParens", "((GPL-3.0))", Risk{Severity: High, Reasons: []string{disclose.Description}}},
		{"OrSkipsUnknown", "LicenseRef-Foo OR GPL-3.0", Risk{Severity: High, Reasons: []string{disclose.Description}}},
		{"AndUnknown", "MIT AND LicenseRef-Foo", Risk{Severity: Unknown, Reasons: []string{ReasonNotFound}}},
		{"AndUnknownHigh", "LicenseRef-Foo AND GPL-3.0", Risk{Severity: High, Reasons: []string{ReasonNotFound, disclose.Description}}},
		{"NoAssertion", "NOASSERTION", Risk{Severity: Unknown, Reasons: []string{ReasonNoAssertion}}},
		{"None", "NONE", Risk{Severity: Unknown, Reasons: []string{ReasonNoAssertion}}},
		{"Empty", "  ", Risk{Severity: Unknown, Reasons: []string{ReasonNoAssertion}}},
		{"Unbalanced", "(MIT OR GPL-3.0", Risk{Severity: Unknown, Reasons: []string{ReasonInvalid}}},
		{"Dangling", "MIT AND", Risk{Severity: Unknown, Reasons: []string{ReasonInvalid}}},
		{"Trailing", "MIT GPL-3.0", Risk{Severity: Unknown, Reasons: []string{ReasonInvalid}}},
	}
	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			got := AssessExpression(tc.Expr)
			if !cmp.Equal(got, tc.Want) {
				t.Error(cmp.Diff(got, tc.Want))
			}
		})
	}
}

func TestAssessPackage(t *testing.T) {
	p := sbomkit.Package{
		LicenseConcluded: "NOASSERTION",
		LicenseDeclared:  "AGPL-3.0-only",
	}
	if got, want := AssessPackage(&p).Severity, High; got != want {
		t.Errorf("got: %v, want: %v", got, want)
	}
	p.LicenseConcluded = "MIT"
	if got, want := AssessPackage(&p).Severity, Low; got != want {
		t.Errorf("got: %v, want: %v", got, want)
	}
}

func TestSeverityText(t *testing.T) {
	for _, s := range []Severity{Unknown, Low, Medium, High} {
		b, err := s.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got Severity
		if err := got.UnmarshalText(b); err != nil {
			t.Fatal(err)
		}
		if got != s {
			t.Errorf("got: %v, want: %v", got, s)
		}
	}
	var s Severity
	if err := s.UnmarshalText([]byte("spicy")); err == nil {
		t.Error("expected error")
	}
}
