package advisory

import "testing"

func TestMatchesRange(t *testing.T) {
	tt := []struct {
		Range   string
		Version string
		Want    bool
	}{
		{">=1.0.0,<2.0.0", "1.5.0", true},
		{">=1.0.0,<2.0.0", "2.0.0", false},
		{">=1.0.0,<2.0.0", "0.9.0", false},
		{">= 1.0.0, < 2.0.0", "1.0.0", true},
		{"< 4.17.21", "4.17.20", true},
		{"< 4.17.21", "4.17.21", false},
		{"<= 1.2.3", "1.2.3", true},
		{"> 1.2.3", "1.2.3", false},
		{"= 1.2.3", "1.2.3", true},
		{"= 1.2.3", "1.2.4", false},
		{"1.2.3", "1.2.3", true},
		{"!= 1.2.3", "1.2.4", true},
		{"< 2.0.0", "v1.4.0", true},
		{"< 2.0.0", "2.0.0-rc.1", true},
		{">= 2.0.0", "2.0.0-rc.1", false},
		{"~1.2.0", "1.2.9", true},
		{"~1.2.0", "1.3.0", false},
		{"< 2.0.0", "", false},
		{"", "1.0.0", false},
		{" , ", "1.0.0", false},
		{"< 2.0.0", "not-a-version", false},
		{"< banana", "1.0.0", false},
	}
	for _, tc := range tt {
		if got := MatchesRange(tc.Range, tc.Version); got != tc.Want {
			t.Errorf("%q in %q: got: %v, want: %v", tc.Version, tc.Range, got, tc.Want)
		}
	}
}
