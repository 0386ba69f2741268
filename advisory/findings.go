package advisory

import (
	"regexp"
	"strings"

	"github.com/quay/sbomkit"
)

// LegacyAdvisory is the information recoverable from an advisory comment
// written before full records were embedded in url references.
//
// The grammar is:
//
//	comment = "[" severity "]" summary ";" rest
//
// where any GHSA or CVE identifiers may appear anywhere in rest.
type LegacyAdvisory struct {
	Severity sbomkit.Severity
	Summary  string
	IDs      []string
}

var (
	legacyComment = regexp.MustCompile(`^\s*\[\s*([A-Za-z]+)\s*\]\s*([^;]*?)\s*;(.*)$`)
	ghsaID        = regexp.MustCompile(`(?i)\bGHSA(?:-[23456789cfghjmpqrvwx]{4}){3}\b`)
	cveID         = regexp.MustCompile(`(?i)\bCVE-\d{4}-\d{4,}\b`)
)

// ParseLegacyComment parses an advisory comment. The boolean reports whether
// the comment matched the grammar at all; an unrecognized severity is
// reported as [sbomkit.Unknown].
func ParseLegacyComment(comment string) (LegacyAdvisory, bool) {
	m := legacyComment.FindStringSubmatch(comment)
	if m == nil {
		return LegacyAdvisory{}, false
	}
	sev, err := sbomkit.ParseSeverity(m[1])
	if err != nil {
		sev = sbomkit.Unknown
	}
	out := LegacyAdvisory{
		Severity: sev,
		Summary:  m[2],
	}
	for _, re := range []*regexp.Regexp{ghsaID, cveID} {
		for _, id := range re.FindAllString(m[3], -1) {
			id = strings.ToUpper(id)
			if strings.HasPrefix(id, "GHSA-") {
				id = "GHSA-" + strings.ToLower(id[5:])
			}
			out.IDs = appendUnique(out.IDs, id)
		}
	}
	return out, true
}

// Finding is one advisory recorded on a package.
type Finding struct {
	ID        string
	Severity  sbomkit.Severity
	Summary   string
	Permalink string
	// Vulnerability is the full record. It is nil for findings recovered
	// from legacy comments.
	Vulnerability *sbomkit.SecurityVulnerability
}

// PackageVulnerabilities reads back the advisories recorded on pkg.
//
// Full records are preferred; advisory references without a corresponding
// record fall back to their comments. References that can't be decoded are
// skipped.
func PackageVulnerabilities(pkg *sbomkit.Package) []Finding {
	var out []Finding
	covered := make(map[string]struct{})
	for i := range pkg.ExternalRefs {
		ref := &pkg.ExternalRefs[i]
		if ref.Kind() != sbomkit.RefKindVulnerability {
			continue
		}
		v, err := DecodeVulnerabilityRef(ref)
		if err != nil {
			continue
		}
		f := Finding{
			ID:            v.Advisory.PrimaryID(),
			Severity:      v.Advisory.Severity,
			Summary:       v.Advisory.Summary,
			Permalink:     v.Advisory.Permalink,
			Vulnerability: v,
		}
		if _, ok := covered[strings.ToUpper(f.ID)]; ok && f.ID != "" {
			continue
		}
		for _, id := range v.Advisory.Identifiers {
			covered[strings.ToUpper(id.Value)] = struct{}{}
		}
		covered[strings.ToUpper(f.ID)] = struct{}{}
		if f.Permalink != "" {
			covered[f.Permalink] = struct{}{}
		}
		out = append(out, f)
	}

	for i := range pkg.ExternalRefs {
		ref := &pkg.ExternalRefs[i]
		switch ref.Kind() {
		case sbomkit.RefKindAdvisory, sbomkit.RefKindSecurity:
		default:
			continue
		}
		if _, ok := covered[ref.Locator]; ok {
			continue
		}
		l, ok := ParseLegacyComment(ref.Comment)
		if !ok {
			continue
		}
		f := Finding{
			Severity: l.Severity,
			Summary:  l.Summary,
		}
		if len(l.IDs) != 0 {
			f.ID = l.IDs[0]
		}
		if strings.HasPrefix(ref.Locator, "http") {
			f.Permalink = ref.Locator
		}
		if _, ok := covered[strings.ToUpper(f.ID)]; ok && f.ID != "" {
			continue
		}
		if f.ID != "" {
			covered[strings.ToUpper(f.ID)] = struct{}{}
		}
		if f.Permalink != "" {
			covered[f.Permalink] = struct{}{}
		}
		out = append(out, f)
	}
	return out
}

func appendUnique(s []string, v string) []string {
	for _, e := range s {
		if e == v {
			return s
		}
	}
	return append(s, v)
}
