package advisory

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quay/sbomkit"
)

// EncodeRefs renders a vulnerability as the pair of SECURITY external
// references written to an affected package.
//
// The advisory reference points at the permalink and carries a comment of
// the form "[<SEVERITY>] <summary>; Affects <name> v<version>". The url
// reference carries the whole record as base64 JSON in a data URI, with the
// primary advisory id as its comment.
func EncodeRefs(v *sbomkit.SecurityVulnerability) (advisoryRef, vulnRef sbomkit.ExternalRef, err error) {
	b, err := json.Marshal(v)
	if err != nil {
		return advisoryRef, vulnRef, &sbomkit.Error{
			Op:    "advisory.EncodeRefs",
			Kind:  sbomkit.ErrInternal,
			Inner: err,
		}
	}
	advisoryRef = sbomkit.ExternalRef{
		Category: sbomkit.CategorySecurity,
		Type:     sbomkit.RefTypeAdvisory,
		Locator:  permalink(&v.Advisory),
		Comment:  Comment(v),
	}
	vulnRef = sbomkit.ExternalRef{
		Category: sbomkit.CategorySecurity,
		Type:     sbomkit.RefTypeURL,
		Locator:  sbomkit.DataURIPrefix + base64.StdEncoding.EncodeToString(b),
		Comment:  v.Advisory.PrimaryID(),
	}
	return advisoryRef, vulnRef, nil
}

// Comment is the human-readable advisory reference comment for v.
func Comment(v *sbomkit.SecurityVulnerability) string {
	sev, _ := v.Advisory.Severity.MarshalText()
	return fmt.Sprintf("[%s] %s; Affects %s v%s", sev, v.Advisory.Summary, v.Package.Name, v.Package.Version)
}

func permalink(a *sbomkit.Advisory) string {
	if a.Permalink != "" {
		return a.Permalink
	}
	if id := a.PrimaryID(); strings.HasPrefix(id, "GHSA-") {
		return "https://github.com/advisories/" + id
	}
	return sbomkit.NoAssertion
}

// DecodeVulnerabilityRef is the inverse of the url half of [EncodeRefs].
//
// A reference that isn't a SECURITY/url data URI, or whose payload is not
// base64-encoded JSON, reports an error of kind [sbomkit.ErrInvalid].
func DecodeVulnerabilityRef(ref *sbomkit.ExternalRef) (*sbomkit.SecurityVulnerability, error) {
	const op = "advisory.DecodeVulnerabilityRef"
	if !ref.Is(sbomkit.CategorySecurity, sbomkit.RefTypeURL) {
		return nil, &sbomkit.Error{
			Op:      op,
			Kind:    sbomkit.ErrInvalid,
			Message: fmt.Sprintf("unexpected reference %s/%s", ref.Category, ref.Type),
		}
	}
	payload, ok := strings.CutPrefix(ref.Locator, sbomkit.DataURIPrefix)
	if !ok {
		return nil, &sbomkit.Error{
			Op:      op,
			Kind:    sbomkit.ErrInvalid,
			Message: "locator is not a JSON data URI",
		}
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &sbomkit.Error{
			Op:      op,
			Kind:    sbomkit.ErrInvalid,
			Message: "bad base64 payload",
			Inner:   err,
		}
	}
	var v sbomkit.SecurityVulnerability
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, &sbomkit.Error{
			Op:      op,
			Kind:    sbomkit.ErrInvalid,
			Message: "bad JSON payload",
			Inner:   err,
		}
	}
	return &v, nil
}
