// Package spdx converts between SPDX JSON documents and [sbomkit.Document].
package spdx

import (
	"strings"

	v2common "github.com/spdx/tools-golang/spdx/v2/common"

	"github.com/quay/sbomkit"
)

// Format describes the data format for the SPDX document.
type Format string

const JSONFormat Format = "json"

const (
	idPrefix     = "SPDXRef-"
	docRefPrefix = "DocumentRef-"
)

// ElementID renders a tools-golang element id in its wire form.
func elementID(id v2common.ElementID) string {
	if id == "" {
		return ""
	}
	return idPrefix + string(id)
}

// DocElementID renders a possibly document-qualified element id in its wire
// form: "NONE", "SPDXRef-x", or "DocumentRef-d:SPDXRef-x".
func docElementID(id v2common.DocElementID) string {
	if id.SpecialID != "" {
		return id.SpecialID
	}
	s := elementID(id.ElementRefID)
	if id.DocumentRefID != "" {
		s = docRefPrefix + string(id.DocumentRefID) + ":" + s
	}
	return s
}

// ToElementID is the inverse of elementID.
func toElementID(s string) v2common.ElementID {
	return v2common.ElementID(strings.TrimPrefix(s, idPrefix))
}

// ToDocElementID is the inverse of docElementID.
func toDocElementID(s string) v2common.DocElementID {
	if sbomkit.EqualConst(s, sbomkit.None) || sbomkit.EqualConst(s, sbomkit.NoAssertion) {
		return v2common.DocElementID{SpecialID: strings.ToUpper(s)}
	}
	var doc string
	if d, elem, ok := strings.Cut(s, ":"); ok && strings.HasPrefix(d, docRefPrefix) {
		doc = strings.TrimPrefix(d, docRefPrefix)
		s = elem
	}
	return v2common.MakeDocElementID(doc, strings.TrimPrefix(s, idPrefix))
}
