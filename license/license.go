// Package license classifies SPDX license identifiers and expressions by the
// obligations they place on a distributor.
//
// The license table is embedded and uses the choosealicense.com vocabulary for
// permissions, conditions and limitations.
package license

import (
	_ "embed" // embed the license table
	"encoding/json"
	"slices"
	"strings"
	"sync"
)

//go:embed licenses.json
var licensesJSON []byte

// Rule tags referenced by the assessor.
const (
	CommercialUse      = "commercial-use"
	DiscloseSource     = "disclose-source"
	NetworkUseDisclose = "network-use-disclose"
)

// License is an entry in the static license table.
type License struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Permissions []string `json:"permissions"`
	Conditions  []string `json:"conditions"`
	Limitations []string `json:"limitations"`
}

// Permits reports whether the license grants the named permission.
func (l *License) Permits(tag string) bool { return slices.Contains(l.Permissions, tag) }

// Requires reports whether the license imposes the named condition.
func (l *License) Requires(tag string) bool { return slices.Contains(l.Conditions, tag) }

// Rule describes a permission, condition, or limitation tag.
type Rule struct {
	Tag         string `json:"tag"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type table struct {
	Rules struct {
		Permissions []Rule `json:"permissions"`
		Conditions  []Rule `json:"conditions"`
		Limitations []Rule `json:"limitations"`
	} `json:"rules"`
	Licenses []License `json:"licenses"`

	byKey      map[string]int
	conditions map[string]Rule
}

var load = sync.OnceValue(func() *table {
	var t table
	if err := json.Unmarshal(licensesJSON, &t); err != nil {
		panic(err)
	}
	t.byKey = make(map[string]int, len(t.Licenses))
	for i := range t.Licenses {
		t.byKey[key(t.Licenses[i].ID)] = i
	}
	t.conditions = make(map[string]Rule, len(t.Rules.Conditions))
	for _, r := range t.Rules.Conditions {
		t.conditions[r.Tag] = r
	}
	return &t
})

// key normalizes a license identifier for table lookups.
//
// Matching is case-insensitive, and the "-only", "-or-later", and "+"
// version suffixes are ignored, so "GPL-3.0-or-later" and "gpl-3.0" share a
// key.
func key(id string) string {
	k := strings.ToLower(strings.TrimSpace(id))
	for _, suf := range []string{"-or-later", "-only", "+"} {
		if s, ok := strings.CutSuffix(k, suf); ok {
			k = s
			break
		}
	}
	return k
}

// Lookup returns the table entry for the license identifier.
func Lookup(id string) (License, bool) {
	t := load()
	i, ok := t.byKey[key(id)]
	if !ok {
		return License{}, false
	}
	return t.Licenses[i], true
}

// Condition returns the description of the named condition tag.
func Condition(tag string) (Rule, bool) {
	r, ok := load().conditions[tag]
	return r, ok
}

// All returns a copy of every license in the table, in table order.
func All() []License {
	return slices.Clone(load().Licenses)
}
