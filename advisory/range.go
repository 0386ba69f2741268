package advisory

import (
	"strings"

	"github.com/Masterminds/semver"
)

// MatchesRange reports whether version satisfies every clause of the
// comma-separated range expression, e.g. ">= 1.0.0, < 2.0.0".
//
// An empty range or version never matches, nor does a version or clause that
// cannot be parsed.
func MatchesRange(rangeExpr, version string) bool {
	rangeExpr = strings.TrimSpace(rangeExpr)
	version = strings.TrimSpace(version)
	if rangeExpr == "" || version == "" {
		return false
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	n := 0
	for _, clause := range strings.Split(rangeExpr, ",") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		if !matchClause(clause, v) {
			return false
		}
		n++
	}
	return n > 0
}

// Ops are ordered so that two-character operators are tried first.
var ops = []string{">=", "<=", "!=", "==", ">", "<", "="}

// MatchClause evaluates a single "<op> <version>" clause. Plain comparisons
// use [semver.Version.Compare], so prerelease installs compare normally.
// Other clause forms ("~1.2", "^1.0") go to the constraint parser.
func matchClause(clause string, v *semver.Version) bool {
	op := "="
	rest := clause
	for _, o := range ops {
		if r, ok := strings.CutPrefix(clause, o); ok {
			op, rest = o, r
			break
		}
	}
	bound, err := semver.NewVersion(strings.TrimSpace(rest))
	if err != nil {
		c, err := semver.NewConstraint(strings.Join(strings.Fields(clause), ""))
		if err != nil {
			return false
		}
		return c.Check(v)
	}
	cmp := v.Compare(bound)
	switch op {
	case ">=":
		return cmp >= 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case "<":
		return cmp < 0
	case "!=":
		return cmp != 0
	default:
		return cmp == 0
	}
}
