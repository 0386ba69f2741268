package license

import (
	"strings"

	"github.com/quay/sbomkit"
)

// AssessExpression classifies an SPDX license expression.
//
// An OR expression takes the least risky of its options and an AND expression
// takes the riskiest of its terms. Exceptions named with WITH do not change
// the assessment. NOASSERTION, NONE, and an empty expression are Unknown, as
// is an expression that cannot be parsed.
//
// Unknown terms rank below High and above Medium when combined with AND, and
// are only chosen by OR when no option is known.
func AssessExpression(expr string) Risk {
	if !sbomkit.IsSet(strings.TrimSpace(expr)) {
		return Risk{Severity: Unknown, Reasons: []string{ReasonNoAssertion}}
	}
	p := parser{toks: tokenize(expr)}
	r, ok := p.or()
	if !ok || p.pos != len(p.toks) {
		return Risk{Severity: Unknown, Reasons: []string{ReasonInvalid}}
	}
	return r
}

func tokenize(expr string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() != 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, c := range expr {
		switch c {
		case '(', ')':
			flush()
			toks = append(toks, string(c))
		case ' ', '\t', '\n', '\r':
			flush()
		default:
			cur.WriteRune(c)
		}
	}
	flush()
	return toks
}

// parser is a recursive descent parser over the expression grammar:
//
//	or   = and { "OR" and }
//	and  = with { "AND" with }
//	with = atom [ "WITH" id ]
//	atom = id | "(" or ")"
type parser struct {
	toks []string
	pos  int
}

func (p *parser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *parser) accept(op string) bool {
	if strings.EqualFold(p.peek(), op) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) or() (Risk, bool) {
	r, ok := p.and()
	if !ok {
		return r, false
	}
	for p.accept("OR") {
		n, ok := p.and()
		if !ok {
			return n, false
		}
		if orRank(n.Severity) < orRank(r.Severity) {
			r = n
		}
	}
	return r, true
}

func (p *parser) and() (Risk, bool) {
	r, ok := p.with()
	if !ok {
		return r, false
	}
	for p.accept("AND") {
		n, ok := p.with()
		if !ok {
			return n, false
		}
		if andRank(n.Severity) > andRank(r.Severity) {
			r.Severity = n.Severity
		}
		for _, reason := range n.Reasons {
			r.Reasons = appendReason(r.Reasons, reason)
		}
	}
	return r, true
}

func (p *parser) with() (Risk, bool) {
	r, ok := p.atom()
	if !ok {
		return r, false
	}
	if p.accept("WITH") {
		if !isID(p.peek()) {
			return Risk{}, false
		}
		p.pos++
	}
	return r, true
}

func (p *parser) atom() (Risk, bool) {
	if p.accept("(") {
		r, ok := p.or()
		if !ok || !p.accept(")") {
			return Risk{}, false
		}
		return r, true
	}
	tok := p.peek()
	if !isID(tok) {
		return Risk{}, false
	}
	p.pos++
	return AssessRisk(tok), true
}

func isID(tok string) bool {
	switch strings.ToUpper(tok) {
	case "", "(", ")", "AND", "OR", "WITH":
		return false
	}
	return true
}

func orRank(s Severity) int {
	if s == Unknown {
		return int(High) + 1
	}
	return int(s)
}

func andRank(s Severity) int {
	switch s {
	case Unknown:
		return int(Medium) + 1
	case High:
		return int(Medium) + 2
	}
	return int(s)
}
