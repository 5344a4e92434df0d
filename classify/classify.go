// Package classify maps raw declared curve names to canonical categories and
// filters fraction labels.
//
// Classification is inherently heuristic: instruments name curves "UV 1_280",
// "Cond", "PreC pressure", "Conc B" and so on. The mapping is therefore an
// explicit ordered rule table rather than branching logic, so a new
// instrument vocabulary is an additive table change. The whole package is
// pure: no I/O, deterministic for a given input.
package classify

import (
	"strings"

	"github.com/chromago/unicorn/curve"
	"github.com/chromago/unicorn/format"
)

// Rule maps a case-insensitive name fragment to a canonical class. Rules are
// evaluated in table order; the first matching fragment wins.
type Rule struct {
	Fragment string
	Class    format.CurveClass
}

// DefaultRules is the built-in vocabulary covering UNICORN 6/7 naming.
// Order matters: the bare "Pre" fragment (PreC pressure, DeltaC pressure rigs
// label the precolumn sensor without the word "pressure") sits last so it
// cannot shadow more specific fragments.
func DefaultRules() []Rule {
	return []Rule{
		{Fragment: "UV", Class: format.ClassUV},
		{Fragment: "Cond", Class: format.ClassConductivity},
		{Fragment: "pH", Class: format.ClassPH},
		{Fragment: "Pressure", Class: format.ClassPressure},
		{Fragment: "Conc", Class: format.ClassGradient},
		{Fragment: "Gradient", Class: format.ClassGradient},
		{Fragment: "Fraction", Class: format.ClassFraction},
		{Fragment: "Pre", Class: format.ClassPressure},
	}
}

// Classifier assigns canonical classes by substring matching against its rule
// table.
type Classifier struct {
	rules []Rule
}

// New creates a classifier with the given rule table, falling back to
// DefaultRules when none are supplied.
func New(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	return &Classifier{rules: rules}
}

// Classify maps a raw declared name to its canonical class. Unmatched names
// classify as ClassOther and are retained for optional display.
func (c *Classifier) Classify(rawName string) format.CurveClass {
	lower := strings.ToLower(rawName)
	for _, rule := range c.rules {
		if strings.Contains(lower, strings.ToLower(rule.Fragment)) {
			return rule.Class
		}
	}

	return format.ClassOther
}

// Apply classifies every curve in place and returns the slice for chaining.
func (c *Classifier) Apply(curves []curve.Curve) []curve.Curve {
	for i := range curves {
		curves[i].Class = c.Classify(curves[i].RawName)
	}

	return curves
}

// AcceptFractionLabel reports whether a fraction label denotes a real
// collected fraction: the label must be non-empty and consist solely of
// ASCII digits. No sign, decimal point, letters, or spaces — "12" and "0"
// pass; "Waste", "Inject", "Out 1", "1A" and "" do not.
func AcceptFractionLabel(label string) bool {
	if label == "" {
		return false
	}

	for i := 0; i < len(label); i++ {
		if label[i] < '0' || label[i] > '9' {
			return false
		}
	}

	return true
}

// Fractions converts the raw event list into fraction markers, computing the
// accepted flag once so it is never re-derived downstream. Events from
// non-fraction curves are passed through with Accepted=false.
func (c *Classifier) Fractions(events []curve.Event) []curve.FractionMarker {
	markers := make([]curve.FractionMarker, 0, len(events))
	for _, ev := range events {
		accepted := c.Classify(ev.Curve) == format.ClassFraction && AcceptFractionLabel(ev.Label)
		markers = append(markers, curve.FractionMarker{
			Label:    ev.Label,
			X:        ev.X,
			Accepted: accepted,
		})
	}

	return markers
}

// Accepted filters markers down to the accepted set.
func Accepted(markers []curve.FractionMarker) []curve.FractionMarker {
	var accepted []curve.FractionMarker
	for _, m := range markers {
		if m.Accepted {
			accepted = append(accepted, m)
		}
	}

	return accepted
}
