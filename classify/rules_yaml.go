package classify

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chromago/unicorn/format"
)

// ruleYAML is the on-disk spelling of one rule.
type ruleYAML struct {
	Fragment string `yaml:"fragment"`
	Class    string `yaml:"class"`
}

var classNames = map[string]format.CurveClass{
	"uv":           format.ClassUV,
	"conductivity": format.ClassConductivity,
	"ph":           format.ClassPH,
	"pressure":     format.ClassPressure,
	"gradient":     format.ClassGradient,
	"fraction":     format.ClassFraction,
	"other":        format.ClassOther,
}

// LoadRules reads a rule table from YAML, so site-specific instrument naming
// conventions can be added without a code change. The expected shape:
//
//	rules:
//	  - fragment: "UV"
//	    class: uv
//	  - fragment: "Salt"
//	    class: conductivity
//
// Class names are matched case-insensitively against the canonical set
// {uv, conductivity, ph, pressure, gradient, fraction, other}.
func LoadRules(r io.Reader) ([]Rule, error) {
	var doc struct {
		Rules []ruleYAML `yaml:"rules"`
	}

	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode rule table: %w", err)
	}

	rules := make([]Rule, 0, len(doc.Rules))
	for i, raw := range doc.Rules {
		if raw.Fragment == "" {
			return nil, fmt.Errorf("rule %d: empty fragment", i)
		}

		class, ok := classNames[strings.ToLower(raw.Class)]
		if !ok {
			return nil, fmt.Errorf("rule %d: unknown class %q", i, raw.Class)
		}

		rules = append(rules, Rule{Fragment: raw.Fragment, Class: class})
	}

	return rules, nil
}
