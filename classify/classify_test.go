package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chromago/unicorn/curve"
	"github.com/chromago/unicorn/format"
)

func TestClassify(t *testing.T) {
	classifier := New(nil)

	tests := []struct {
		name string
		want format.CurveClass
	}{
		{"UV 1_280", format.ClassUV},
		{"UV 2_295", format.ClassUV},
		{"xUV cell path length", format.ClassUV},
		{"Cond", format.ClassConductivity},
		{"% Cond", format.ClassConductivity},
		{"Cond temp", format.ClassConductivity},
		{"pH", format.ClassPH},
		{"System pressure", format.ClassPressure},
		{"PreC pressure", format.ClassPressure},
		{"DeltaC pressure", format.ClassPressure},
		{"Conc B", format.ClassGradient},
		{"Gradient", format.ClassGradient},
		{"Fraction", format.ClassFraction},
		{"System flow", format.ClassOther},
		{"Run Log", format.ClassOther},
		{"", format.ClassOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, classifier.Classify(tt.name))
		})
	}
}

func TestApply(t *testing.T) {
	classifier := New(nil)
	curves := []curve.Curve{
		{RawName: "UV 1_280"},
		{RawName: "Cond"},
		{RawName: "System flow"},
	}

	classifier.Apply(curves)

	require.Equal(t, format.ClassUV, curves[0].Class)
	require.Equal(t, format.ClassConductivity, curves[1].Class)
	require.Equal(t, format.ClassOther, curves[2].Class)
}

func TestAcceptFractionLabel(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"12", true},
		{"0", true},
		{"007", true},
		{"Waste", false},
		{"Inject", false},
		{"Out 1", false},
		{"1A", false},
		{"-1", false},
		{"1.5", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run("label "+tt.label, func(t *testing.T) {
			require.Equal(t, tt.want, AcceptFractionLabel(tt.label))
		})
	}
}

func TestFractions(t *testing.T) {
	classifier := New(nil)
	events := []curve.Event{
		{Curve: "Fraction", Label: "1", X: 1.0},
		{Curve: "Fraction", Label: "Waste", X: 2.0},
		{Curve: "Fraction", Label: "2", X: 3.0},
		{Curve: "Injection", Label: "3", X: 4.0}, // numeric but not a fraction curve
	}

	markers := classifier.Fractions(events)
	require.Len(t, markers, 4)
	require.True(t, markers[0].Accepted)
	require.False(t, markers[1].Accepted)
	require.True(t, markers[2].Accepted)
	require.False(t, markers[3].Accepted)

	accepted := Accepted(markers)
	require.Len(t, accepted, 2)
	require.Equal(t, "1", accepted[0].Label)
	require.Equal(t, "2", accepted[1].Label)
}

func TestLoadRules(t *testing.T) {
	const doc = `rules:
  - fragment: "Salt"
    class: conductivity
  - fragment: "A280"
    class: UV
`

	rules, err := LoadRules(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rules, 2)

	classifier := New(rules)
	require.Equal(t, format.ClassConductivity, classifier.Classify("Salt gradient trace"))
	require.Equal(t, format.ClassUV, classifier.Classify("A280 detector"))
	// Custom table replaces the default vocabulary entirely.
	require.Equal(t, format.ClassOther, classifier.Classify("Cond"))
}

func TestLoadRules_Invalid(t *testing.T) {
	_, err := LoadRules(strings.NewReader(`rules: [{fragment: "", class: uv}]`))
	require.Error(t, err)

	_, err = LoadRules(strings.NewReader(`rules: [{fragment: "X", class: bogus}]`))
	require.Error(t, err)

	_, err = LoadRules(strings.NewReader(`{{not yaml`))
	require.Error(t, err)
}
