package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chromago/unicorn/curve"
	"github.com/chromago/unicorn/errs"
)

func mkCurve(name string, interval float64, ys ...float64) curve.Curve {
	samples := make([]curve.Sample, len(ys))
	for i, y := range ys {
		samples[i] = curve.Sample{X: float64(i) * interval, Y: y}
	}

	return curve.Curve{
		RawName: name,
		Samples: samples,
		Decl:    curve.Declaration{Name: name, Interval: interval},
	}
}

func TestRescale(t *testing.T) {
	c := mkCurve("UV 1_280", 1.0, 2, 4, 6, 10)

	warn := Rescale(&c)
	require.Nil(t, warn)
	require.Equal(t, []float64{0, 25, 50, 100}, c.Normalized)

	// Samples keep their original values.
	require.InDelta(t, 2.0, c.Samples[0].Y, 1e-12)
	require.InDelta(t, 10.0, c.Samples[3].Y, 1e-12)
}

func TestRescale_AppliedTwice(t *testing.T) {
	c := mkCurve("Cond", 1.0, 5, 1, 3)

	require.Nil(t, Rescale(&c))
	once := append([]float64(nil), c.Normalized...)

	require.Nil(t, Rescale(&c))
	require.Equal(t, once, c.Normalized)
}

func TestRescale_DegenerateRange(t *testing.T) {
	c := mkCurve("pH", 1.0, 7, 7, 7)

	warn := Rescale(&c)
	require.NotNil(t, warn)
	require.ErrorIs(t, *warn, errs.ErrDegenerateRange)
	require.Equal(t, []float64{0, 0, 0}, c.Normalized)
}

func TestRescale_Empty(t *testing.T) {
	c := curve.Curve{RawName: "empty"}
	require.Nil(t, Rescale(&c))
	require.Nil(t, c.Normalized)
}

func TestRescaleAll(t *testing.T) {
	curves := []curve.Curve{
		mkCurve("UV", 1.0, 0, 10),
		mkCurve("flat", 1.0, 3, 3),
	}

	warnings := RescaleAll(curves)
	require.Len(t, warnings, 1)
	require.ErrorIs(t, warnings[0], errs.ErrDegenerateRange)
	require.Equal(t, []float64{0, 100}, curves[0].Normalized)
}

func TestSharedGrid(t *testing.T) {
	curves := []curve.Curve{
		mkCurve("a", 1.0, 0, 1, 2, 3, 4), // x 0..4
		mkCurve("b", 2.0, 0, 1, 2),       // x 0..4
	}

	grid := SharedGrid(curves, 1.0)
	require.Equal(t, []float64{0, 1, 2, 3, 4}, grid)

	// Step defaults to the smallest declared interval.
	grid = SharedGrid(curves, 0)
	require.Equal(t, []float64{0, 1, 2, 3, 4}, grid)
}

func TestResample(t *testing.T) {
	// y = 10x sampled every 2 units.
	c := mkCurve("b", 2.0, 0, 20, 40)

	out := Resample(&c, []float64{0, 1, 2, 3, 4})
	require.Len(t, out.Samples, 5)
	for i, want := range []float64{0, 10, 20, 30, 40} {
		require.InDelta(t, want, out.Samples[i].Y, 1e-12)
	}

	// Input untouched.
	require.Len(t, c.Samples, 3)
}

func TestResample_ClampsOutsideRange(t *testing.T) {
	c := mkCurve("a", 1.0, 5, 6)

	out := Resample(&c, []float64{-10, 0, 0.5, 1, 99})
	require.InDelta(t, 5.0, out.Samples[0].Y, 1e-12) // clamped, not extrapolated
	require.InDelta(t, 5.0, out.Samples[1].Y, 1e-12)
	require.InDelta(t, 5.5, out.Samples[2].Y, 1e-12)
	require.InDelta(t, 6.0, out.Samples[3].Y, 1e-12)
	require.InDelta(t, 6.0, out.Samples[4].Y, 1e-12)
}

func TestResampleAll(t *testing.T) {
	curves := []curve.Curve{
		mkCurve("fast", 1.0, 0, 1, 2, 3, 4),
		mkCurve("slow", 2.0, 0, 20, 40),
	}

	out := ResampleAll(curves, 1.0)
	require.Len(t, out, 2)
	require.Len(t, out[0].Samples, 5)
	require.Len(t, out[1].Samples, 5)
	require.InDelta(t, 10.0, out[1].Samples[1].Y, 1e-12)
}
