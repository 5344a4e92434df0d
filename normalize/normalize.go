// Package normalize aligns decoded curves onto a common x axis and rescales
// values to a percentage range.
//
// Both operations are optional post-processing over the classified curve set.
// Rescaling writes into Curve.Normalized and leaves Samples untouched, so a
// consumer can switch display modes without re-decoding; resampling produces
// new curves and never mutates its input.
package normalize

import (
	"math"
	"sort"

	"github.com/chromago/unicorn/curve"
	"github.com/chromago/unicorn/errs"
)

// Rescale fills c.Normalized with y values rescaled to the 0-100% range of
// the curve's own observed min/max: y' = (y-min)/(max-min)*100.
//
// The degenerate case max == min maps every sample to 0 instead of dividing
// by zero; the returned warning records it. Rescaling is computed from
// Samples every time, so applying it twice yields the same result as once.
func Rescale(c *curve.Curve) *errs.Warning {
	if len(c.Samples) == 0 {
		c.Normalized = nil
		return nil
	}

	minY, maxY := c.Samples[0].Y, c.Samples[0].Y
	for _, s := range c.Samples[1:] {
		minY = math.Min(minY, s.Y)
		maxY = math.Max(maxY, s.Y)
	}

	c.Normalized = make([]float64, len(c.Samples))

	if minY == maxY {
		warn := errs.Warn(errs.StageNormalize, c.RawName, errs.ErrDegenerateRange)
		return &warn
	}

	span := maxY - minY
	for i, s := range c.Samples {
		c.Normalized[i] = (s.Y - minY) / span * 100
	}

	return nil
}

// RescaleAll rescales every curve and collects the degenerate-range warnings.
func RescaleAll(curves []curve.Curve) []errs.Warning {
	var warnings []errs.Warning
	for i := range curves {
		if warn := Rescale(&curves[i]); warn != nil {
			warnings = append(warnings, *warn)
		}
	}

	return warnings
}

// SharedGrid builds the common x grid spanning all curves, from the smallest
// observed x to the largest, in the given step. A non-positive step falls
// back to the smallest declared sample interval among the curves.
func SharedGrid(curves []curve.Curve, step float64) []float64 {
	first := true
	var lo, hi float64
	for i := range curves {
		samples := curves[i].Samples
		if len(samples) == 0 {
			continue
		}
		if first {
			lo, hi = samples[0].X, samples[len(samples)-1].X
			first = false
			continue
		}
		lo = math.Min(lo, samples[0].X)
		hi = math.Max(hi, samples[len(samples)-1].X)
	}
	if first {
		return nil
	}

	if step <= 0 {
		step = math.Inf(1)
		for i := range curves {
			if iv := curves[i].Decl.Interval; iv > 0 {
				step = math.Min(step, iv)
			}
		}
		if math.IsInf(step, 1) {
			step = 1.0
		}
	}

	n := int(math.Floor((hi-lo)/step)) + 1
	grid := make([]float64, 0, n)
	for i := range n {
		grid = append(grid, lo+float64(i)*step)
	}

	return grid
}

// Resample returns a copy of c with samples linearly interpolated onto the
// grid. Grid points outside the curve's observed x range are clamped to the
// nearest endpoint value, never extrapolated. Normalized values are not
// carried over; rescale after resampling if both are wanted.
func Resample(c *curve.Curve, grid []float64) curve.Curve {
	out := *c
	out.Normalized = nil

	if len(c.Samples) == 0 || len(grid) == 0 {
		out.Samples = nil
		return out
	}

	out.Samples = make([]curve.Sample, len(grid))
	for i, x := range grid {
		out.Samples[i] = curve.Sample{X: x, Y: interpolate(c.Samples, x)}
	}

	return out
}

// ResampleAll resamples every curve onto the shared grid built with the given
// step.
func ResampleAll(curves []curve.Curve, step float64) []curve.Curve {
	grid := SharedGrid(curves, step)

	out := make([]curve.Curve, len(curves))
	for i := range curves {
		out[i] = Resample(&curves[i], grid)
	}

	return out
}

// interpolate evaluates the piecewise-linear curve at x. The sample x
// sequence is non-decreasing by the block decoder's contract.
func interpolate(samples []curve.Sample, x float64) float64 {
	if x <= samples[0].X {
		return samples[0].Y
	}
	if x >= samples[len(samples)-1].X {
		return samples[len(samples)-1].Y
	}

	// First sample with X >= x; idx > 0 because of the clamp above.
	idx := sort.Search(len(samples), func(i int) bool {
		return samples[i].X >= x
	})

	left, right := samples[idx-1], samples[idx]
	dx := right.X - left.X
	if dx == 0 {
		return left.Y
	}

	t := (x - left.X) / dx

	return left.Y + t*(right.Y-left.Y)
}
