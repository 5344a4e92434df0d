// Package curve defines the data model produced by the decode pipeline.
//
// A Declaration is what the metadata XML promises; a Curve is what the binary
// decoder actually delivered. The terminal aggregate is DecodedRun, the sole
// object handed to downstream consumers (plotting, export, caching). Once a
// DecodedRun is built it holds no reference to the source archive.
package curve

import (
	"time"

	"github.com/chromago/unicorn/errs"
	"github.com/chromago/unicorn/format"
)

// Declaration describes one curve as declared by a metadata XML entry.
//
// Declarations are immutable once built by the schema parser: the block
// decoder only reads them.
type Declaration struct {
	// Name is the curve name exactly as written in the source XML.
	Name string
	// BlockID is the manifest path of the referenced binary data block.
	BlockID string
	// Unit is the amplitude unit string (e.g. "mAU", "mS/cm").
	Unit string
	// Interval is the volume/time step between consecutive samples. A value of
	// 1.0 with IndexAxis set means no interval was declared and x is a plain
	// sample index.
	Interval float64
	// Scale and Offset transform raw integer samples: y = raw*Scale + Offset.
	Scale  float64
	Offset float64
	// IndexAxis is set when the declaration carried no sample interval.
	IndexAxis bool
}

// Sample is one (x, y) point of a curve. X is volume (mL), time, or a bare
// sample index depending on the declaration.
type Sample struct {
	X float64
	Y float64
}

// Curve is a decoded, classified measurement series.
//
// Samples keeps the as-decoded values; Normalized, when non-nil, holds the
// 0-100% rescaled y values so consumers can switch display mode without
// re-decoding. The x sequence is always non-decreasing.
type Curve struct {
	// RawName is the name from the declaration, verbatim.
	RawName string
	// Class is the canonical category assigned by the classifier.
	Class format.CurveClass
	// Unit is the amplitude unit from the declaration.
	Unit string
	// Samples are the decoded (x, y) points in axis order.
	Samples []Sample
	// Normalized holds 0-100% rescaled y values, parallel to Samples.
	// Nil until normalization is requested.
	Normalized []float64
	// Layout records which record layout decoded the backing block.
	Layout format.BlockLayout
	// Decl is the originating declaration.
	Decl Declaration
}

// Len returns the number of samples.
func (c *Curve) Len() int {
	return len(c.Samples)
}

// Xs returns the x values of all samples as a new slice.
func (c *Curve) Xs() []float64 {
	xs := make([]float64, len(c.Samples))
	for i, s := range c.Samples {
		xs[i] = s.X
	}

	return xs
}

// Ys returns the y values of all samples as a new slice.
func (c *Curve) Ys() []float64 {
	ys := make([]float64, len(c.Samples))
	for i, s := range c.Samples {
		ys[i] = s.Y
	}

	return ys
}

// FractionMarker is a labeled position on the run's x axis.
//
// Accepted is computed once at parse time by the fraction filter and never
// re-derived downstream: true only when the label is a pure run of ASCII
// digits. System events like "Waste" or "Inject" are kept with Accepted=false.
type FractionMarker struct {
	Label    string
	X        float64
	Accepted bool
}

// Event is a raw event-curve entry retained for diagnostics, including the
// labels the fraction filter rejected.
type Event struct {
	Curve string
	Label string
	X     float64
}

// DecodedRun is the terminal aggregate of one decoded archive.
type DecodedRun struct {
	// Source identifies the input container (file path or caller-supplied name).
	Source string
	// Created is the run date from Result.xml, zero when absent.
	Created time.Time
	// Curves are the successfully decoded curves in declaration order.
	Curves []Curve
	// Fractions are the run's fraction markers in axis order; Accepted marks
	// the real collected fractions.
	Fractions []FractionMarker
	// RawEvents keeps every event label, accepted or not, for diagnostics.
	RawEvents []Event
	// Warnings collects the non-fatal problems of the run: dropped curves,
	// schema issues, degenerate normalization.
	Warnings []errs.Warning
}

// CurveByClass returns the first curve of the given class, or nil.
func (r *DecodedRun) CurveByClass(class format.CurveClass) *Curve {
	for i := range r.Curves {
		if r.Curves[i].Class == class {
			return &r.Curves[i]
		}
	}

	return nil
}

// CurveByName returns the curve with the given raw name, or nil.
func (r *DecodedRun) CurveByName(name string) *Curve {
	for i := range r.Curves {
		if r.Curves[i].RawName == name {
			return &r.Curves[i]
		}
	}

	return nil
}

// Warn appends a warning to the run.
func (r *DecodedRun) Warn(stage errs.Stage, subject string, err error) {
	r.Warnings = append(r.Warnings, errs.Warn(stage, subject, err))
}
