// Package block decodes raw binary data-block entries into curves.
//
// A block is a sequence of fixed-width little-endian records. UNICORN 6 uses
// two record layouts: implicit, where each record is one 4-byte integer
// sample and x is derived from the declaration's sample interval, and
// timestamped, where each 8-byte record carries a leading x field followed by
// the sample value. The layout is a pluggable strategy: callers can force one
// or let the decoder probe, and a block neither strategy can explain is
// rejected rather than guessed at.
package block

import (
	"fmt"

	"github.com/chromago/unicorn/archive"
	"github.com/chromago/unicorn/curve"
	"github.com/chromago/unicorn/endian"
	"github.com/chromago/unicorn/errs"
	"github.com/chromago/unicorn/format"
	"github.com/chromago/unicorn/internal/options"
)

const (
	// RecordWidth is the width of one sample field in bytes.
	RecordWidth = 4

	// timestampedRecordWidth is the width of one (x, y) record pair.
	timestampedRecordWidth = 2 * RecordWidth
)

// Resolver locates a data-block entry by the id a declaration references.
// *archive.Manifest satisfies it.
type Resolver interface {
	Lookup(id string) (*archive.Entry, bool)
}

// Decoder decodes data blocks according to a record layout strategy.
type Decoder struct {
	engine endian.EndianEngine
	layout format.BlockLayout // zero value selects auto-detection
}

// Option configures a Decoder.
type Option = options.Option[*Decoder]

// WithLayout forces a record layout instead of auto-detection.
func WithLayout(layout format.BlockLayout) Option {
	return options.New(func(d *Decoder) error {
		switch layout {
		case format.LayoutImplicit, format.LayoutTimestamped:
			d.layout = layout
			return nil
		default:
			return fmt.Errorf("invalid block layout: %v", layout)
		}
	})
}

// NewDecoder creates a block decoder. UNICORN 6 blocks are little-endian;
// the engine is fixed by the format version, not configurable per call.
func NewDecoder(opts ...Option) (*Decoder, error) {
	d := &Decoder{
		engine: endian.GetLittleEndianEngine(),
	}

	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}

	return d, nil
}

// DecodeFrom resolves the declaration's block id against the manifest and
// decodes it.
//
// Returns:
//   - curve.Curve: Decoded curve with the declaration's name and unit verbatim
//   - error: errs.ErrMissingBlock when the id resolves to no entry, plus any
//     Decode error
func (d *Decoder) DecodeFrom(decl curve.Declaration, manifest Resolver) (curve.Curve, error) {
	entry, ok := manifest.Lookup(decl.BlockID)
	if !ok {
		return curve.Curve{}, fmt.Errorf("%s: %w", decl.BlockID, errs.ErrMissingBlock)
	}

	return d.Decode(decl, entry.Data)
}

// Decode decodes one block's bytes into a curve.
//
// The sample transform is y = raw*scale + offset with scale and offset taken
// from the declaration. A block whose byte length is not an exact multiple of
// the record width is rejected with errs.ErrMisaligned, never truncated.
// Out-of-order x values yield errs.ErrNonMonotonicAxis; the curve is dropped,
// not re-sorted.
func (d *Decoder) Decode(decl curve.Declaration, data []byte) (curve.Curve, error) {
	layout := d.layout
	if layout == 0 {
		detected, err := d.detectLayout(decl, data)
		if err != nil {
			return curve.Curve{}, err
		}
		layout = detected
	}

	var (
		samples []curve.Sample
		err     error
	)

	switch layout {
	case format.LayoutImplicit:
		samples, err = d.decodeImplicit(decl, data)
	case format.LayoutTimestamped:
		samples, err = d.decodeTimestamped(decl, data)
	}
	if err != nil {
		return curve.Curve{}, fmt.Errorf("%s: %w", decl.BlockID, err)
	}

	return curve.Curve{
		RawName: decl.Name,
		Class:   format.ClassOther, // classification happens downstream
		Unit:    decl.Unit,
		Samples: samples,
		Layout:  layout,
		Decl:    decl,
	}, nil
}

// detectLayout probes which record layout explains the block.
//
// The implicit layout is the common case and always yields a monotonic axis
// for a positive sample interval, so it wins whenever it applies. The
// timestamped layout is selected only when the implicit interval is unusable
// (non-positive) and the leading x fields pass the monotonicity probe. A
// block neither strategy explains is flagged, not guessed.
func (d *Decoder) detectLayout(decl curve.Declaration, data []byte) (format.BlockLayout, error) {
	if len(data)%RecordWidth != 0 {
		return 0, fmt.Errorf("%s: %d bytes: %w", decl.BlockID, len(data), errs.ErrMisaligned)
	}

	if decl.Interval > 0 {
		return format.LayoutImplicit, nil
	}

	if len(data)%timestampedRecordWidth == 0 && d.probeTimestamped(data) {
		return format.LayoutTimestamped, nil
	}

	return 0, fmt.Errorf("%s: %w", decl.BlockID, errs.ErrUnknownBlockLayout)
}

// probeTimestamped reports whether the leading x field of every record is
// non-decreasing.
func (d *Decoder) probeTimestamped(data []byte) bool {
	prev := int32(0)
	for i := 0; i < len(data); i += timestampedRecordWidth {
		x := int32(d.engine.Uint32(data[i : i+RecordWidth]))
		if i > 0 && x < prev {
			return false
		}
		prev = x
	}

	return true
}

func (d *Decoder) decodeImplicit(decl curve.Declaration, data []byte) ([]curve.Sample, error) {
	if len(data)%RecordWidth != 0 {
		return nil, fmt.Errorf("%d bytes: %w", len(data), errs.ErrMisaligned)
	}

	n := len(data) / RecordWidth
	samples := make([]curve.Sample, n)
	for i := range n {
		raw := int32(d.engine.Uint32(data[i*RecordWidth : (i+1)*RecordWidth]))
		samples[i] = curve.Sample{
			X: float64(i) * decl.Interval,
			Y: float64(raw)*decl.Scale + decl.Offset,
		}
	}

	return samples, nil
}

func (d *Decoder) decodeTimestamped(decl curve.Declaration, data []byte) ([]curve.Sample, error) {
	if len(data)%timestampedRecordWidth != 0 {
		return nil, fmt.Errorf("%d bytes: %w", len(data), errs.ErrMisaligned)
	}

	step := decl.Interval
	if step <= 0 {
		step = 1.0
	}

	n := len(data) / timestampedRecordWidth
	samples := make([]curve.Sample, n)
	prev := int32(0)
	for i := range n {
		base := i * timestampedRecordWidth
		rawX := int32(d.engine.Uint32(data[base : base+RecordWidth]))
		rawY := int32(d.engine.Uint32(data[base+RecordWidth : base+timestampedRecordWidth]))

		if i > 0 && rawX < prev {
			return nil, fmt.Errorf("record %d: x %d after %d: %w", i, rawX, prev, errs.ErrNonMonotonicAxis)
		}
		prev = rawX

		samples[i] = curve.Sample{
			X: float64(rawX) * step,
			Y: float64(rawY)*decl.Scale + decl.Offset,
		}
	}

	return samples, nil
}
