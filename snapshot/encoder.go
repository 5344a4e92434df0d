package snapshot

import (
	"fmt"
	"math"

	"github.com/chromago/unicorn/compress"
	"github.com/chromago/unicorn/curve"
	"github.com/chromago/unicorn/endian"
	"github.com/chromago/unicorn/format"
	"github.com/chromago/unicorn/internal/hash"
	"github.com/chromago/unicorn/internal/options"
	"github.com/chromago/unicorn/internal/pool"
)

// Per-curve record flag bits inside the payload.
const (
	recordFlagNormalized uint8 = 1 << 0
	recordFlagIndexAxis  uint8 = 1 << 1
)

// Encoder serializes decoded runs into snapshot byte streams.
//
// An Encoder is stateless apart from its configuration and is safe for
// concurrent use.
type Encoder struct {
	compression format.CompressionType
	engine      endian.EndianEngine
}

// Option is a functional option for configuring an Encoder.
type Option = options.Option[*Encoder]

// WithCompression sets the codec applied to the payload section. The default
// is Zstd.
func WithCompression(compression format.CompressionType) Option {
	return options.New(func(e *Encoder) error {
		if _, err := compress.GetCodec(compression); err != nil {
			return err
		}
		e.compression = compression

		return nil
	})
}

// NewEncoder creates an Encoder with the given options.
func NewEncoder(opts ...Option) (*Encoder, error) {
	e := &Encoder{
		compression: format.CompressionZstd,
		engine:      endian.GetLittleEndianEngine(),
	}
	if err := options.Apply(e, opts...); err != nil {
		return nil, fmt.Errorf("failed to apply encoder options: %w", err)
	}

	return e, nil
}

// Encode serializes the run with a one-shot Encoder.
func Encode(run *curve.DecodedRun, opts ...Option) ([]byte, error) {
	encoder, err := NewEncoder(opts...)
	if err != nil {
		return nil, err
	}

	return encoder.Encode(run)
}

// Encode serializes the run into a self-describing snapshot byte stream.
func (e *Encoder) Encode(run *curve.DecodedRun) ([]byte, error) {
	header := NewHeader(e.compression)
	header.CurveCount = uint32(len(run.Curves))
	header.FractionCount = uint32(len(run.Fractions))
	header.PayloadOffset = HeaderSize + IndexEntrySize*uint32(len(run.Curves))
	if !run.Created.IsZero() {
		header.Created = run.Created.UnixMicro()
	}

	payload := pool.GetSnapshotBuffer()
	defer pool.PutSnapshotBuffer(payload)

	index := make([]IndexEntry, 0, len(run.Curves))

	payload.B = appendString(payload.B, run.Source)

	for i := range run.Curves {
		c := &run.Curves[i]

		index = append(index, IndexEntry{
			CurveID: hash.ID(c.RawName),
			Offset:  uint32(payload.Len()),
			Count:   uint32(c.Len()),
		})
		e.appendCurve(payload, c)
	}

	for _, marker := range run.Fractions {
		payload.B = appendString(payload.B, marker.Label)
		payload.B = appendFloat64(payload.B, e.engine, marker.X)
		payload.B = append(payload.B, boolByte(marker.Accepted))
	}

	payload.B = e.engine.AppendUint32(payload.B, uint32(len(run.RawEvents)))
	for _, event := range run.RawEvents {
		payload.B = appendString(payload.B, event.Curve)
		payload.B = appendString(payload.B, event.Label)
		payload.B = appendFloat64(payload.B, e.engine, event.X)
	}

	if payload.Len() > math.MaxUint32 {
		return nil, fmt.Errorf("payload of %d bytes exceeds the snapshot size limit", payload.Len())
	}
	header.PayloadSize = uint32(payload.Len())

	codec, err := compress.GetCodec(e.compression)
	if err != nil {
		return nil, err
	}

	compressed, err := codec.Compress(payload.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to compress snapshot payload: %w", err)
	}

	out := make([]byte, 0, int(header.PayloadOffset)+len(compressed))
	out = append(out, header.Bytes()...)
	for i := range index {
		out = index[i].AppendTo(out, e.engine)
	}
	out = append(out, compressed...)

	return out, nil
}

// appendCurve writes one curve record: identity strings, class and layout
// bytes, the declaration scalars, then the sample columns.
func (e *Encoder) appendCurve(payload *pool.ByteBuffer, c *curve.Curve) {
	payload.B = appendString(payload.B, c.RawName)
	payload.B = appendString(payload.B, c.Unit)
	payload.B = appendString(payload.B, c.Decl.BlockID)
	payload.B = append(payload.B, byte(c.Class), byte(c.Layout))

	var flags uint8
	if c.Normalized != nil {
		flags |= recordFlagNormalized
	}
	if c.Decl.IndexAxis {
		flags |= recordFlagIndexAxis
	}
	payload.B = append(payload.B, flags)

	payload.B = appendFloat64(payload.B, e.engine, c.Decl.Interval)
	payload.B = appendFloat64(payload.B, e.engine, c.Decl.Scale)
	payload.B = appendFloat64(payload.B, e.engine, c.Decl.Offset)
	payload.B = e.engine.AppendUint32(payload.B, uint32(c.Len()))

	// Stage each column in a pooled slice so the float words land contiguously,
	// which is what the codecs are tuned for.
	column, release := pool.GetFloat64Slice(c.Len())
	defer release()

	for i, s := range c.Samples {
		column[i] = s.X
	}
	e.appendColumn(payload, column)

	for i, s := range c.Samples {
		column[i] = s.Y
	}
	e.appendColumn(payload, column)

	if c.Normalized != nil {
		e.appendColumn(payload, c.Normalized)
	}
}

func (e *Encoder) appendColumn(payload *pool.ByteBuffer, values []float64) {
	payload.Grow(8 * len(values))
	for _, v := range values {
		payload.B = e.engine.AppendUint64(payload.B, math.Float64bits(v))
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}

	return 0
}
