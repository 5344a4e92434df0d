package snapshot

import (
	"fmt"

	"github.com/chromago/unicorn/compress"
	"github.com/chromago/unicorn/curve"
	"github.com/chromago/unicorn/errs"
	"github.com/chromago/unicorn/format"
	"github.com/chromago/unicorn/internal/hash"
)

// Decode restores a DecodedRun from a snapshot byte stream.
//
// The stream is validated structurally: the header magic, version, and
// compression type, the section offsets, the decompressed payload size, and
// every index entry against the curve record it points at. Corruption
// anywhere yields an error, never a partial run.
func Decode(data []byte) (*curve.DecodedRun, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	indexEnd := HeaderSize + IndexEntrySize*int(header.CurveCount)
	if int(header.IndexOffset) != HeaderSize || int(header.PayloadOffset) != indexEnd {
		return nil, errs.ErrInvalidPayloadOffset
	}
	if indexEnd > len(data) {
		return nil, errs.ErrInvalidPayloadOffset
	}

	engine := header.Engine()

	index := make([]IndexEntry, header.CurveCount)
	for i := range index {
		start := HeaderSize + IndexEntrySize*i
		if err := index[i].Parse(data[start:start+IndexEntrySize], engine); err != nil {
			return nil, err
		}
	}

	codec, err := compress.GetCodec(header.Compression)
	if err != nil {
		return nil, err
	}

	payload, err := codec.Decompress(data[header.PayloadOffset:])
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot payload: %w", err)
	}
	if len(payload) != int(header.PayloadSize) {
		return nil, fmt.Errorf("decompressed payload is %d bytes, header declares %d",
			len(payload), header.PayloadSize)
	}

	r := &reader{data: payload, engine: engine}

	run := &curve.DecodedRun{Created: header.CreatedAsTime()}

	if run.Source, err = r.readString(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot source: %w", err)
	}

	run.Curves = make([]curve.Curve, 0, header.CurveCount)
	for i := range index {
		c, err := readCurve(r, &index[i])
		if err != nil {
			return nil, fmt.Errorf("failed to read curve %d: %w", i, err)
		}
		run.Curves = append(run.Curves, c)
	}

	for range header.FractionCount {
		var marker curve.FractionMarker
		if marker.Label, err = r.readString(); err != nil {
			return nil, fmt.Errorf("failed to read fraction marker: %w", err)
		}
		if marker.X, err = r.readFloat64(); err != nil {
			return nil, fmt.Errorf("failed to read fraction marker: %w", err)
		}

		accepted, err := r.readByte()
		if err != nil {
			return nil, fmt.Errorf("failed to read fraction marker: %w", err)
		}
		marker.Accepted = accepted != 0

		run.Fractions = append(run.Fractions, marker)
	}

	eventCount, err := r.readUint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read event count: %w", err)
	}
	for range eventCount {
		var event curve.Event
		if event.Curve, err = r.readString(); err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}
		if event.Label, err = r.readString(); err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}
		if event.X, err = r.readFloat64(); err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		run.RawEvents = append(run.RawEvents, event)
	}

	if r.remaining() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after snapshot payload", r.remaining())
	}

	return run, nil
}

// readCurve reads one curve record and cross-checks it against its index
// entry.
func readCurve(r *reader, entry *IndexEntry) (curve.Curve, error) {
	var c curve.Curve

	if r.pos != int(entry.Offset) {
		return c, fmt.Errorf("index points at offset %d, record starts at %d: %w",
			entry.Offset, r.pos, errs.ErrInvalidPayloadOffset)
	}

	var err error
	if c.RawName, err = r.readString(); err != nil {
		return c, err
	}
	if entry.CurveID != hash.ID(c.RawName) {
		return c, fmt.Errorf("index id %#x does not match curve %q", entry.CurveID, c.RawName)
	}
	c.Decl.Name = c.RawName

	if c.Unit, err = r.readString(); err != nil {
		return c, err
	}
	c.Decl.Unit = c.Unit

	if c.Decl.BlockID, err = r.readString(); err != nil {
		return c, err
	}

	class, err := r.readByte()
	if err != nil {
		return c, err
	}
	c.Class = format.CurveClass(class)

	layout, err := r.readByte()
	if err != nil {
		return c, err
	}
	c.Layout = format.BlockLayout(layout)

	flags, err := r.readByte()
	if err != nil {
		return c, err
	}
	c.Decl.IndexAxis = flags&recordFlagIndexAxis != 0

	if c.Decl.Interval, err = r.readFloat64(); err != nil {
		return c, err
	}
	if c.Decl.Scale, err = r.readFloat64(); err != nil {
		return c, err
	}
	if c.Decl.Offset, err = r.readFloat64(); err != nil {
		return c, err
	}

	count, err := r.readUint32()
	if err != nil {
		return c, err
	}
	if count != entry.Count {
		return c, fmt.Errorf("record declares %d samples, index declares %d", count, entry.Count)
	}

	xs, err := r.readFloat64Slice(int(count))
	if err != nil {
		return c, err
	}
	ys, err := r.readFloat64Slice(int(count))
	if err != nil {
		return c, err
	}

	c.Samples = make([]curve.Sample, count)
	for i := range c.Samples {
		c.Samples[i] = curve.Sample{X: xs[i], Y: ys[i]}
	}

	if flags&recordFlagNormalized != 0 {
		if c.Normalized, err = r.readFloat64Slice(int(count)); err != nil {
			return c, err
		}
	}

	return c, nil
}
