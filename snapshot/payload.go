package snapshot

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/chromago/unicorn/endian"
)

// Payload primitives. Strings are uvarint-length-prefixed; floats are IEEE 754
// bits in the header's byte order.

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func appendFloat64(buf []byte, engine endian.EndianEngine, v float64) []byte {
	return engine.AppendUint64(buf, math.Float64bits(v))
}

// reader is a cursor over the decompressed payload.
type reader struct {
	data   []byte
	pos    int
	engine endian.EndianEngine
}

func (r *reader) remaining() int {
	return len(r.data) - r.pos
}

func (r *reader) readString() (string, error) {
	length, n := binary.Uvarint(r.data[r.pos:])
	if n <= 0 {
		return "", fmt.Errorf("payload offset %d: bad string length", r.pos)
	}
	r.pos += n

	if length > uint64(r.remaining()) {
		return "", fmt.Errorf("payload offset %d: string of %d bytes exceeds payload", r.pos, length)
	}

	s := string(r.data[r.pos : r.pos+int(length)])
	r.pos += int(length)

	return s, nil
}

func (r *reader) readByte() (byte, error) {
	if r.remaining() < 1 {
		return 0, fmt.Errorf("payload offset %d: unexpected end", r.pos)
	}

	b := r.data[r.pos]
	r.pos++

	return b, nil
}

func (r *reader) readUint32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, fmt.Errorf("payload offset %d: unexpected end", r.pos)
	}

	v := r.engine.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4

	return v, nil
}

func (r *reader) readFloat64() (float64, error) {
	if r.remaining() < 8 {
		return 0, fmt.Errorf("payload offset %d: unexpected end", r.pos)
	}

	v := math.Float64frombits(r.engine.Uint64(r.data[r.pos : r.pos+8]))
	r.pos += 8

	return v, nil
}

func (r *reader) readFloat64Slice(count int) ([]float64, error) {
	if r.remaining() < 8*count {
		return nil, fmt.Errorf("payload offset %d: %d floats exceed payload", r.pos, count)
	}

	out := make([]float64, count)
	for i := range count {
		out[i] = math.Float64frombits(r.engine.Uint64(r.data[r.pos : r.pos+8]))
		r.pos += 8
	}

	return out, nil
}
