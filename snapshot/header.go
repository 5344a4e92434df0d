// Package snapshot serializes decoded runs into a compact binary format.
//
// Batch consumers decode an archive once and cache the result; a snapshot
// re-loads orders of magnitude faster than walking, parsing, and decoding
// the original container. The layout is a fixed-size header, a per-curve
// index section, and a columnar payload section that is compressed as a
// whole:
//
//	bytes 0..31                    header
//	bytes 32..32+16*curves         index entries (one per curve)
//	remaining                      payload (optionally compressed)
//
// Snapshots capture the decoded data; per-decode warnings are diagnostics of
// the original decode and are not carried.
package snapshot

import (
	"time"

	"github.com/chromago/unicorn/endian"
	"github.com/chromago/unicorn/errs"
	"github.com/chromago/unicorn/format"
)

const (
	// HeaderSize is the fixed size of the snapshot header in bytes.
	HeaderSize = 32

	// IndexEntrySize is the fixed size of one curve index entry in bytes.
	IndexEntrySize = 16

	// MagicNumber identifies a snapshot stream.
	MagicNumber uint16 = 0xAC7A

	// formatVersion is bumped on incompatible layout changes.
	formatVersion uint8 = 1
)

// Flag option bits.
const (
	flagLittleEndian uint8 = 1 << 0
)

// Header is the fixed-size section at the start of a snapshot.
//
// The magic, flags, version, and compression bytes are always little-endian;
// the flag's endianness bit governs every other field and the payload.
type Header struct {
	// Flags holds the option bits (endianness).
	Flags uint8
	// Compression is the codec applied to the payload section.
	Compression format.CompressionType
	// CurveCount is the number of curves stored in the snapshot.
	CurveCount uint32
	// FractionCount is the number of fraction markers stored in the payload.
	FractionCount uint32
	// IndexOffset is the byte offset of the index section, always HeaderSize.
	IndexOffset uint32
	// PayloadOffset is the byte offset of the (compressed) payload section.
	PayloadOffset uint32
	// Created is the run date as microseconds since the Unix epoch, 0 if unknown.
	Created int64
	// PayloadSize is the decompressed payload size in bytes.
	PayloadSize uint32
}

// NewHeader creates a little-endian header with the given compression type.
func NewHeader(compression format.CompressionType) *Header {
	return &Header{
		Flags:       flagLittleEndian,
		Compression: compression,
		IndexOffset: HeaderSize,
	}
}

// IsLittleEndian reports whether the snapshot's multi-byte fields are
// little-endian.
func (h *Header) IsLittleEndian() bool {
	return h.Flags&flagLittleEndian != 0
}

// Engine returns the endian engine matching the header flags.
func (h *Header) Engine() endian.EndianEngine {
	if h.IsLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}

// CreatedAsTime returns the run date as a time.Time, zero when unset.
func (h *Header) CreatedAsTime() time.Time {
	if h.Created == 0 {
		return time.Time{}
	}

	return time.UnixMicro(h.Created).UTC()
}

// Validate checks the compression type against the known set.
func (h *Header) Validate() error {
	switch h.Compression {
	case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
		return nil
	default:
		return errs.ErrInvalidHeaderFlags
	}
}

// Parse parses the header from a byte slice of exactly HeaderSize bytes.
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	magic := uint16(data[0]) | uint16(data[1])<<8
	if magic != MagicNumber {
		return errs.ErrInvalidMagicNumber
	}

	version := data[2] >> 4
	if version != formatVersion {
		return errs.ErrInvalidHeaderFlags
	}
	h.Flags = data[2] & 0x0F
	h.Compression = format.CompressionType(data[3])

	engine := h.Engine()
	h.CurveCount = engine.Uint32(data[4:8])
	h.FractionCount = engine.Uint32(data[8:12])
	h.IndexOffset = engine.Uint32(data[12:16])
	h.PayloadOffset = engine.Uint32(data[16:20])
	h.Created = int64(engine.Uint64(data[20:28]))
	h.PayloadSize = engine.Uint32(data[28:32])

	return h.Validate()
}

// Bytes serializes the header into a new HeaderSize byte slice.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)

	b[0] = byte(MagicNumber & 0xFF)
	b[1] = byte(MagicNumber >> 8)
	b[2] = formatVersion<<4 | h.Flags&0x0F
	b[3] = byte(h.Compression)

	engine := h.Engine()
	engine.PutUint32(b[4:8], h.CurveCount)
	engine.PutUint32(b[8:12], h.FractionCount)
	engine.PutUint32(b[12:16], h.IndexOffset)
	engine.PutUint32(b[16:20], h.PayloadOffset)
	engine.PutUint64(b[20:28], uint64(h.Created))
	engine.PutUint32(b[28:32], h.PayloadSize)

	return b
}

// ParseHeader parses a Header from the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errs.ErrInvalidHeaderSize
	}

	h := Header{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return Header{}, err
	}

	return h, nil
}

// IndexEntry locates one curve's record inside the decompressed payload.
//
// CurveID is the xxHash64 of the curve's raw name; Offset is relative to the
// start of the decompressed payload; Count is the number of samples.
type IndexEntry struct {
	CurveID uint64
	Offset  uint32
	Count   uint32
}

// Parse parses an index entry from a byte slice of at least IndexEntrySize
// bytes using the given engine.
func (e *IndexEntry) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) < IndexEntrySize {
		return errs.ErrInvalidIndexEntrySize
	}

	e.CurveID = engine.Uint64(data[0:8])
	e.Offset = engine.Uint32(data[8:12])
	e.Count = engine.Uint32(data[12:16])

	return nil
}

// AppendTo appends the serialized entry to buf and returns the result.
func (e *IndexEntry) AppendTo(buf []byte, engine endian.EndianEngine) []byte {
	buf = engine.AppendUint64(buf, e.CurveID)
	buf = engine.AppendUint32(buf, e.Offset)
	buf = engine.AppendUint32(buf, e.Count)

	return buf
}
