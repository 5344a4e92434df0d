// Package compress provides the compression codecs used by the snapshot
// format.
//
// Snapshot payloads are columnar float64 samples, which compress well with
// general-purpose algorithms. The codec is selected per snapshot and recorded
// in the header flag, so a decoder never needs out-of-band configuration:
//   - None: no compression (fastest, largest)
//   - Zstd: best ratio, the default for cached runs
//   - S2: balanced ratio and speed
//   - LZ4: fastest decompression
package compress

import (
	"fmt"

	"github.com/chromago/unicorn/format"
)

// Compressor compresses one snapshot payload.
//
// The returned slice is newly allocated and owned by the caller; the input is
// never modified. Implementations may reuse internal buffers and must be safe
// for concurrent use.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a payload compressed by the matching Compressor.
//
// Implementations validate the input format and return an error for corrupted
// data or a mismatched algorithm instead of producing garbage.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions for implementations that share state or
// pooled resources between them.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}
