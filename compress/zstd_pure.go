//go:build !gozstd

package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdMaxDecodedSize bounds what a snapshot payload may decompress to; a
// corrupted frame header cannot request more.
const zstdMaxDecodedSize = 128 * 1024 * 1024

// Encoders and decoders are pooled: klauspost/compress is built for reuse and
// stops allocating after warmup, which matters when a batch run snapshots
// hundreds of archives.
var (
	zstdEncoderPool = sync.Pool{
		New: func() any {
			encoder, err := zstd.NewWriter(nil,
				zstd.WithEncoderLevel(zstd.SpeedDefault),
				zstd.WithEncoderCRC(false), // disable CRC for performance
			)
			if err != nil {
				// Cannot happen with valid options.
				panic(fmt.Sprintf("snapshot zstd encoder: %v", err))
			}
			return encoder
		},
	}

	zstdDecoderPool = sync.Pool{
		New: func() any {
			decoder, err := zstd.NewReader(nil,
				zstd.WithDecoderConcurrency(1),
				zstd.WithDecoderLowmem(false),
				zstd.WithDecoderMaxMemory(zstdMaxDecodedSize),
			)
			if err != nil {
				// Cannot happen with valid options.
				panic(fmt.Sprintf("snapshot zstd decoder: %v", err))
			}
			return decoder
		},
	}
)

// Compress compresses one payload as a Zstandard frame.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	encoder := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	// EncodeAll is stateless, safe with a pooled encoder.
	return encoder.EncodeAll(data, nil), nil
}

// Decompress restores a Zstandard frame, validating the input format.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decoder := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	decompressed, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return decompressed, nil
}
