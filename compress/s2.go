package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

// s2MaxDecodedSize bounds the decode allocation so a corrupted block header
// cannot request an absurd buffer.
const s2MaxDecodedSize = 128 * 1024 * 1024

// S2Compressor balances compression ratio and speed; a good fit when
// snapshots are written and read about equally often.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses one payload as a single S2 block.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	// Pre-sizing to the worst case keeps Encode from allocating internally.
	dst := make([]byte, s2.MaxEncodedLen(len(data)))

	return s2.Encode(dst, data), nil
}

// Decompress restores a single S2 block, validating the declared size before
// allocating for it.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}
	if n > s2MaxDecodedSize {
		return nil, fmt.Errorf("s2 block declares %d decompressed bytes, limit is %d", n, s2MaxDecodedSize)
	}

	decompressed, err := s2.Decode(make([]byte, n), data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return decompressed, nil
}
