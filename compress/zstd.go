package compress

// ZstdCompressor provides Zstandard compression, the default for cached
// decoded runs: best ratio, and snapshots are decompressed far less often
// than archives are decoded.
//
// Two implementations exist behind build tags: the default pure-Go path via
// klauspost/compress, and an opt-in cgo path via valyala/gozstd for builds
// that want the reference implementation (tags: gozstd).
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstandard compressor.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
