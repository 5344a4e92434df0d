package compress

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chromago/unicorn/format"
)

func samplePayload() []byte {
	// Columnar float64-ish payload: slowly varying little-endian words,
	// representative of what the snapshot encoder hands the codec.
	rng := rand.New(rand.NewSource(42))
	buf := make([]byte, 0, 8*1024)
	v := uint64(1 << 52)
	for range 1024 {
		v += uint64(rng.Intn(1000))
		for shift := 0; shift < 64; shift += 8 {
			buf = append(buf, byte(v>>shift))
		}
	}

	return buf
}

func TestCodecs_RoundTrip(t *testing.T) {
	payload := samplePayload()

	for _, compressionType := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		t.Run(compressionType.String(), func(t *testing.T) {
			codec, err := GetCodec(compressionType)
			require.NoError(t, err)

			compressed, err := codec.Compress(payload)
			require.NoError(t, err)

			decompressed, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.True(t, bytes.Equal(payload, decompressed))
		})
	}
}

func TestCodecs_EmptyInput(t *testing.T) {
	for _, compressionType := range []format.CompressionType{
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		t.Run(compressionType.String(), func(t *testing.T) {
			codec, err := GetCodec(compressionType)
			require.NoError(t, err)

			decompressed, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Empty(t, decompressed)
		})
	}
}

func TestGetCodec_Unsupported(t *testing.T) {
	_, err := GetCodec(format.CompressionType(0x7F))
	require.Error(t, err)
}

func TestS2_RejectsGarbage(t *testing.T) {
	codec := NewS2Compressor()

	// An all-ones length prefix either fails to parse or declares a size far
	// past the decode limit.
	_, err := codec.Decompress([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x02})
	require.Error(t, err)
}

func TestZstd_RejectsGarbage(t *testing.T) {
	codec := NewZstdCompressor()

	_, err := codec.Decompress([]byte("definitely not a zstd frame"))
	require.Error(t, err)
}
