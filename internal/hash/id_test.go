package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestID(t *testing.T) {
	tests := []struct {
		name string
		data string
		id   uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
		{"block path", "Chrom.1_2_True", ID("Chrom.1_2_True")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, ID(tt.data))
		})
	}

	// Same input always hashes to the same id; distinct block ids must not
	// share one.
	assert.Equal(t, ID("Chrom.1/Xml"), ID("Chrom.1/Xml"))
	assert.NotEqual(t, ID("Chrom.1_1_True"), ID("Chrom.1_2_True"))
}
