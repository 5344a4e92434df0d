package archive

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/chromago/unicorn/errs"
	"github.com/chromago/unicorn/format"
)

type zipEntry struct {
	name string
	data []byte
}

func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for _, entry := range entries {
		w, err := writer.Create(entry.name)
		require.NoError(t, err)
		_, err = w.Write(entry.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return buf.Bytes()
}

func TestWalk_Flat(t *testing.T) {
	data := buildZip(t,
		zipEntry{"Result.xml", []byte(`<Result><Created>2024-05-01</Created></Result>`)},
		zipEntry{"Chrom.1_2_True", []byte{0x01, 0x02, 0x03, 0x04}},
	)

	m, err := Walk("run.zip", data)
	require.NoError(t, err)
	require.Len(t, m.Entries, 2)

	require.Equal(t, "Result.xml", m.Entries[0].Path)
	require.Equal(t, format.KindMetadataXML, m.Entries[0].Kind)
	require.Equal(t, "Chrom.1_2_True", m.Entries[1].Path)
	require.Equal(t, format.KindBinaryBlock, m.Entries[1].Kind)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, m.Entries[1].Data)
}

func TestWalk_Nested(t *testing.T) {
	inner := buildZip(t,
		zipEntry{"Chrom.1.Xml", []byte(`<Chrom/>`)},
		zipEntry{"Chrom.1_5_True", []byte{0xAA, 0xBB, 0xCC, 0xDD}},
	)
	outer := buildZip(t,
		zipEntry{"Result.xml", []byte(`<Result/>`)},
		// Nested containers are detected by content signature, not name.
		zipEntry{"Chrom.1", inner},
	)

	m, err := Walk("run.zip", outer)
	require.NoError(t, err)

	var paths []string
	for _, entry := range m.Entries {
		paths = append(paths, entry.Path)
	}
	// Packing order, parent before nested children, depth-first.
	require.Equal(t, []string{
		"Result.xml",
		"Chrom.1",
		"Chrom.1/Chrom.1.Xml",
		"Chrom.1/Chrom.1_5_True",
	}, paths)

	require.Equal(t, format.KindNestedArchive, m.Entries[1].Kind)
	require.Equal(t, 1, m.Entries[2].Depth)

	entry, ok := m.Lookup("Chrom.1/Chrom.1_5_True")
	require.True(t, ok)
	require.Equal(t, []byte{0xAA, 0xBB, 0xCC, 0xDD}, entry.Data)

	// Declarations reference blocks by base name.
	entry, ok = m.Lookup("Chrom.1_5_True")
	require.True(t, ok)
	require.Equal(t, "Chrom.1/Chrom.1_5_True", entry.Path)
}

func TestWalk_NestedTrailingJunk(t *testing.T) {
	inner := buildZip(t, zipEntry{"Chrom.1.Xml", []byte(`<Chrom/>`)})
	padded := append(append([]byte{}, inner...), make([]byte, 64)...)
	outer := buildZip(t, zipEntry{"Chrom.1", padded})

	m, err := Walk("run.zip", outer)
	require.NoError(t, err)
	require.Len(t, m.Entries, 2)
	require.Equal(t, "Chrom.1/Chrom.1.Xml", m.Entries[1].Path)
}

func TestWalk_NotAContainer(t *testing.T) {
	_, err := Walk("run.zip", []byte("plain text, no zip here"))
	require.ErrorIs(t, err, errs.ErrNotAContainer)

	_, err = Walk("run.zip", nil)
	require.ErrorIs(t, err, errs.ErrNotAContainer)
}

func TestWalk_Truncated(t *testing.T) {
	data := buildZip(t, zipEntry{"Result.xml", []byte(`<Result/>`)})

	_, err := Walk("run.zip", data[:len(data)-6])
	require.ErrorIs(t, err, errs.ErrTruncated)
}

func TestWalk_TooDeep(t *testing.T) {
	payload := buildZip(t, zipEntry{"leaf.bin", []byte{0x00}})
	for i := 0; i <= MaxDepth; i++ {
		payload = buildZip(t, zipEntry{"nested", payload})
	}

	_, err := Walk("run.zip", payload)
	require.ErrorIs(t, err, errs.ErrTooDeep)
}

func TestManifest_Prune(t *testing.T) {
	manifestXML := []byte(`<Manifest><Files>` +
		`<File><FileName>Instrument.xml</FileName></File>` +
		`<File><FileName>Method.xml</FileName></File>` +
		`</Files></Manifest>`)

	data := buildZip(t,
		zipEntry{"Manifest.xml", manifestXML},
		zipEntry{"Instrument.xml", []byte(`<Instrument/>`)},
		zipEntry{"Method.xml", []byte(`<Method/>`)},
		zipEntry{"Chrom.1.Xml", []byte(`<Chrom/>`)},
	)

	m, err := Walk("run.zip", data)
	require.NoError(t, err)
	require.Len(t, m.Entries, 4)

	m.Prune()

	require.Len(t, m.Entries, 1)
	require.Equal(t, "Chrom.1.Xml", m.Entries[0].Path)

	_, ok := m.Lookup("Manifest.xml")
	require.False(t, ok)
}

func TestManifest_PruneSharedBaseName(t *testing.T) {
	// The pruned top-level block shares its base name with a kept nested
	// block; pruning must not take the kept entry's base lookup with it.
	inner := buildZip(t, zipEntry{"Chrom.1_5_True", []byte{0x01, 0x02, 0x03, 0x04}})
	data := buildZip(t,
		zipEntry{"Manifest.xml", []byte(`<Manifest><Files>` +
			`<File><FileName>Chrom.1_5_True</FileName></File>` +
			`</Files></Manifest>`)},
		zipEntry{"Chrom.1_5_True", []byte{0xFF}},
		zipEntry{"Chrom.1", inner},
	)

	m, err := Walk("run.zip", data)
	require.NoError(t, err)

	m.Prune()

	entry, ok := m.Lookup("Chrom.1_5_True")
	require.True(t, ok)
	require.Equal(t, "Chrom.1/Chrom.1_5_True", entry.Path)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, entry.Data)
}

func TestManifest_PruneWithoutManifest(t *testing.T) {
	data := buildZip(t, zipEntry{"Chrom.1.Xml", []byte(`<Chrom/>`)})

	m, err := Walk("run.zip", data)
	require.NoError(t, err)

	m.Prune()
	require.Len(t, m.Entries, 1)
}
