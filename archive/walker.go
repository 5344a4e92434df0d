// Package archive opens UNICORN 6+ result containers and flattens them into a
// manifest of entries.
//
// A result container is a ZIP byte stream whose entries may themselves be ZIP
// streams (the instrument wraps each chromatogram's data files in a
// sub-container). The walker recurses into any entry whose content begins
// with the ZIP local-file signature, regardless of the entry's name, and
// produces fully resolved internal paths such as "Chrom.1/Xml/Chrom.1.Xml".
//
// The walker only reads bytes; it never interprets entry content beyond the
// kind tag. Interpretation belongs to the schema and block packages.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/chromago/unicorn/errs"
	"github.com/chromago/unicorn/format"
	"github.com/chromago/unicorn/internal/collision"
	"github.com/chromago/unicorn/internal/hash"
)

// MaxDepth bounds nested-container recursion. Real instruments nest two
// levels; anything past four is malformed or adversarial input.
const MaxDepth = 4

var (
	// zipMagic is the ZIP local-file-header signature every container starts with.
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

	// eocdMagic is the end-of-central-directory signature. UNICORN pads
	// embedded sub-containers with trailing bytes after this record, which the
	// zip reader rejects, so nested payloads are truncated at the last EOCD.
	eocdMagic = []byte{0x50, 0x4B, 0x05, 0x06, 0x00, 0x00, 0x00, 0x00}
)

// eocdRecordSize is the size of a minimal end-of-central-directory record.
const eocdRecordSize = 22

// Entry is one file inside the (possibly nested) container.
type Entry struct {
	// Path is the fully resolved internal path, nested levels joined with "/".
	Path string
	// Kind tags the entry as metadata XML, a raw binary block, or a nested
	// sub-container.
	Kind format.EntryKind
	// Data is the entry's byte payload. For nested archives this is the
	// embedded ZIP stream after trailing-junk truncation.
	Data []byte
	// Depth is the nesting level, 0 for top-level entries.
	Depth int
}

// Base returns the last path segment, which is how metadata declarations
// reference data blocks.
func (e *Entry) Base() string {
	if i := strings.LastIndexByte(e.Path, '/'); i >= 0 {
		return e.Path[i+1:]
	}

	return e.Path
}

// Manifest is the flat, ordered view of one result container.
//
// Entry order follows the original packing order of each level, parent entry
// before its nested children, depth-first. Lookup maps are keyed by xxHash64
// of the full path and of the base name, so block-id resolution is O(1).
type Manifest struct {
	// Source identifies the container (caller-supplied name or path).
	Source string
	// Entries lists every entry in walk order.
	Entries []*Entry

	byPath map[uint64]*Entry
	byBase map[uint64]*Entry

	// Hash collisions among paths or base names would make the maps resolve a
	// block id to the wrong entry; once one is seen, Lookup verifies strings.
	paths *collision.Tracker
	bases *collision.Tracker
}

// Walk opens the container held in data and produces its manifest.
//
// Returns:
//   - *Manifest: Flat entry list with lookup indexes
//   - error: errs.ErrNotAContainer if the outer ZIP signature is absent,
//     errs.ErrTruncated if entry content cannot be fully read,
//     errs.ErrTooDeep if nesting exceeds MaxDepth
func Walk(source string, data []byte) (*Manifest, error) {
	if !IsContainer(data) {
		return nil, fmt.Errorf("%s: %w", source, errs.ErrNotAContainer)
	}

	m := &Manifest{
		Source: source,
		byPath: make(map[uint64]*Entry),
		byBase: make(map[uint64]*Entry),
		paths:  collision.NewTracker(),
		bases:  collision.NewTracker(),
	}

	if err := m.walk(data, "", 0); err != nil {
		return nil, err
	}

	return m, nil
}

// IsContainer reports whether data begins with the ZIP local-file signature.
func IsContainer(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}

func (m *Manifest) walk(data []byte, prefix string, depth int) error {
	if depth > MaxDepth {
		return fmt.Errorf("%s: depth %d: %w", m.Source, depth, errs.ErrTooDeep)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("%s: %s: %v: %w", m.Source, prefix, err, errs.ErrTruncated)
	}

	for _, file := range reader.File {
		payload, err := readEntry(file)
		if err != nil {
			return fmt.Errorf("%s: %s%s: %v: %w", m.Source, prefix, file.Name, err, errs.ErrTruncated)
		}

		path := prefix + file.Name

		if IsContainer(payload) {
			nested := trimTrailingJunk(payload)
			entry := m.add(path, format.KindNestedArchive, nested, depth)

			if err := m.walk(entry.Data, path+"/", depth+1); err != nil {
				return err
			}

			continue
		}

		m.add(path, classifyEntry(file.Name), payload, depth)
	}

	return nil
}

func (m *Manifest) add(path string, kind format.EntryKind, data []byte, depth int) *Entry {
	entry := &Entry{
		Path:  path,
		Kind:  kind,
		Data:  data,
		Depth: depth,
	}

	m.Entries = append(m.Entries, entry)

	pathID := hash.ID(entry.Path)
	m.paths.Track(pathID, entry.Path)
	m.byPath[pathID] = entry

	// First occurrence wins for base-name lookup; duplicated base names across
	// chromatograms are disambiguated by full path.
	baseID := hash.ID(entry.Base())
	m.bases.Track(baseID, entry.Base())
	if _, ok := m.byBase[baseID]; !ok {
		m.byBase[baseID] = entry
	}

	return entry
}

// Lookup resolves a block id to its manifest entry, trying the full path
// first and then the base name.
func (m *Manifest) Lookup(id string) (*Entry, bool) {
	if entry, ok := m.byPath[hash.ID(id)]; ok {
		if !m.paths.HasCollision() || entry.Path == id {
			return entry, true
		}
	}

	if entry, ok := m.byBase[hash.ID(id)]; ok {
		if !m.bases.HasCollision() || entry.Base() == id {
			return entry, true
		}
	}

	if m.paths.HasCollision() || m.bases.HasCollision() {
		return m.scan(id)
	}

	return nil, false
}

// scan is the linear fallback used only after a hash collision was observed.
func (m *Manifest) scan(id string) (*Entry, bool) {
	for _, entry := range m.Entries {
		if entry.Path == id {
			return entry, true
		}
	}
	for _, entry := range m.Entries {
		if entry.Base() == id {
			return entry, true
		}
	}

	return nil, false
}

// MetadataEntries returns the entries tagged as metadata XML, in walk order.
func (m *Manifest) MetadataEntries() []*Entry {
	var entries []*Entry
	for _, entry := range m.Entries {
		if entry.Kind == format.KindMetadataXML {
			entries = append(entries, entry)
		}
	}

	return entries
}

// Prune removes the container-level bookkeeping files named by Manifest.xml,
// plus Manifest.xml itself, leaving only chromatogram data. It is a no-op
// when the container has no Manifest.xml.
func (m *Manifest) Prune() {
	manifest, ok := m.Lookup("Manifest.xml")
	if !ok {
		return
	}

	drop := make(map[uint64]struct{})
	for _, name := range manifestFileNames(manifest.Data) {
		drop[hash.ID(name)] = struct{}{}
	}
	drop[hash.ID("Manifest.xml")] = struct{}{}

	kept := m.Entries[:0]
	for _, entry := range m.Entries {
		if _, gone := drop[hash.ID(entry.Path)]; gone {
			delete(m.byPath, hash.ID(entry.Path))
			continue
		}
		kept = append(kept, entry)
	}
	m.Entries = kept

	// A pruned entry may have shadowed a kept entry's base name (first
	// occurrence wins), so the base index is rebuilt from what remains.
	m.byBase = make(map[uint64]*Entry, len(m.Entries))
	for _, entry := range m.Entries {
		baseID := hash.ID(entry.Base())
		if _, ok := m.byBase[baseID]; !ok {
			m.byBase[baseID] = entry
		}
	}
}

func classifyEntry(name string) format.EntryKind {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".xml") {
		return format.KindMetadataXML
	}

	return format.KindBinaryBlock
}

func readEntry(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	payload, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	return payload, nil
}

// trimTrailingJunk truncates an embedded ZIP stream right after its last
// end-of-central-directory record. UNICORN writes padding bytes there that
// make strict readers reject the stream.
func trimTrailingJunk(data []byte) []byte {
	idx := bytes.LastIndex(data, eocdMagic)
	if idx < 0 {
		return data
	}

	end := idx + eocdRecordSize
	if end > len(data) {
		return data
	}

	return data[:end]
}
