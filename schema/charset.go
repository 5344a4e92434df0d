package schema

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeText converts a metadata payload to plain UTF-8 with any leading
// serialization junk removed, ready for encoding/xml.
//
// The instrument writes descriptor entries as UTF-8 or UTF-16 in either byte
// order. BOMs decide when present; without one, a NUL adjacent to the leading
// '<' betrays UTF-16 and its byte order.
func decodeText(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeUTF16(data, unicode.LittleEndian, unicode.ExpectBOM)
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeUTF16(data, unicode.BigEndian, unicode.ExpectBOM)
	case bytes.HasPrefix(data, bomUTF8):
		return stripLeadingJunk(data[len(bomUTF8):]), nil
	}

	if len(data) >= 2 {
		switch {
		case data[0] == '<' && data[1] == 0x00:
			return decodeUTF16(data, unicode.LittleEndian, unicode.IgnoreBOM)
		case data[0] == 0x00 && data[1] == '<':
			return decodeUTF16(data, unicode.BigEndian, unicode.IgnoreBOM)
		}
	}

	return stripLeadingJunk(data), nil
}

func decodeUTF16(data []byte, order unicode.Endianness, bom unicode.BOMPolicy) ([]byte, error) {
	decoder := unicode.UTF16(order, bom).NewDecoder()

	text, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return nil, err
	}

	return stripLeadingJunk(text), nil
}
