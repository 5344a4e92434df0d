package archive

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// manifestFileNames extracts the file names listed in a Manifest.xml payload.
//
// The document shape varies between UNICORN releases, but every variant lists
// one element per file whose name ends in "FileName". A scan over the token
// stream tolerates all of them; a payload that is not well-formed XML yields
// no names, which makes Prune a no-op.
func manifestFileNames(data []byte) []string {
	start := bytes.IndexByte(data, '<')
	if start < 0 {
		return nil
	}

	decoder := xml.NewDecoder(bytes.NewReader(data[start:]))

	var (
		names  []string
		inName bool
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return names
		}

		switch t := token.(type) {
		case xml.StartElement:
			inName = strings.HasSuffix(t.Name.Local, "FileName")
		case xml.CharData:
			if inName {
				if name := strings.TrimSpace(string(t)); name != "" {
					names = append(names, name)
				}
			}
		case xml.EndElement:
			inName = false
		}
	}

	return names
}
