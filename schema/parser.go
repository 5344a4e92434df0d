// Package schema parses UNICORN metadata XML entries into curve declarations.
//
// The instrument's descriptor documents are loosely typed and vary between
// releases; this package normalizes them at the boundary into the fixed
// curve.Declaration record so no downstream stage touches raw XML again.
// Payloads may be UTF-8 or UTF-16 with or without a BOM, and often carry
// serialization junk before the first '<'.
package schema

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chromago/unicorn/curve"
	"github.com/chromago/unicorn/errs"
)

// Document is the parsed form of one metadata XML entry.
type Document struct {
	// Path is the manifest path of the source entry.
	Path string
	// Declarations are the curve declarations in document order.
	Declarations []curve.Declaration
	// Events are the raw event-curve entries (fraction marks, injections, ...).
	Events []curve.Event
	// Warnings records per-declaration problems (missing block reference,
	// missing sample interval). The document itself still parsed.
	Warnings []errs.Warning
}

// Descriptor document shape shared by UNICORN 6/7 releases. Unknown elements
// are ignored by encoding/xml, which is what makes the parser tolerant of
// release-to-release drift.
type chromatogramXML struct {
	Curves      []curveXML      `xml:"Curves>Curve"`
	EventCurves []eventCurveXML `xml:"EventCurves>EventCurve"`
}

type curveXML struct {
	DataType string   `xml:"CurveDataType,attr"`
	Name     string   `xml:"Name"`
	Unit     string   `xml:"AmplitudeUnit"`
	Points   []string `xml:"CurvePoints>CurvePoint>BinaryCurvePointsFileName"`
	Rate     *float64 `xml:"SamplingRate"`
	Step     *float64 `xml:"VolumeStep"`
	Scale    *float64 `xml:"Scale"`
	Offset   *float64 `xml:"Offset"`
}

type eventCurveXML struct {
	Name     string     `xml:"Name"`
	Original string     `xml:"IsOriginalData"`
	Events   []eventXML `xml:"Events>Event"`
}

type eventXML struct {
	Volume float64 `xml:"EventVolume"`
	Text   string  `xml:"EventText"`
}

// Parse parses one metadata entry's payload into a Document.
//
// A payload that is not well-formed markup at all returns
// errs.ErrMalformedXML, which is fatal for this entry only; the caller keeps
// parsing the remaining metadata entries. Per-declaration problems are
// collected as warnings on the returned Document instead.
func Parse(path string, payload []byte) (*Document, error) {
	text, err := decodeText(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, errs.ErrMalformedXML)
	}

	var doc chromatogramXML
	if err := xml.Unmarshal(text, &doc); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, errs.ErrMalformedXML)
	}

	result := &Document{Path: path}

	for _, node := range doc.Curves {
		decl, warns, ok := buildDeclaration(path, node)
		result.Warnings = append(result.Warnings, warns...)
		if !ok {
			continue
		}
		result.Declarations = append(result.Declarations, decl)
	}

	for _, ec := range doc.EventCurves {
		// UNICORN stores both the instrument's original event list and edited
		// copies; only the original is trustworthy.
		if ec.Original != "" && !strings.EqualFold(ec.Original, "true") {
			continue
		}
		for _, ev := range ec.Events {
			result.Events = append(result.Events, curve.Event{
				Curve: ec.Name,
				Label: ev.Text,
				X:     ev.Volume,
			})
		}
	}

	return result, nil
}

func buildDeclaration(path string, node curveXML) (curve.Declaration, []errs.Warning, bool) {
	var warns []errs.Warning

	blockID := ""
	for _, p := range node.Points {
		if p = strings.TrimSpace(p); p != "" {
			blockID = p
			break
		}
	}

	if blockID == "" {
		warns = append(warns, errs.Warn(errs.StageSchema, declSubject(path, node.Name), errs.ErrMissingBlockRef))
		return curve.Declaration{}, warns, false
	}

	decl := curve.Declaration{
		Name:    node.Name,
		BlockID: blockID,
		Unit:    strings.TrimSpace(node.Unit),
		Scale:   1.0,
	}

	if node.Scale != nil {
		decl.Scale = *node.Scale
	}
	if node.Offset != nil {
		decl.Offset = *node.Offset
	}

	switch {
	case node.Step != nil && *node.Step > 0:
		decl.Interval = *node.Step
	case node.Rate != nil && *node.Rate > 0:
		decl.Interval = 1.0 / *node.Rate
	default:
		// Without a declared interval the axis is a bare sample index, which
		// downstream normalization needs to know about.
		decl.Interval = 1.0
		decl.IndexAxis = true
		warns = append(warns, errs.Warn(errs.StageSchema, declSubject(path, node.Name), errs.ErrMissingInterval))
	}

	return decl, warns, true
}

func declSubject(path, name string) string {
	if name == "" {
		return path
	}

	return path + ": " + name
}

// ParseResultInfo extracts the run creation date from a Result.xml payload.
// The Created node sits at a release-dependent depth, so the document is
// scanned rather than unmarshalled. Returns the zero time when the node is
// absent or unparseable.
func ParseResultInfo(payload []byte) (time.Time, error) {
	text, err := decodeText(payload)
	if err != nil {
		return time.Time{}, fmt.Errorf("Result.xml: %v: %w", err, errs.ErrMalformedXML)
	}

	decoder := xml.NewDecoder(bytes.NewReader(text))

	var (
		created   string
		inCreated bool
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return time.Time{}, fmt.Errorf("Result.xml: %v: %w", err, errs.ErrMalformedXML)
		}

		switch t := token.(type) {
		case xml.StartElement:
			inCreated = t.Name.Local == "Created"
		case xml.CharData:
			if inCreated && created == "" {
				created = strings.TrimSpace(string(t))
			}
		case xml.EndElement:
			inCreated = false
		}
	}

	if len(created) < 10 {
		return time.Time{}, nil
	}

	ts, err := time.Parse("2006-01-02", created[:10])
	if err != nil {
		return time.Time{}, nil
	}

	return ts, nil
}

// stripLeadingJunk drops serialization bytes before the first '<'.
func stripLeadingJunk(data []byte) []byte {
	if idx := bytes.IndexByte(data, '<'); idx > 0 {
		return data[idx:]
	}

	return data
}
