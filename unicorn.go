// Package unicorn decodes ÄKTA UNICORN 6+ result archives into plottable
// curve data.
//
// A result archive is a ZIP container of nested ZIP containers holding
// metadata XML and raw binary data blocks. Decode walks the container, parses
// the metadata into curve declarations, decodes each referenced data block,
// classifies the curves, filters fraction labels, and optionally normalizes
// the result onto a shared axis and percentage scale:
//
//	run, err := unicorn.DecodeFile("run-042.zip", unicorn.WithRescale())
//	if err != nil { ... }
//	uv := run.CurveByClass(format.ClassUV)
//
// Container-level problems (not a ZIP, truncated, nested too deep) abort the
// decode; anything narrower — a malformed metadata entry, a missing or
// misaligned data block, a degenerate normalization range — drops the
// affected curve and records a warning on the returned run instead. A run
// with warnings is still a valid run.
package unicorn

import (
	"fmt"
	"os"
	"sort"

	"github.com/chromago/unicorn/archive"
	"github.com/chromago/unicorn/block"
	"github.com/chromago/unicorn/classify"
	"github.com/chromago/unicorn/curve"
	"github.com/chromago/unicorn/errs"
	"github.com/chromago/unicorn/format"
	"github.com/chromago/unicorn/internal/options"
	"github.com/chromago/unicorn/normalize"
	"github.com/chromago/unicorn/schema"
)

// resultInfoName is the container entry carrying run-level metadata.
const resultInfoName = "Result.xml"

type config struct {
	source       string
	rules        []classify.Rule
	keepOther    bool
	rescale      bool
	resample     bool
	resampleStep float64
	layout       format.BlockLayout
}

// Option is a functional option for Decode and DecodeFile.
type Option = options.Option[*config]

// WithSource sets the source name recorded on the run when decoding from
// memory. DecodeFile sets it to the file path.
func WithSource(source string) Option {
	return options.NoError(func(c *config) {
		c.source = source
	})
}

// WithRules replaces the built-in classification rule table.
func WithRules(rules []classify.Rule) Option {
	return options.NoError(func(c *config) {
		c.rules = rules
	})
}

// WithKeepOther controls whether curves classifying as ClassOther are kept on
// the run. They are kept by default.
func WithKeepOther(keep bool) Option {
	return options.NoError(func(c *config) {
		c.keepOther = keep
	})
}

// WithRescale fills each curve's Normalized values with its y series rescaled
// to the 0-100% range of the curve's own min/max.
func WithRescale() Option {
	return options.NoError(func(c *config) {
		c.rescale = true
	})
}

// WithResampling aligns all curves onto a shared x grid with the given step
// via linear interpolation. A non-positive step uses the smallest declared
// sample interval among the curves.
func WithResampling(step float64) Option {
	return options.NoError(func(c *config) {
		c.resample = true
		c.resampleStep = step
	})
}

// WithLayout forces the block record layout instead of per-block
// auto-detection.
func WithLayout(layout format.BlockLayout) Option {
	return options.New(func(c *config) error {
		switch layout {
		case format.LayoutImplicit, format.LayoutTimestamped:
			c.layout = layout
			return nil
		default:
			return fmt.Errorf("invalid block layout: %v", layout)
		}
	})
}

// DecodeFile reads and decodes a result archive from disk.
func DecodeFile(path string, opts ...Option) (*curve.DecodedRun, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return Decode(data, append([]Option{WithSource(path)}, opts...)...)
}

// Decode decodes a result archive held in memory.
//
// Returns:
//   - *curve.DecodedRun: The decoded run; per-curve problems are recorded in
//     its Warnings, never silently dropped
//   - error: archive.Walk errors (errs.ErrNotAContainer, errs.ErrTruncated,
//     errs.ErrTooDeep) or an invalid option
func Decode(data []byte, opts ...Option) (*curve.DecodedRun, error) {
	cfg := &config{
		source:    "(in-memory)",
		keepOther: true,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, fmt.Errorf("failed to apply decode options: %w", err)
	}

	manifest, err := archive.Walk(cfg.source, data)
	if err != nil {
		return nil, err
	}
	manifest.Prune()

	run := &curve.DecodedRun{Source: cfg.source}

	if entry, ok := manifest.Lookup(resultInfoName); ok {
		created, err := schema.ParseResultInfo(entry.Data)
		if err != nil {
			run.Warn(errs.StageSchema, entry.Path, err)
		}
		run.Created = created
	}

	declarations, events := parseMetadata(manifest, run)
	run.RawEvents = events

	decodeBlocks(manifest, declarations, run, cfg.layout)

	classifier := classify.New(cfg.rules)
	classifier.Apply(run.Curves)
	if !cfg.keepOther {
		run.Curves = dropOther(run.Curves)
	}

	run.Fractions = classifier.Fractions(events)
	sort.SliceStable(run.Fractions, func(i, j int) bool {
		return run.Fractions[i].X < run.Fractions[j].X
	})

	if cfg.resample {
		run.Curves = normalize.ResampleAll(run.Curves, cfg.resampleStep)
	}
	if cfg.rescale {
		run.Warnings = append(run.Warnings, normalize.RescaleAll(run.Curves)...)
	}

	return run, nil
}

// parseMetadata parses every metadata entry, collecting declarations and raw
// events across the whole container. A malformed entry is skipped with a
// warning; its siblings still parse.
func parseMetadata(manifest *archive.Manifest, run *curve.DecodedRun) ([]curve.Declaration, []curve.Event) {
	var (
		declarations []curve.Declaration
		events       []curve.Event
	)

	for _, entry := range manifest.MetadataEntries() {
		if entry.Base() == resultInfoName {
			continue
		}

		doc, err := schema.Parse(entry.Path, entry.Data)
		if err != nil {
			run.Warn(errs.StageSchema, entry.Path, err)
			continue
		}

		run.Warnings = append(run.Warnings, doc.Warnings...)
		declarations = append(declarations, doc.Declarations...)
		events = append(events, doc.Events...)
	}

	return declarations, events
}

// decodeBlocks decodes each declaration's data block. A declaration whose
// block is missing, misaligned, or unexplainable is dropped with a warning.
func decodeBlocks(manifest *archive.Manifest, declarations []curve.Declaration, run *curve.DecodedRun, layout format.BlockLayout) {
	var blockOpts []block.Option
	if layout != 0 {
		blockOpts = append(blockOpts, block.WithLayout(layout))
	}

	decoder, err := block.NewDecoder(blockOpts...)
	if err != nil {
		run.Warn(errs.StageBlock, run.Source, err)
		return
	}

	for _, decl := range declarations {
		c, err := decoder.DecodeFrom(decl, manifest)
		if err != nil {
			run.Warn(errs.StageBlock, decl.Name, err)
			continue
		}
		run.Curves = append(run.Curves, c)
	}
}

func dropOther(curves []curve.Curve) []curve.Curve {
	kept := curves[:0]
	for _, c := range curves {
		if c.Class != format.ClassOther {
			kept = append(kept, c)
		}
	}

	return kept
}
