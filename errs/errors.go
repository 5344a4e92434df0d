// Package errs defines the sentinel errors shared across the unicorn module.
//
// Errors fall into three families that mirror the decode pipeline:
//
//   - Archive errors: the container itself is unusable; the whole run aborts.
//   - Schema errors: one metadata entry is unusable; other entries still parse.
//   - Block errors: one curve's data block is unusable; the curve is dropped and
//     the run continues with the remaining curves.
//
// Callers match with errors.Is; pipeline stages wrap these sentinels with
// fmt.Errorf("...: %w", err) to add the entry path or block id.
package errs

import "errors"

// Archive-level errors. Any of these abort the run.
var (
	// ErrNotAContainer indicates the input does not start with a ZIP signature.
	ErrNotAContainer = errors.New("input is not a result container")

	// ErrTruncated indicates an entry's declared size exceeds the remaining bytes.
	ErrTruncated = errors.New("container is truncated")

	// ErrTooDeep indicates nested containers exceed the recursion depth limit.
	ErrTooDeep = errors.New("container nesting too deep")
)

// Schema-level errors. Fatal for one metadata entry, non-fatal for the run.
var (
	// ErrMalformedXML indicates a metadata entry is not well-formed markup.
	ErrMalformedXML = errors.New("malformed metadata xml")

	// ErrMissingBlockRef indicates a declaration node has no data-block reference.
	ErrMissingBlockRef = errors.New("declaration has no block reference")

	// ErrMissingInterval indicates a declaration has no sample interval; the
	// decoder falls back to a unit-less index axis.
	ErrMissingInterval = errors.New("declaration has no sample interval")
)

// Block-level errors. The affected curve is dropped, the run continues.
var (
	// ErrMissingBlock indicates a declaration references a block id that does
	// not exist in the manifest.
	ErrMissingBlock = errors.New("referenced data block not found")

	// ErrMisaligned indicates a block's byte length is not an exact multiple of
	// the record width.
	ErrMisaligned = errors.New("data block length misaligned")

	// ErrNonMonotonicAxis indicates a block's explicit x values decrease. The
	// curve is dropped rather than re-sorted: out-of-order input is a
	// data-corruption signal.
	ErrNonMonotonicAxis = errors.New("non-monotonic x axis")

	// ErrUnknownBlockLayout indicates neither record layout passes the
	// monotonicity probe for a block.
	ErrUnknownBlockLayout = errors.New("unknown data block layout")
)

// Normalization warnings.
var (
	// ErrDegenerateRange indicates a curve's min and max are equal, so the
	// 0-100% rescale maps every sample to 0.
	ErrDegenerateRange = errors.New("degenerate value range")
)

// Snapshot format errors.
var (
	// ErrInvalidHeaderSize indicates snapshot data is shorter than the fixed header.
	ErrInvalidHeaderSize = errors.New("invalid snapshot header size")

	// ErrInvalidMagicNumber indicates the snapshot header magic does not match.
	ErrInvalidMagicNumber = errors.New("invalid snapshot magic number")

	// ErrInvalidHeaderFlags indicates the snapshot header flags are malformed.
	ErrInvalidHeaderFlags = errors.New("invalid snapshot header flags")

	// ErrInvalidIndexEntrySize indicates a snapshot index entry is too short.
	ErrInvalidIndexEntrySize = errors.New("invalid snapshot index entry size")

	// ErrInvalidPayloadOffset indicates a snapshot payload offset points outside
	// the data.
	ErrInvalidPayloadOffset = errors.New("invalid snapshot payload offset")
)
