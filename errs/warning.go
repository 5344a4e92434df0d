package errs

import "fmt"

// Stage identifies the pipeline stage that produced a warning.
type Stage uint8

const (
	StageArchive   Stage = iota + 1 // archive walking
	StageSchema                     // metadata parsing
	StageBlock                      // binary block decoding
	StageNormalize                  // axis normalization
)

func (s Stage) String() string {
	switch s {
	case StageArchive:
		return "archive"
	case StageSchema:
		return "schema"
	case StageBlock:
		return "block"
	case StageNormalize:
		return "normalize"
	default:
		return "unknown"
	}
}

// Warning records a non-fatal problem encountered during a decode run.
//
// Warnings are collected on the resulting DecodedRun instead of aborting it: a
// run with some unreadable curves still returns the curves that succeeded.
// Subject names the entry path, block id, or curve the warning refers to.
type Warning struct {
	Stage   Stage
	Subject string
	Err     error
}

// Error implements the error interface so a Warning can be matched with
// errors.Is against the sentinel it wraps.
func (w Warning) Error() string {
	if w.Subject == "" {
		return fmt.Sprintf("%s: %v", w.Stage, w.Err)
	}

	return fmt.Sprintf("%s: %s: %v", w.Stage, w.Subject, w.Err)
}

// Unwrap returns the underlying error for errors.Is/errors.As matching.
func (w Warning) Unwrap() error {
	return w.Err
}

// Warn builds a Warning for the given stage and subject.
func Warn(stage Stage, subject string, err error) Warning {
	return Warning{Stage: stage, Subject: subject, Err: err}
}
