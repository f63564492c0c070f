package domain

import (
	"errors"
	"fmt"
)

// ErrJobNotFound is returned by stores when no job exists for the given id.
var ErrJobNotFound = errors.New("analysis job not found")

// ErrPostingNotFound is returned by stores when no posting exists for the
// given id.
var ErrPostingNotFound = errors.New("job posting not found")

// ExtractionErrorKind classifies why text extraction failed. All kinds are
// non-retryable: the same bytes produce the same outcome.
type ExtractionErrorKind string

const (
	// UnsupportedFormat means the file's declared format is outside the
	// supported set. No I/O is attempted.
	UnsupportedFormat ExtractionErrorKind = "unsupported_format"
	// EmptyOrUnreadable means extraction ran but produced less than the
	// minimum amount of usable text.
	EmptyOrUnreadable ExtractionErrorKind = "empty_or_unreadable"
	// ExtractionEngineFailure means the underlying parser or OCR engine
	// failed on the file.
	ExtractionEngineFailure ExtractionErrorKind = "extraction_engine_failure"
)

// ExtractionError wraps an extraction failure with its kind so the worker
// can record a specific, user-presentable reason on the job.
type ExtractionError struct {
	Kind   ExtractionErrorKind
	Detail string // short human-readable reason, safe to show to the requester
	Err    error  // underlying cause, not exposed to requesters
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError builds a typed extraction failure.
func NewExtractionError(kind ExtractionErrorKind, detail string, err error) *ExtractionError {
	return &ExtractionError{Kind: kind, Detail: detail, Err: err}
}
