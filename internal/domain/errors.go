package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat    = errors.New("unsupported file format")
	ErrMalformedJSON        = errors.New("malformed json payload")
	ErrMalformedCSV         = errors.New("malformed csv payload")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrEmptyBatch           = errors.New("batch contains no records")
	ErrBatchNotFound        = errors.New("batch not found")
	ErrInvalidRecordPayload = errors.New("record payload must be a json object")
	ErrInvalidRecord        = errors.New("record failed type coercion")
	ErrUnsupportedExport    = errors.New("unsupported export format")
)

// SubmissionError reports a collaborator failure that happened before any
// per-record outcome could be attributed. The whole batch is lost.
type SubmissionError struct {
	StatusCode int
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("batch submission rejected (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("batch submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
