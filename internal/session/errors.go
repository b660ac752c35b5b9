package session

import (
	"errors"
	"fmt"
)

// ErrNoDocuments is returned by Ask before any batch has been processed.
var ErrNoDocuments = errors.New("no documents processed yet")

// ProcessError reports a failed Process call. The previously active index,
// if any, is still in place.
type ProcessError struct {
	// Stage is "load" or "index".
	Stage string
	Err   error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("processing documents (%s): %v", e.Stage, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// AskError reports a failed question.
type AskError struct {
	Question string
	Err      error
}

func (e *AskError) Error() string {
	return fmt.Sprintf("answering %q: %v", e.Question, e.Err)
}

func (e *AskError) Unwrap() error {
	return e.Err
}
