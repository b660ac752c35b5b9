package index

import (
	"errors"
	"fmt"
)

// ErrModelMismatch is returned when an index is used with an embedding model
// other than the one that built it.
var ErrModelMismatch = errors.New("embedding model does not match index")

// EmbeddingError reports a failure of the embedding model while building an
// index or embedding a query.
type EmbeddingError struct {
	// Stage is "index" or "query".
	Stage string
	Model string
	Err   error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding %s with %s: %v", e.Stage, e.Model, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}
