package qa

import (
	"errors"
	"fmt"

	"github.com/ziadkadry99/docqa/internal/index"
)

var (
	// ErrNoIndex is returned when a question is asked before any index exists.
	ErrNoIndex = errors.New("no documents have been indexed")
	// ErrEmptyQuestion is returned for blank questions.
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrModelMismatch is returned when the engine's embedder is not the
	// model the index was built with.
	ErrModelMismatch = index.ErrModelMismatch
)

// AnswerGenerationError reports a failed completion request.
type AnswerGenerationError struct {
	Model string
	Err   error
}

func (e *AnswerGenerationError) Error() string {
	return fmt.Sprintf("generating answer with %s: %v", e.Model, e.Err)
}

func (e *AnswerGenerationError) Unwrap() error {
	return e.Err
}
