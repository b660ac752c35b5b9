package loader

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat marks files whose content could not be interpreted as text.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// UnreadableFileError reports a path that could not be opened or parsed.
type UnreadableFileError struct {
	Path string
	Err  error
}

func (e *UnreadableFileError) Error() string {
	return fmt.Sprintf("unreadable file %s: %v", e.Path, e.Err)
}

func (e *UnreadableFileError) Unwrap() error {
	return e.Err
}

func unreadable(path string, err error) error {
	var ue *UnreadableFileError
	if errors.As(err, &ue) {
		return err
	}
	return &UnreadableFileError{Path: path, Err: err}
}
