package filesystem

import (
	"errors"
	"fmt"
)

var (
	ErrMkdir             = errors.New("failed to make directory")
	ErrDestinationExists = errors.New("destination directory already exists")
	ErrNotEmpty          = errors.New("directory not empty")
)

// IOError is returned by operations composed of several OS calls.
// It matches both its Kind and the underlying cause with errors.Is.
type IOError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *IOError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *IOError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
