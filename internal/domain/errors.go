package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyIndex is returned when querying an index built from zero chunks.
var ErrEmptyIndex = errors.New("embedding index is empty")

// FetchError reports that a source document could not be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StructureError reports that a fetched page lacks the expected content container.
type StructureError struct {
	URL     string
	Missing string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("page %s: could not find %s", e.URL, e.Missing)
}

// GenerationError wraps a failed model invocation.
type GenerationError struct {
	Backend string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Backend, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
