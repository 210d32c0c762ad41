package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchError(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		err := &FetchError{URL: "https://example.org", StatusCode: 404}
		assert.Equal(t, "fetch https://example.org: unexpected status 404", err.Error())
	})

	t.Run("transport", func(t *testing.T) {
		err := fmt.Errorf("process: %w", &FetchError{URL: "u", Err: context.DeadlineExceeded})
		var fe *FetchError
		assert.True(t, errors.As(err, &fe))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestGenerationError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &GenerationError{Backend: "ollama", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "ollama generation failed")
}

func TestStructureError(t *testing.T) {
	err := &StructureError{URL: "u", Missing: "div.mw-parser-output"}
	assert.Equal(t, "page u: could not find div.mw-parser-output", err.Error())
}
