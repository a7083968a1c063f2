package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Format(t *testing.T) {
	err := NewExternalError("statistics api unavailable", fmt.Errorf("status 503"))
	assert.Equal(t, "EXTERNAL: statistics api unavailable: status 503", err.Error())

	notFound := NewNotFoundError("facility 7 not found")
	assert.Equal(t, "NOT_FOUND: facility 7 not found", notFound.Error())
}

func TestTypeOf_UnwrapsChain(t *testing.T) {
	wrapped := fmt.Errorf("loading snapshot: %w", NewNotFoundError("facility 7 not found"))

	assert.Equal(t, ErrorTypeNotFound, TypeOf(wrapped))
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, ErrorTypeInternal, TypeOf(fmt.Errorf("plain")))
	assert.False(t, IsNotFound(nil))
}
