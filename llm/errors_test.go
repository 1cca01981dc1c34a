package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	base := errors.New("boom")

	transient := NewTransientError(base)
	assert.True(t, IsTransient(transient))
	assert.False(t, IsFatal(transient))
	assert.Equal(t, "boom", transient.Error())
	assert.ErrorIs(t, transient, base)

	fatal := NewFatalError(base)
	assert.True(t, IsFatal(fatal))
	assert.False(t, IsTransient(fatal))
	assert.ErrorIs(t, fatal, base)
}

func TestClassificationSurvivesWrapping(t *testing.T) {
	inner := NewTransientError(errors.New("rate limited"))
	wrapped := fmt.Errorf("completion failed after 3 attempts: %w", inner)

	assert.True(t, IsTransient(wrapped))
	assert.False(t, IsFatal(wrapped))
}

func TestPlainErrorsAreNeither(t *testing.T) {
	err := errors.New("plain")
	assert.False(t, IsTransient(err))
	assert.False(t, IsFatal(err))
}
