package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(NewValidation("bad input")))
	assert.Equal(t, KindNotFound, KindOf(NewNotFound(nil, "missing")))
	assert.Equal(t, KindPrecondition, KindOf(NewPrecondition("not ready")))
	assert.Equal(t, KindUnderwriting, KindOf(NewUnderwriting(nil, "no reports")))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("handling alert: %w", NewPrecondition("no connection"))

	assert.True(t, IsKind(err, KindPrecondition))
	assert.False(t, IsKind(err, KindValidation))
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("row not found")
	err := NewNotFound(cause, "application %s not found", "app-1")

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "app-1")
}
