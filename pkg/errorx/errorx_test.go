package errorx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrapf(cause, CodeDBError, "save user %d", 7)

	assert.Equal(t, "save user 7: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeDBError, GetCode(fmt.Errorf("outer: %w", err)))
}

func TestGetCodeDefaultsToServerBusy(t *testing.T) {
	assert.Equal(t, CodeServerBusy, GetCode(errors.New("boom")))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(New(CodeNotFound, "user 1")))
	assert.True(t, IsNotFound(errors.New("record not found")))
	assert.False(t, IsNotFound(New(CodeDBError, "db")))
	assert.False(t, IsNotFound(nil))
}
