package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsMatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("load goods: %w", NotFound("goods with id %d not found", 7))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "goods with id 7 not found", Message(err))
}

func TestMessageOfPlainError(t *testing.T) {
	assert.Equal(t, "", Message(errors.New("boom")))
	assert.Equal(t, "insufficient stock for goods 'Tea'", InvalidInput("insufficient stock for goods '%s'", "Tea").Error())
	assert.ErrorIs(t, AlreadyExists("dup"), ErrAlreadyExists)
	assert.ErrorIs(t, Unauthorized("no token"), ErrUnauthorized)
}
