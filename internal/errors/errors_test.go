package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/vocabflash/internal/errors"
)

func TestAs(t *testing.T) {
	notFound := errors.NewNotFoundError("deck", 3)
	wrapped := fmt.Errorf("loading: %w", notFound)

	assert.Same(t, notFound, errors.As(wrapped))

	plain := stderrors.New("disk full")
	appErr := errors.As(plain)
	assert.Equal(t, errors.ErrCodeInternal, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, appErr, plain)
}

func TestNewConflictError(t *testing.T) {
	cause := stderrors.New("session: no current card")
	appErr := errors.NewConflictError(cause)

	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "CONFLICT: session: no current card (session: no current card)", appErr.Error())
	assert.ErrorIs(t, appErr, cause)
}

func TestNewValidationError(t *testing.T) {
	appErr := errors.NewValidationError("direction", "must be forward or reverse")
	assert.Equal(t, "VALIDATION_ERROR: validation failed for direction: must be forward or reverse", appErr.Error())
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}
