package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusCode(nil))
	assert.Equal(t, http.StatusBadRequest, StatusCode(NewValidationError("title", "required")))
	assert.Equal(t, http.StatusBadRequest, StatusCode(fmt.Errorf("create: %w", NewValidationError("title", "required"))))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(ErrUnauthorized))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(ErrNotAuthor))
	assert.Equal(t, http.StatusNotFound, StatusCode(fmt.Errorf("recipe: %w", ErrNotFound)))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("boom")))
}

func TestValidationError(t *testing.T) {
	var ve ValidationError
	assert.Nil(t, ve.OrNil())

	ve.Add("servings", "must be between 1 and 5")
	ve.Add("servings", "ignored")
	ve.Add("cook_time_in_min", "must be a multiple of 5")

	err := ve.OrNil()
	assert.Error(t, err)
	assert.Equal(t, "validation failed: cook_time_in_min: must be a multiple of 5; servings: must be between 1 and 5", err.Error())
	assert.True(t, IsValidation(err))
}
