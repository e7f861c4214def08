package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"text":  "This field is required.",
		"group": "Select a valid choice.",
	}}
	assert.Equal(t, "validation failed: group: Select a valid choice.; text: This field is required.", err.Error())

	wrapped := fmt.Errorf("create post: %w", err)
	ve, ok := IsValidation(wrapped)
	require.True(t, ok)
	assert.Len(t, ve.Fields, 2)

	_, ok = IsValidation(ErrNotFound)
	assert.False(t, ok)
}

func TestValidateStructUsesFormNames(t *testing.T) {
	err := validateStruct(PostInput{})
	ve, ok := IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "This field is required.", ve.Fields["text"])

	err = validateStruct(SignupInput{Username: "leo", Password: "short"})
	ve, ok = IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "Ensure this value has at least 8 characters.", ve.Fields["password"])
}
