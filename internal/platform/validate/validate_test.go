// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/promptlib/internal/platform/apperr"
	"github.com/taibuivan/promptlib/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		hasError bool
	}{
		{"valid_string", "Code Review", false},
		{"empty_string", "", true},
		{"whitespace_only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required("title", tt.value)

			if tt.hasError {
				ae := apperr.As(v.Err())
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, "title", ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_OneOf checks the enumerated settings values.
*/
func TestValidator_OneOf(t *testing.T) {
	v := &validate.Validator{}
	v.OneOf("theme", "dark", "system", "light", "dark")
	assert.False(t, v.HasErrors())

	v.OneOf("cardSize", "xl", "m", "l")
	ae := apperr.As(v.Err())
	require.NotNil(t, ae)
	assert.Equal(t, "Must be one of: m, l", ae.Details[0].Message)
}

/*
TestValidator_UUIDs reports the offending element index.
*/
func TestValidator_UUIDs(t *testing.T) {
	v := &validate.Validator{}
	v.UUIDs("tagIds", []string{"0192a3b4-c5d6-7e8f-9a0b-1c2d3e4f5a6b", "nope"})

	ae := apperr.As(v.Err())
	require.NotNil(t, ae)
	require.Len(t, ae.Details, 1)
	assert.Equal(t, "tagIds[1]", ae.Details[0].Field)
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	err := (&validate.Validator{}).
		Required("name", "writing").
		MaxLen("name", "writing", 64).
		Slug("slug", "writing").
		Custom("scope", false, "unused").
		Err()
	assert.NoError(t, err)

	err = (&validate.Validator{}).
		Required("name", "").
		Slug("slug", "Not A Slug").
		Err()
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Len(t, ae.Details, 2)
}
