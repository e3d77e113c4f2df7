package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorRequired(t *testing.T) {
	err := NewValidator().
		Field("filename", "", Required).
		Error(CodeInvalidSource)
	require.Error(t, err)

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidInput, appErr.Kind)
	assert.Equal(t, CodeInvalidSource, appErr.Code)
	assert.Contains(t, appErr.Message, "filename")
}

func TestValidatorRequiredWhitespaceOnly(t *testing.T) {
	err := NewValidator().Field("document_id", "   ", Required).Error(CodeInvalidSource)
	assert.Error(t, err)
}

func TestValidatorOneOf(t *testing.T) {
	rule := OneOf("PAN", "AADHAAR")

	assert.Nil(t, rule("document_type", ""))
	assert.Nil(t, rule("document_type", "PAN"))
	require.NotNil(t, rule("document_type", "pan"))
	assert.Contains(t, rule("document_type", "VOTER_ID").Message, "must be one of")
}

func TestValidatorCollectsAllErrors(t *testing.T) {
	v := NewValidator().
		Field("document_id", "", Required).
		Field("organization_id", "", Required).
		Field("property_id", "x", Required)
	require.True(t, v.HasErrors())
	assert.Contains(t, v.ErrorMessage(), "document_id")
	assert.Contains(t, v.ErrorMessage(), "organization_id")
	assert.NotContains(t, v.ErrorMessage(), "property_id")
}

func TestValidatorNoErrors(t *testing.T) {
	err := NewValidator().Field("filename", "doc.png", Required).Error(CodeInvalidSource)
	assert.NoError(t, err)
}
