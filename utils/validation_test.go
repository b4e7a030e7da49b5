package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRequest struct {
	Query string `json:"query" validate:"required,max=500"`
	Limit int    `json:"limit,omitempty" validate:"omitempty,gte=1,lte=20"`
	Kind  string `json:"kind" validate:"omitempty,oneof=qa_pair statement"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		input      testRequest
		wantErr    bool
		wantFields []string
	}{
		{name: "valid", input: testRequest{Query: "What is PMF?"}},
		{name: "valid with limit", input: testRequest{Query: "What is PMF?", Limit: 20, Kind: "statement"}},
		{name: "missing query", input: testRequest{}, wantErr: true, wantFields: []string{"query"}},
		{name: "limit too large", input: testRequest{Query: "q", Limit: 21}, wantErr: true, wantFields: []string{"limit"}},
		{name: "unknown kind", input: testRequest{Query: "q", Kind: "essay"}, wantErr: true, wantFields: []string{"kind"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			fields := GetValidationFields(err)
			for _, f := range tt.wantFields {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestValidationMessages(t *testing.T) {
	err := ValidateStruct(testRequest{Query: "q", Limit: 50, Kind: "essay"})
	require.Error(t, err)

	fields := GetValidationFields(err)
	assert.Equal(t, "limit must be less than or equal to 20", fields["limit"])
	assert.Equal(t, "kind must be one of: qa_pair statement", fields["kind"])
	assert.Equal(t, "Validation failed: kind must be one of: qa_pair statement; limit must be less than or equal to 20", err.Error())

	details := FieldDetails(err)
	assert.Equal(t, "limit must be less than or equal to 20", details["limit"])
}

func TestGetValidationFields_OtherErrors(t *testing.T) {
	assert.False(t, IsValidationError(errors.New("plain")))
	assert.Nil(t, GetValidationFields(errors.New("plain")))
	assert.Nil(t, FieldDetails(nil))
}
