//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRequest_Validate(t *testing.T) {
	tests := []struct {
		name       string
		request    GenerateRequest
		wantFields []string
	}{
		{
			name:    "valid",
			request: GenerateRequest{JobTitle: "Engineer", CompanyName: "Acme"},
		},
		{
			name:       "missing title and company",
			request:    GenerateRequest{UserQuestion: "why us?"},
			wantFields: []string{"job_title", "company_name"},
		},
		{
			name:       "too many variations",
			request:    GenerateRequest{JobTitle: "Engineer", CompanyName: "Acme", NumVariations: 9},
			wantFields: []string{"num_variations"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			for _, f := range tt.wantFields {
				assert.True(t, ve.Has(f), "expected %s in %v", f, ve.Fields)
			}
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := (&CreateDraftRequest{CoverLetter: "text"}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job_title is required")
	assert.Contains(t, err.Error(), "company_name is required")
}

func TestGenerateRequest_Variations(t *testing.T) {
	assert.Equal(t, 0, (&GenerateRequest{NumVariations: 4}).Variations())
	assert.Equal(t, DefaultNumVariations, (&GenerateRequest{IncludeVariations: true}).Variations())
	assert.Equal(t, 2, (&GenerateRequest{IncludeVariations: true, NumVariations: 2}).Variations())
	assert.Equal(t, MaxNumVariations, (&GenerateRequest{IncludeVariations: true, NumVariations: 50}).Variations())
}

func TestJobPostingInput_Validate(t *testing.T) {
	assert.NoError(t, (&JobPostingInput{JobTitle: "SRE", CompanyName: "Acme"}).Validate())

	err := (&JobPostingInput{JobTitle: "SRE"}).Validate()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("companyName"))
}

func TestCoverLetter_EditedSections(t *testing.T) {
	cl := CoverLetter{Sections: map[string]Section{
		"header": {IsEdited: true},
		"body":   {IsEdited: true},
		"intro":  {},
	}}
	assert.Equal(t, 2, cl.EditedSections())
}

func TestJobPosting_Text(t *testing.T) {
	p := JobPosting{JobTitle: "SRE", CompanyName: "Acme", Requirements: "Go, Kubernetes"}
	assert.Equal(t, "SRE\nAcme\nGo, Kubernetes", p.Text())
}
