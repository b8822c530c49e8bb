package api

import (
	"context"
	"io"
	"net/http"

	"github.com/jonathan/cover-letter-studio/internal/types"
)

// ListJobPostings lists stored job postings.
func (c *Client) ListJobPostings(ctx context.Context) ([]types.JobPosting, error) {
	var list types.JobPostingList
	if err := c.do(ctx, http.MethodGet, "/job-postings", nil, &list); err != nil {
		return nil, err
	}
	return list.JobPostings, nil
}

// GetJobPosting fetches one job posting.
func (c *Client) GetJobPosting(ctx context.Context, id string) (*types.JobPosting, error) {
	var posting types.JobPosting
	if err := c.do(ctx, http.MethodGet, "/job-postings/"+escape(id), nil, &posting); err != nil {
		return nil, err
	}
	return &posting, nil
}

// SubmitJobPosting stores a job posting entered as text.
func (c *Client) SubmitJobPosting(ctx context.Context, in *types.JobPostingInput) (*types.JobPosting, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var posting types.JobPosting
	if err := c.do(ctx, http.MethodPost, "/submit-job-posting", in, &posting); err != nil {
		return nil, err
	}
	return &posting, nil
}

// UploadJobPosting stores a job posting from a .txt or .pdf file.
func (c *Client) UploadJobPosting(ctx context.Context, jobTitle, companyName, filename string, file io.Reader) (*types.JobPosting, error) {
	in := &types.JobPostingInput{JobTitle: jobTitle, CompanyName: companyName}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	fields := map[string]string{
		"jobTitle":    jobTitle,
		"companyName": companyName,
	}
	var posting types.JobPosting
	if err := c.doMultipart(ctx, "/upload-job-posting", fields, filename, file, &posting); err != nil {
		return nil, err
	}
	return &posting, nil
}
