package types

import "time"

// JobPostingStatusActive marks a posting that can be used for generation.
const JobPostingStatusActive = "active"

// JobPostingInput is a job posting submitted as text.
type JobPostingInput struct {
	JobTitle       string `json:"jobTitle" validate:"required"`
	CompanyName    string `json:"companyName" validate:"required"`
	JobDescription string `json:"jobDescription,omitempty"`
	Requirements   string `json:"requirements,omitempty"`
	CompanyVision  string `json:"companyVision,omitempty"`
}

// Validate checks required fields.
func (in *JobPostingInput) Validate() error {
	return validateStruct(in)
}

// JobPosting is a stored job posting.
type JobPosting struct {
	ID             string    `json:"id"`
	JobTitle       string    `json:"jobTitle"`
	CompanyName    string    `json:"companyName"`
	JobDescription string    `json:"jobDescription,omitempty"`
	Requirements   string    `json:"requirements,omitempty"`
	CompanyVision  string    `json:"companyVision,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	Status         string    `json:"status"`
	SourceFile     string    `json:"sourceFile,omitempty"`
}

// Text returns the posting as a single block used for retrieval.
func (p *JobPosting) Text() string {
	text := p.JobTitle + "\n" + p.CompanyName
	for _, part := range []string{p.JobDescription, p.Requirements, p.CompanyVision} {
		if part != "" {
			text += "\n" + part
		}
	}
	return text
}

// JobPostingList is the response for listing job postings.
type JobPostingList struct {
	JobPostings []JobPosting `json:"job_postings"`
	Count       int          `json:"count"`
}
