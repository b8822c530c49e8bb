// Package types provides type definitions for the requests and documents
// exchanged between the cover letter client and backend.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// JobContext is the job information a draft is created with.
type JobContext struct {
	JobTitle       string `json:"job_title"`
	CompanyName    string `json:"company_name"`
	UserBackground string `json:"user_background,omitempty"`
	UserQuestion   string `json:"user_question,omitempty"`
}

// CreateDraftRequest stores a generated letter so it can be edited.
type CreateDraftRequest struct {
	CoverLetter    string `json:"cover_letter" validate:"required"`
	JobTitle       string `json:"job_title" validate:"required"`
	CompanyName    string `json:"company_name" validate:"required"`
	UserBackground string `json:"user_background,omitempty"`
	UserQuestion   string `json:"user_question,omitempty"`
}

// NewCreateDraftRequest builds a draft request from letter text and job context.
func NewCreateDraftRequest(text string, job JobContext) *CreateDraftRequest {
	return &CreateDraftRequest{
		CoverLetter:    text,
		JobTitle:       job.JobTitle,
		CompanyName:    job.CompanyName,
		UserBackground: job.UserBackground,
		UserQuestion:   job.UserQuestion,
	}
}

// Validate checks required fields.
func (r *CreateDraftRequest) Validate() error {
	return validateStruct(r)
}

// CreateDraftResponse carries the version ID issued for a new draft.
type CreateDraftResponse struct {
	VersionID string `json:"version_id"`
	Message   string `json:"message,omitempty"`
}

// UpdateSectionRequest replaces the content of one section.
type UpdateSectionRequest struct {
	VersionID   string `json:"version_id" validate:"required"`
	SectionName string `json:"section_name" validate:"required"`
	NewContent  string `json:"new_content"`
}

// Validate checks required fields.
func (r *UpdateSectionRequest) Validate() error {
	return validateStruct(r)
}

// UpdateWithDescriptionRequest replaces a section and labels the history entry.
type UpdateWithDescriptionRequest struct {
	NewContent        string `json:"new_content"`
	ChangeDescription string `json:"change_description,omitempty"`
}

// SaveAllRequest replaces the content of every section at once.
type SaveAllRequest struct {
	VersionID string            `json:"version_id" validate:"required"`
	Sections  map[string]string `json:"sections" validate:"required"`
}

// Validate checks required fields.
func (r *SaveAllRequest) Validate() error {
	return validateStruct(r)
}

// SectionSnapshot is one saved historical copy of a section.
type SectionSnapshot struct {
	VersionID         string    `json:"version_id"`
	Content           string    `json:"content"`
	CreatedAt         time.Time `json:"created_at"`
	ChangeDescription string    `json:"change_description,omitempty"`
}

// Section is the stored state of one section of a cover letter.
type Section struct {
	SectionName    string            `json:"section_name"`
	Content        string            `json:"content"`
	IsEdited       bool              `json:"is_edited"`
	EditedAt       *time.Time        `json:"edited_at,omitempty"`
	VersionHistory []SectionSnapshot `json:"version_history"`
}

// CoverLetter is a persisted, editable cover letter document.
// Content is the current text, reassembled from Sections.
type CoverLetter struct {
	VersionID       string             `json:"version_id"`
	Content         string             `json:"content"`
	OriginalContent string             `json:"original_content,omitempty"`
	Sections        map[string]Section `json:"sections"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	JobTitle        string             `json:"job_title"`
	CompanyName     string             `json:"company_name"`
	UserBackground  string             `json:"user_background,omitempty"`
	UserQuestion    string             `json:"user_question,omitempty"`
	HasEdits        bool               `json:"has_edits"`
}

// EditedSections counts the sections that have been edited since creation.
func (c *CoverLetter) EditedSections() int {
	n := 0
	for _, s := range c.Sections {
		if s.IsEdited {
			n++
		}
	}
	return n
}

// SectionContents maps each section name to its current content.
func (c *CoverLetter) SectionContents() map[string]string {
	contents := make(map[string]string, len(c.Sections))
	for key, sec := range c.Sections {
		contents[key] = sec.Content
	}
	return contents
}

// VersionSummary is one entry of the saved versions list.
type VersionSummary struct {
	VersionID      string    `json:"version_id"`
	JobTitle       string    `json:"job_title"`
	CompanyName    string    `json:"company_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	HasEdits       bool      `json:"has_edits"`
	EditedSections int       `json:"edited_sections"`
}

// VersionList is the response for listing saved versions.
type VersionList struct {
	Versions []VersionSummary `json:"versions"`
}

// SaveStatus summarises the edit state of a stored cover letter.
type SaveStatus struct {
	VersionID      string    `json:"version_id"`
	LastUpdated    time.Time `json:"last_updated"`
	CreatedAt      time.Time `json:"created_at"`
	EditedSections int       `json:"edited_sections"`
	TotalSections  int       `json:"total_sections"`
	HasEdits       bool      `json:"has_edits"`
	JobTitle       string    `json:"job_title"`
	CompanyName    string    `json:"company_name"`
}

// SectionHistoryResponse lists snapshots of one section, newest first.
type SectionHistoryResponse struct {
	VersionID   string            `json:"version_id"`
	SectionName string            `json:"section_name"`
	History     []SectionSnapshot `json:"history"`
}

// CreateSnapshotRequest asks the store to snapshot a section.
type CreateSnapshotRequest struct {
	ChangeDescription string `json:"change_description,omitempty"`
}

// CreateSnapshotResponse carries the ID of the new snapshot.
type CreateSnapshotResponse struct {
	Message     string `json:"message,omitempty"`
	VersionID   string `json:"version_id"`
	SectionName string `json:"section_name"`
}

// RevertSectionRequest restores a section to a prior snapshot.
type RevertSectionRequest struct {
	TargetVersionID string `json:"target_version_id" validate:"required"`
}

// Validate checks required fields.
func (r *RevertSectionRequest) Validate() error {
	return validateStruct(r)
}

// MessageResponse is the generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}
