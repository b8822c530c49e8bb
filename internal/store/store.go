// Package store defines persistence for the cover letter service: versioned
// cover letters with per-section history, job postings, context documents
// with embeddings, and uploaded PDF files.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/cover-letter-studio/internal/sections"
	"github.com/jonathan/cover-letter-studio/internal/types"
)

// Document kinds.
const (
	KindJobPosting = "job_posting"
	KindPDF        = "pdf"
)

// Document is a chunk of context text used for retrieval.
type Document struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	SourceID  string            `json:"source_id"` // job posting ID or PDF filename
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Embedding []float32         `json:"embedding,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Store is implemented by Memory and by the Postgres store in internal/db.
type Store interface {
	CreateCoverLetter(ctx context.Context, req *types.CreateDraftRequest) (*types.CoverLetter, error)
	GetCoverLetter(ctx context.Context, versionID string) (*types.CoverLetter, error)
	ListCoverLetters(ctx context.Context) ([]types.VersionSummary, error)
	DeleteCoverLetter(ctx context.Context, versionID string) error
	UpdateSection(ctx context.Context, versionID string, name sections.Name, content, description string) error
	SaveAllSections(ctx context.Context, versionID string, contents map[string]string) error
	CreateSnapshot(ctx context.Context, versionID string, name sections.Name, description string) (string, error)
	RevertSection(ctx context.Context, versionID string, name sections.Name, targetVersionID string) error
	SectionHistory(ctx context.Context, versionID string, name sections.Name) ([]types.SectionSnapshot, error)

	CreateJobPosting(ctx context.Context, posting *types.JobPosting) error
	GetJobPosting(ctx context.Context, id string) (*types.JobPosting, error)
	ListJobPostings(ctx context.Context) ([]types.JobPosting, error)

	AddDocuments(ctx context.Context, docs []Document) error
	ListDocuments(ctx context.Context, kind string) ([]Document, error)

	AddPDFFile(ctx context.Context, file types.PDFFile) error
	ListPDFFiles(ctx context.Context) ([]types.PDFFile, error)

	Close()
}

// NotFoundError reports a missing cover letter, section, snapshot or posting.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func notFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}
