package generation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/cover-letter-studio/internal/llm"
	"github.com/jonathan/cover-letter-studio/internal/store"
	"github.com/jonathan/cover-letter-studio/internal/types"
)

// ErrUnsupportedFile is returned for uploads that are neither .txt nor .pdf.
var ErrUnsupportedFile = errors.New("unsupported file type")

// ErrNoText is returned when an upload contains no extractable text.
var ErrNoText = errors.New("no text could be extracted")

// NewJobPostingID returns an ID of the form job_<timestamp>_<8 hex chars>.
func (s *Service) NewJobPostingID() string {
	return fmt.Sprintf("job_%s_%s", s.now().Format("20060102_150405"), uuid.NewString()[:8])
}

// AddJobPosting validates, stores and indexes a job posting.
func (s *Service) AddJobPosting(ctx context.Context, in *types.JobPostingInput, sourceFile string) (*types.JobPosting, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	posting := &types.JobPosting{
		ID:             s.NewJobPostingID(),
		JobTitle:       strings.TrimSpace(in.JobTitle),
		CompanyName:    strings.TrimSpace(in.CompanyName),
		JobDescription: in.JobDescription,
		Requirements:   in.Requirements,
		CompanyVision:  in.CompanyVision,
		CreatedAt:      s.now(),
		Status:         types.JobPostingStatusActive,
		SourceFile:     sourceFile,
	}
	if err := s.store.CreateJobPosting(ctx, posting); err != nil {
		return nil, err
	}

	text := posting.Text()
	vectors, err := s.embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed job posting: %w", err)
	}
	doc := store.Document{
		ID:       "doc_" + posting.ID,
		Kind:     store.KindJobPosting,
		SourceID: posting.ID,
		Content:  text,
		Metadata: map[string]string{
			"job_title":    posting.JobTitle,
			"company_name": posting.CompanyName,
			"type":         store.KindJobPosting,
		},
		Embedding: vectors[0],
		CreatedAt: posting.CreatedAt,
	}
	if err := s.store.AddDocuments(ctx, []store.Document{doc}); err != nil {
		return nil, err
	}
	return posting, nil
}

// PostingText returns the text of an uploaded job posting file. Text files
// are used as-is; PDFs are read by the language model.
func (s *Service) PostingText(ctx context.Context, filename string, data []byte) (string, error) {
	var text string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		text = string(data)
	case ".pdf":
		extracted, err := s.llm.ExtractPDFText(ctx, data)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", filename, err)
		}
		text = strings.ReplaceAll(extracted, "\f", "\n")
	default:
		return "", fmt.Errorf("%w: %s (only .txt and .pdf are accepted)", ErrUnsupportedFile, filename)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s", ErrNoText, filename)
	}
	return text, nil
}

// AddPDF extracts the pages of a PDF and indexes each page as a context
// document.
func (s *Service) AddPDF(ctx context.Context, filename string, data []byte) (*types.UploadPDFResponse, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, fmt.Errorf("%w: %s (only .pdf is accepted)", ErrUnsupportedFile, filename)
	}

	extracted, err := s.llm.ExtractPDFText(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	pages := llm.SplitPages(extracted)
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoText, filename)
	}

	vectors, err := s.embed(ctx, pages)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %s: %w", filename, err)
	}

	now := s.now()
	docs := make([]store.Document, len(pages))
	ids := make([]string, len(pages))
	for i, text := range pages {
		ids[i] = "pdf_" + uuid.NewString()
		docs[i] = store.Document{
			ID:       ids[i],
			Kind:     store.KindPDF,
			SourceID: filename,
			Content:  text,
			Metadata: map[string]string{
				"filename":    filename,
				"pages":       fmt.Sprint(len(pages)),
				"page_number": fmt.Sprint(i + 1),
				"type":        store.KindPDF,
			},
			Embedding: vectors[i],
			CreatedAt: now,
		}
	}
	if err := s.store.AddDocuments(ctx, docs); err != nil {
		return nil, err
	}
	if err := s.store.AddPDFFile(ctx, types.PDFFile{
		Filename:   filename,
		SizeBytes:  int64(len(data)),
		Pages:      len(pages),
		UploadedAt: now,
	}); err != nil {
		return nil, err
	}

	return &types.UploadPDFResponse{
		Filename:    filename,
		Pages:       len(pages),
		DocumentIDs: ids,
		Status:      "success",
	}, nil
}
