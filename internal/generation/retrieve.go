// Package generation retrieves stored context for a job and writes cover
// letters with the language model.
package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/cover-letter-studio/internal/llm"
	"github.com/jonathan/cover-letter-studio/internal/store"
	"github.com/jonathan/cover-letter-studio/internal/types"
)

// Retrieval limits.
const (
	MaxJobResults     = 2
	MaxPDFResults     = 3
	MaxContextItems   = 5
	PreviewLength     = 200
	PromptSnippetSize = 300
)

// generalQueries widen PDF retrieval beyond the job title and company.
var generalQueries = []string{
	"experience", "project", "skills", "development",
	"management", "analysis", "design", "implementation",
}

// Service generates cover letters from stored context.
type Service struct {
	store store.Store
	llm   llm.Client
	tier  llm.ModelTier
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTier selects the model tier used for generation.
func WithTier(tier llm.ModelTier) Option {
	return func(s *Service) { s.tier = tier }
}

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service.
func NewService(st store.Store, client llm.Client, opts ...Option) *Service {
	s := &Service{
		store: st,
		llm:   client,
		tier:  llm.TierStandard,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Context is the material retrieved for one job.
type Context struct {
	JobPostings  []Match
	PDFDocuments []Match
	Query        types.QueryInfo
}

// Summary reports counts and average similarity.
func (c *Context) Summary() types.ContextSummary {
	return types.ContextSummary{
		JobPostingsUsed:  len(c.JobPostings),
		PDFDocumentsUsed: len(c.PDFDocuments),
		AvgJobSimilarity: averageScore(c.JobPostings),
		AvgPDFSimilarity: averageScore(c.PDFDocuments),
	}
}

// Combined merges postings and PDFs, best first, capped at MaxContextItems.
func (c *Context) Combined() []Match {
	all := make([]Match, 0, len(c.JobPostings)+len(c.PDFDocuments))
	all = append(all, c.JobPostings...)
	all = append(all, c.PDFDocuments...)
	sortMatches(all)
	if len(all) > MaxContextItems {
		all = all[:MaxContextItems]
	}
	return all
}

// Retrieve finds the job postings closest to "title company" and the PDF
// pages closest to the user's question, the job title, the company and a
// set of general queries. PDF pages found by several queries keep their
// best score.
func (s *Service) Retrieve(ctx context.Context, job types.JobContext) (*Context, error) {
	jobQuery := strings.TrimSpace(job.JobTitle + " " + job.CompanyName)
	out := &Context{Query: types.QueryInfo{
		Query:        jobQuery,
		JobTitle:     job.JobTitle,
		CompanyName:  job.CompanyName,
		UserQuestion: job.UserQuestion,
	}}

	postings, err := s.store.ListDocuments(ctx, store.KindJobPosting)
	if err != nil {
		return nil, fmt.Errorf("failed to list job posting documents: %w", err)
	}
	pdfs, err := s.store.ListDocuments(ctx, store.KindPDF)
	if err != nil {
		return nil, fmt.Errorf("failed to list pdf documents: %w", err)
	}
	if len(postings) == 0 && len(pdfs) == 0 {
		return out, nil
	}

	queries := []string{jobQuery}
	if q := strings.TrimSpace(job.UserQuestion); q != "" {
		queries = append(queries, q)
	}
	queries = append(queries, job.JobTitle, job.CompanyName)
	queries = append(queries, generalQueries...)

	vectors, err := s.embed(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("failed to embed retrieval queries: %w", err)
	}

	out.JobPostings = rank(vectors[0], postings, MaxJobResults)

	generalStart := len(queries) - len(generalQueries)
	best := make(map[string]Match)
	for i := 1; i < len(vectors); i++ {
		limit := MaxPDFResults
		if i >= generalStart {
			limit = 1
		}
		for _, m := range rank(vectors[i], pdfs, limit) {
			if prev, ok := best[m.Document.ID]; !ok || m.Score > prev.Score {
				best[m.Document.ID] = m
			}
		}
	}
	for _, m := range best {
		out.PDFDocuments = append(out.PDFDocuments, m)
	}
	sortMatches(out.PDFDocuments)
	if len(out.PDFDocuments) > MaxPDFResults {
		out.PDFDocuments = out.PDFDocuments[:MaxPDFResults]
	}
	return out, nil
}

// Analyze reports what Retrieve would feed a generation.
func (s *Service) Analyze(ctx context.Context, req *types.ContextAnalysisRequest) (*types.ContextAnalysis, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	rc, err := s.Retrieve(ctx, types.JobContext{
		JobTitle:     req.JobTitle,
		CompanyName:  req.CompanyName,
		UserQuestion: req.UserQuestion,
	})
	if err != nil {
		return nil, err
	}

	summary := rc.Summary()
	analysis := &types.ContextAnalysis{
		JobPostingsFound:  summary.JobPostingsUsed,
		PDFDocumentsFound: summary.PDFDocumentsUsed,
		PDFDocuments:      make([]types.ContextDocument, 0, len(rc.PDFDocuments)),
		AvgJobSimilarity:  summary.AvgJobSimilarity,
		AvgPDFSimilarity:  summary.AvgPDFSimilarity,
		QueryInfo:         rc.Query,
	}
	for _, m := range rc.PDFDocuments {
		analysis.PDFDocuments = append(analysis.PDFDocuments, types.ContextDocument{
			ID:              m.Document.ID,
			SimilarityScore: m.Score,
			ContentPreview:  Preview(m.Document.Content, PreviewLength),
			Metadata:        m.Document.Metadata,
		})
	}
	return analysis, nil
}

// Preview truncates text to n runes, appending "..." when cut.
func Preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

func (s *Service) embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := s.llm.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(texts))
	}
	return vectors, nil
}
