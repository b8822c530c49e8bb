package types

import "time"

// Variation limits for generation requests.
const (
	DefaultNumVariations = 3
	MaxNumVariations     = 5
)

// GenerateRequest asks the backend to write a cover letter.
type GenerateRequest struct {
	JobTitle          string `json:"job_title" validate:"required"`
	CompanyName       string `json:"company_name" validate:"required"`
	UserQuestion      string `json:"user_question,omitempty"`
	UserBackground    string `json:"user_background,omitempty"`
	IncludeVariations bool   `json:"include_variations"`
	NumVariations     int    `json:"num_variations,omitempty" validate:"omitempty,min=1,max=5"`
}

// Validate checks required fields and the variation count.
func (r *GenerateRequest) Validate() error {
	return validateStruct(r)
}

// Variations returns how many alternative letters should be produced.
func (r *GenerateRequest) Variations() int {
	if !r.IncludeVariations {
		return 0
	}
	if r.NumVariations <= 0 {
		return DefaultNumVariations
	}
	return min(r.NumVariations, MaxNumVariations)
}

// Job returns the job context of the request.
func (r *GenerateRequest) Job() JobContext {
	return JobContext{
		JobTitle:       r.JobTitle,
		CompanyName:    r.CompanyName,
		UserBackground: r.UserBackground,
		UserQuestion:   r.UserQuestion,
	}
}

// ContextSummary describes the retrieved context a letter was written from.
type ContextSummary struct {
	JobPostingsUsed  int     `json:"job_postings_used"`
	PDFDocumentsUsed int     `json:"pdf_documents_used"`
	AvgJobSimilarity float64 `json:"avg_job_similarity"`
	AvgPDFSimilarity float64 `json:"avg_pdf_similarity"`
}

// GenerateResponse carries a generated letter and optional variations.
type GenerateResponse struct {
	CoverLetter    string         `json:"cover_letter"`
	Variations     []string       `json:"variations,omitempty"`
	ContextSummary ContextSummary `json:"context_summary"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

// ContextAnalysisRequest asks which stored context would feed a generation.
type ContextAnalysisRequest struct {
	JobTitle     string `json:"job_title" validate:"required"`
	CompanyName  string `json:"company_name" validate:"required"`
	UserQuestion string `json:"user_question,omitempty"`
}

// Validate checks required fields.
func (r *ContextAnalysisRequest) Validate() error {
	return validateStruct(r)
}

// ContextDocument is one retrieved document with its relevance score.
type ContextDocument struct {
	ID              string            `json:"id"`
	SimilarityScore float64           `json:"similarity_score"`
	ContentPreview  string            `json:"content_preview"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// QueryInfo echoes the retrieval query.
type QueryInfo struct {
	Query        string `json:"query"`
	JobTitle     string `json:"job_title"`
	CompanyName  string `json:"company_name"`
	UserQuestion string `json:"user_question,omitempty"`
}

// ContextAnalysis reports retrieval results for debugging.
type ContextAnalysis struct {
	JobPostingsFound  int               `json:"job_postings_found"`
	PDFDocumentsFound int               `json:"pdf_documents_found"`
	PDFDocuments      []ContextDocument `json:"pdf_documents"`
	AvgJobSimilarity  float64           `json:"avg_job_similarity"`
	AvgPDFSimilarity  float64           `json:"avg_pdf_similarity"`
	QueryInfo         QueryInfo         `json:"query_info"`
}

// ContextAnalysisResponse wraps ContextAnalysis.
type ContextAnalysisResponse struct {
	ContextAnalysis ContextAnalysis `json:"context_analysis"`
}

// UploadPDFResponse describes a stored PDF.
type UploadPDFResponse struct {
	Filename    string   `json:"filename"`
	Pages       int      `json:"pages"`
	DocumentIDs []string `json:"document_ids"`
	Status      string   `json:"status"`
}

// PDFFile is one uploaded PDF.
type PDFFile struct {
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	Pages      int       `json:"pages"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// PDFFileList is the response for listing uploaded PDFs.
type PDFFileList struct {
	TotalFiles int       `json:"total_files"`
	Files      []PDFFile `json:"files"`
}
