package api

import (
	"context"
	"io"
	"net/http"

	"github.com/jonathan/cover-letter-studio/internal/types"
)

// Generate asks the service to write a cover letter.
func (c *Client) Generate(ctx context.Context, req *types.GenerateRequest) (*types.GenerateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var resp types.GenerateResponse
	if err := c.do(ctx, http.MethodPost, "/generate-cover-letter", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadPDF stores a PDF to be used as generation context.
func (c *Client) UploadPDF(ctx context.Context, filename string, file io.Reader) (*types.UploadPDFResponse, error) {
	var resp types.UploadPDFResponse
	if err := c.doMultipart(ctx, "/upload-pdf", nil, filename, file, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListPDFFiles lists uploaded PDFs, newest first.
func (c *Client) ListPDFFiles(ctx context.Context) (*types.PDFFileList, error) {
	var list types.PDFFileList
	if err := c.do(ctx, http.MethodGet, "/pdf-files", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// AnalyzeContext reports which stored documents a generation would draw on.
func (c *Client) AnalyzeContext(ctx context.Context, req *types.ContextAnalysisRequest) (*types.ContextAnalysis, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var resp types.ContextAnalysisResponse
	if err := c.do(ctx, http.MethodPost, "/debug/context-analysis", req, &resp); err != nil {
		return nil, err
	}
	return &resp.ContextAnalysis, nil
}
