package server

import (
	"log"
	"net/http"

	"github.com/jonathan/cover-letter-studio/internal/types"
)

// handleGenerate writes a cover letter, with optional variations, from the
// stored context
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	resp, err := s.gen.Generate(r.Context(), &req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleUploadPDF indexes the pages of an uploaded PDF as context
func (s *Server) handleUploadPDF(w http.ResponseWriter, r *http.Request) {
	filename, data, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp, err := s.gen.AddPDF(r.Context(), filename, data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	log.Printf("[pdf] indexed %s: %d pages", resp.Filename, resp.Pages)
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleListPDFFiles lists uploaded PDFs, newest first
func (s *Server) handleListPDFFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.store.ListPDFFiles(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if files == nil {
		files = []types.PDFFile{}
	}
	s.jsonResponse(w, http.StatusOK, types.PDFFileList{
		TotalFiles: len(files),
		Files:      files,
	})
}

// handleContextAnalysis reports which documents a generation would use
func (s *Server) handleContextAnalysis(w http.ResponseWriter, r *http.Request) {
	var req types.ContextAnalysisRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	analysis, err := s.gen.Analyze(r.Context(), &req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.ContextAnalysisResponse{ContextAnalysis: *analysis})
}
