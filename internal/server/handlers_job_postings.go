package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/jonathan/cover-letter-studio/internal/types"
)

// multipartMemory is the part of an upload kept in memory before spilling
// to temporary files.
const multipartMemory = 4 << 20

// handleListJobPostings lists job postings, newest first
func (s *Server) handleListJobPostings(w http.ResponseWriter, r *http.Request) {
	postings, err := s.store.ListJobPostings(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if postings == nil {
		postings = []types.JobPosting{}
	}
	s.jsonResponse(w, http.StatusOK, types.JobPostingList{
		JobPostings: postings,
		Count:       len(postings),
	})
}

// handleGetJobPosting retrieves a job posting by its ID
func (s *Server) handleGetJobPosting(w http.ResponseWriter, r *http.Request) {
	posting, err := s.store.GetJobPosting(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, posting)
}

// handleSubmitJobPosting stores and indexes a posting entered as text
func (s *Server) handleSubmitJobPosting(w http.ResponseWriter, r *http.Request) {
	var in types.JobPostingInput
	if err := s.decodeJSON(w, r, &in); err != nil {
		s.writeError(w, err)
		return
	}

	posting, err := s.gen.AddJobPosting(r.Context(), &in, "")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, posting)
}

// handleUploadJobPosting stores a posting read from a .txt or .pdf upload
func (s *Server) handleUploadJobPosting(w http.ResponseWriter, r *http.Request) {
	filename, data, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	in := &types.JobPostingInput{
		JobTitle:    strings.TrimSpace(r.FormValue("jobTitle")),
		CompanyName: strings.TrimSpace(r.FormValue("companyName")),
	}
	if err := in.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	in.JobDescription, err = s.gen.PostingText(r.Context(), filename, data)
	if err != nil {
		s.writeError(w, err)
		return
	}

	posting, err := s.gen.AddJobPosting(r.Context(), in, filename)
	if err != nil {
		s.writeError(w, err)
		return
	}
	log.Printf("[job-postings] uploaded %s as %s", filename, posting.ID)
	s.jsonResponse(w, http.StatusOK, posting)
}

// readUpload reads the "file" part of a bounded multipart request.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, tooLarge
		}
		return "", nil, &ErrValidation{Field: "file", Message: "expected a multipart form: " + err.Error()}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, &ErrValidation{Field: "file", Message: "file is required"}
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, &ErrValidation{Field: "file", Message: "failed to read upload: " + err.Error()}
	}
	return header.Filename, data, nil
}
