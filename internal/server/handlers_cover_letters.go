package server

import (
	"log"
	"net/http"

	"github.com/jonathan/cover-letter-studio/internal/sections"
	"github.com/jonathan/cover-letter-studio/internal/store"
	"github.com/jonathan/cover-letter-studio/internal/types"
)

// sectionFromPath parses the {section_name} path value.
func sectionFromPath(r *http.Request) (sections.Name, error) {
	return sections.ParseName(r.PathValue("section_name"))
}

// handleCreateCoverLetter stores a generated letter, split into sections
func (s *Server) handleCreateCoverLetter(w http.ResponseWriter, r *http.Request) {
	var req types.CreateDraftRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	doc, err := s.store.CreateCoverLetter(r.Context(), &req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	log.Printf("[cover-letter] created %s for %s at %s", doc.VersionID, doc.JobTitle, doc.CompanyName)

	s.jsonResponse(w, http.StatusOK, types.CreateDraftResponse{
		VersionID: doc.VersionID,
		Message:   "Cover letter saved successfully",
	})
}

// handleGetCoverLetter returns one version with its sections
func (s *Server) handleGetCoverLetter(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.GetCoverLetter(r.Context(), r.PathValue("version_id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

// handleListVersions lists every stored version, most recently updated first
func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := s.store.ListCoverLetters(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if versions == nil {
		versions = []types.VersionSummary{}
	}
	s.jsonResponse(w, http.StatusOK, types.VersionList{Versions: versions})
}

// handleDeleteCoverLetter removes a version
func (s *Server) handleDeleteCoverLetter(w http.ResponseWriter, r *http.Request) {
	versionID := r.PathValue("version_id")
	if err := s.store.DeleteCoverLetter(r.Context(), versionID); err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.MessageResponse{Message: "Cover letter " + versionID + " deleted"})
}

// handleSaveStatus reports edit counts for a version
func (s *Server) handleSaveStatus(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.GetCoverLetter(r.Context(), r.PathValue("version_id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, store.Status(doc))
}

// handleUpdateSection replaces one section, recording the previous content
func (s *Server) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	versionID := r.PathValue("version_id")

	var req types.UpdateSectionRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.VersionID == "" {
		req.VersionID = versionID
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	if req.VersionID != versionID {
		s.writeError(w, &ErrValidation{Field: "version_id", Message: "does not match the URL"})
		return
	}
	name, err := sections.ParseName(req.SectionName)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.UpdateSection(r.Context(), versionID, name, req.NewContent, ""); err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.MessageResponse{Message: "Section " + string(name) + " updated"})
}

// handleUpdateWithDescription replaces one section and labels the history entry
func (s *Server) handleUpdateWithDescription(w http.ResponseWriter, r *http.Request) {
	name, err := sectionFromPath(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req types.UpdateWithDescriptionRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.UpdateSection(r.Context(), r.PathValue("version_id"), name, req.NewContent, req.ChangeDescription); err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.MessageResponse{Message: "Section " + string(name) + " updated"})
}

// handleSaveAll replaces every section without recording history
func (s *Server) handleSaveAll(w http.ResponseWriter, r *http.Request) {
	versionID := r.PathValue("version_id")

	var req types.SaveAllRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.VersionID == "" {
		req.VersionID = versionID
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	if req.VersionID != versionID {
		s.writeError(w, &ErrValidation{Field: "version_id", Message: "does not match the URL"})
		return
	}
	if err := s.store.SaveAllSections(r.Context(), versionID, req.Sections); err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.MessageResponse{Message: "All sections saved"})
}

// handleSectionHistory lists snapshots of a section, newest first
func (s *Server) handleSectionHistory(w http.ResponseWriter, r *http.Request) {
	name, err := sectionFromPath(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	versionID := r.PathValue("version_id")

	history, err := s.store.SectionHistory(r.Context(), versionID, name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if history == nil {
		history = []types.SectionSnapshot{}
	}
	s.jsonResponse(w, http.StatusOK, types.SectionHistoryResponse{
		VersionID:   versionID,
		SectionName: string(name),
		History:     history,
	})
}

// handleCreateSnapshot records the current content of a section
func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	name, err := sectionFromPath(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// The description is optional, so is the body
	var req types.CreateSnapshotRequest
	if err := s.decodeJSON(w, r, &req); err != nil && err != errEmptyBody {
		s.writeError(w, err)
		return
	}

	id, err := s.store.CreateSnapshot(r.Context(), r.PathValue("version_id"), name, req.ChangeDescription)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.CreateSnapshotResponse{
		Message:     "Snapshot created",
		VersionID:   id,
		SectionName: string(name),
	})
}

// handleRevertSection restores a section to a snapshot
func (s *Server) handleRevertSection(w http.ResponseWriter, r *http.Request) {
	name, err := sectionFromPath(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req types.RevertSectionRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.RevertSection(r.Context(), r.PathValue("version_id"), name, req.TargetVersionID); err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.MessageResponse{Message: "Section " + string(name) + " reverted"})
}
