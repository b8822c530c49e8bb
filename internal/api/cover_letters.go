package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonathan/cover-letter-studio/internal/sections"
	"github.com/jonathan/cover-letter-studio/internal/types"
)

func coverLetterPath(versionID string) string {
	return "/cover-letter/" + escape(versionID)
}

func sectionPath(versionID string, name sections.Name) string {
	return coverLetterPath(versionID) + "/section/" + escape(string(name))
}

// CreateDraft stores a letter for editing and returns its version ID.
func (c *Client) CreateDraft(ctx context.Context, req *types.CreateDraftRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	var resp types.CreateDraftResponse
	if err := c.do(ctx, http.MethodPost, "/cover-letter/save", req, &resp); err != nil {
		return "", err
	}
	if resp.VersionID == "" {
		return "", &UnavailableError{
			Method: http.MethodPost,
			Path:   "/cover-letter/save",
			Cause:  fmt.Errorf("response did not include a version_id"),
		}
	}
	return resp.VersionID, nil
}

// GetCoverLetter fetches a stored letter with its sections.
func (c *Client) GetCoverLetter(ctx context.Context, versionID string) (*types.CoverLetter, error) {
	var doc types.CoverLetter
	if err := c.do(ctx, http.MethodGet, coverLetterPath(versionID), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateSection replaces one section of a stored letter.
func (c *Client) UpdateSection(ctx context.Context, versionID string, name sections.Name, content string) error {
	req := &types.UpdateSectionRequest{
		VersionID:   versionID,
		SectionName: string(name),
		NewContent:  content,
	}
	if err := req.Validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, coverLetterPath(versionID)+"/section", req, nil)
}

// UpdateSectionWithDescription replaces one section and labels the history
// entry recording the previous content.
func (c *Client) UpdateSectionWithDescription(ctx context.Context, versionID string, name sections.Name, content, description string) error {
	req := &types.UpdateWithDescriptionRequest{
		NewContent:        content,
		ChangeDescription: description,
	}
	return c.do(ctx, http.MethodPut, sectionPath(versionID, name)+"/update-with-description", req, nil)
}

// SaveAllSections replaces every section of a stored letter.
func (c *Client) SaveAllSections(ctx context.Context, versionID string, set sections.Set) error {
	req := &types.SaveAllRequest{
		VersionID: versionID,
		Sections:  set.Map(),
	}
	if err := req.Validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, coverLetterPath(versionID)+"/save-all", req, nil)
}

// SaveStatus reports how many sections of a stored letter were edited.
func (c *Client) SaveStatus(ctx context.Context, versionID string) (*types.SaveStatus, error) {
	var status types.SaveStatus
	if err := c.do(ctx, http.MethodGet, coverLetterPath(versionID)+"/save-status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListVersions lists every stored letter.
func (c *Client) ListVersions(ctx context.Context) ([]types.VersionSummary, error) {
	var list types.VersionList
	if err := c.do(ctx, http.MethodGet, "/cover-letter/versions", nil, &list); err != nil {
		return nil, err
	}
	return list.Versions, nil
}

// DeleteVersion removes a stored letter.
func (c *Client) DeleteVersion(ctx context.Context, versionID string) error {
	return c.do(ctx, http.MethodDelete, coverLetterPath(versionID), nil, nil)
}

// SectionHistory lists snapshots of one section, newest first.
func (c *Client) SectionHistory(ctx context.Context, versionID string, name sections.Name) ([]types.SectionSnapshot, error) {
	var resp types.SectionHistoryResponse
	if err := c.do(ctx, http.MethodGet, sectionPath(versionID, name)+"/history", nil, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// CreateSectionSnapshot snapshots the stored content of a section and
// returns the snapshot ID.
func (c *Client) CreateSectionSnapshot(ctx context.Context, versionID string, name sections.Name, description string) (string, error) {
	req := &types.CreateSnapshotRequest{ChangeDescription: description}
	var resp types.CreateSnapshotResponse
	if err := c.do(ctx, http.MethodPost, sectionPath(versionID, name)+"/version", req, &resp); err != nil {
		return "", err
	}
	return resp.VersionID, nil
}

// RevertSection restores a section to the snapshot targetVersionID.
func (c *Client) RevertSection(ctx context.Context, versionID string, name sections.Name, targetVersionID string) error {
	req := &types.RevertSectionRequest{TargetVersionID: targetVersionID}
	if err := req.Validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, sectionPath(versionID, name)+"/revert", req, nil)
}
