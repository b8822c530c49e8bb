package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cover-letter-studio/internal/sections"
	"github.com/jonathan/cover-letter-studio/internal/types"
)

// The functions in this file hold the versioning rules shared by every
// Store implementation. They mutate a loaded document in place; callers
// persist the result.

// NewCoverLetter builds a document from a draft request, parsing the letter
// into sections.
func NewCoverLetter(req *types.CreateDraftRequest, now time.Time) *types.CoverLetter {
	set := sections.Parse(req.CoverLetter)
	doc := &types.CoverLetter{
		VersionID:       uuid.NewString(),
		OriginalContent: req.CoverLetter,
		Sections:        make(map[string]types.Section, len(sections.Names())),
		CreatedAt:       now,
		UpdatedAt:       now,
		JobTitle:        req.JobTitle,
		CompanyName:     req.CompanyName,
		UserBackground:  req.UserBackground,
		UserQuestion:    req.UserQuestion,
	}
	for _, name := range sections.Names() {
		doc.Sections[string(name)] = types.Section{
			SectionName:    string(name),
			Content:        set.Get(name),
			VersionHistory: []types.SectionSnapshot{},
		}
	}
	refresh(doc)
	return doc
}

// ApplyUpdate replaces a section. When the content changes, the previous
// content is recorded in the section history under description.
func ApplyUpdate(doc *types.CoverLetter, name sections.Name, content, description string, now time.Time) error {
	sec, err := section(doc, name)
	if err != nil {
		return err
	}
	if sec.Content != content {
		if description == "" {
			description = fmt.Sprintf("%s section edited", name)
		}
		sec.VersionHistory = append(sec.VersionHistory, snapshot(sec.Content, description, now))
	}
	sec.Content = content
	markEdited(&sec, now)
	doc.Sections[string(name)] = sec
	doc.UpdatedAt = now
	refresh(doc)
	return nil
}

// ApplySaveAll replaces every named section without recording history.
// Unknown section names are ignored; unchanged sections keep their edit
// state.
func ApplySaveAll(doc *types.CoverLetter, contents map[string]string, now time.Time) {
	for key, content := range contents {
		sec, ok := doc.Sections[key]
		if !ok || sec.Content == content {
			continue
		}
		sec.Content = content
		markEdited(&sec, now)
		doc.Sections[key] = sec
	}
	doc.UpdatedAt = now
	refresh(doc)
}

// ApplySnapshot records the current content of a section in its history
// and returns the snapshot ID.
func ApplySnapshot(doc *types.CoverLetter, name sections.Name, description string, now time.Time) (string, error) {
	sec, err := section(doc, name)
	if err != nil {
		return "", err
	}
	if description == "" {
		description = fmt.Sprintf("%s snapshot", name)
	}
	snap := snapshot(sec.Content, description, now)
	sec.VersionHistory = append(sec.VersionHistory, snap)
	doc.Sections[string(name)] = sec
	return snap.VersionID, nil
}

// ApplyRevert records the current content of a section, then restores the
// content of the snapshot targetVersionID.
func ApplyRevert(doc *types.CoverLetter, name sections.Name, targetVersionID string, now time.Time) error {
	sec, err := section(doc, name)
	if err != nil {
		return err
	}

	var target *types.SectionSnapshot
	for i := range sec.VersionHistory {
		if sec.VersionHistory[i].VersionID == targetVersionID {
			target = &sec.VersionHistory[i]
			break
		}
	}
	if target == nil {
		return notFound("snapshot", targetVersionID)
	}
	restored := target.Content

	sec.VersionHistory = append(sec.VersionHistory, snapshot(sec.Content, fmt.Sprintf("%s reverted", name), now))
	sec.Content = restored
	markEdited(&sec, now)
	doc.Sections[string(name)] = sec
	doc.UpdatedAt = now
	refresh(doc)
	return nil
}

// History returns the snapshots of a section, newest first.
func History(doc *types.CoverLetter, name sections.Name) ([]types.SectionSnapshot, error) {
	sec, err := section(doc, name)
	if err != nil {
		return nil, err
	}
	out := make([]types.SectionSnapshot, 0, len(sec.VersionHistory))
	for i := len(sec.VersionHistory) - 1; i >= 0; i-- {
		out = append(out, sec.VersionHistory[i])
	}
	return out, nil
}

// Summary returns the version list entry for doc.
func Summary(doc *types.CoverLetter) types.VersionSummary {
	return types.VersionSummary{
		VersionID:      doc.VersionID,
		JobTitle:       doc.JobTitle,
		CompanyName:    doc.CompanyName,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
		HasEdits:       doc.HasEdits,
		EditedSections: doc.EditedSections(),
	}
}

// Status returns the save status of doc.
func Status(doc *types.CoverLetter) types.SaveStatus {
	edited := doc.EditedSections()
	return types.SaveStatus{
		VersionID:      doc.VersionID,
		LastUpdated:    doc.UpdatedAt,
		CreatedAt:      doc.CreatedAt,
		EditedSections: edited,
		TotalSections:  len(doc.Sections),
		HasEdits:       edited > 0,
		JobTitle:       doc.JobTitle,
		CompanyName:    doc.CompanyName,
	}
}

// CurrentSections returns the current content of doc as a Set.
func CurrentSections(doc *types.CoverLetter) sections.Set {
	return sections.FromMap(doc.SectionContents())
}

func section(doc *types.CoverLetter, name sections.Name) (types.Section, error) {
	sec, ok := doc.Sections[string(name)]
	if !ok {
		return types.Section{}, notFound("section", string(name))
	}
	return sec, nil
}

func snapshot(content, description string, now time.Time) types.SectionSnapshot {
	return types.SectionSnapshot{
		VersionID:         uuid.NewString(),
		Content:           content,
		CreatedAt:         now,
		ChangeDescription: description,
	}
}

func markEdited(sec *types.Section, now time.Time) {
	t := now
	sec.IsEdited = true
	sec.EditedAt = &t
}

// refresh recomputes the derived fields of doc.
func refresh(doc *types.CoverLetter) {
	doc.Content = CurrentSections(doc).Join()
	doc.HasEdits = doc.EditedSections() > 0
}

// cloneCoverLetter deep-copies doc so callers cannot mutate stored state.
func cloneCoverLetter(doc *types.CoverLetter) *types.CoverLetter {
	out := *doc
	out.Sections = make(map[string]types.Section, len(doc.Sections))
	for key, sec := range doc.Sections {
		cp := sec
		cp.VersionHistory = append([]types.SectionSnapshot{}, sec.VersionHistory...)
		if sec.EditedAt != nil {
			t := *sec.EditedAt
			cp.EditedAt = &t
		}
		out.Sections[key] = cp
	}
	return &out
}
