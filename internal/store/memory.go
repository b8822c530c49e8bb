package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonathan/cover-letter-studio/internal/sections"
	"github.com/jonathan/cover-letter-studio/internal/types"
)

// Memory is an in-process Store. It is the default backend of the server
// when no database is configured.
type Memory struct {
	mu        sync.RWMutex
	letters   map[string]*types.CoverLetter
	postings  map[string]types.JobPosting
	documents []Document
	pdfs      map[string]types.PDFFile
	now       func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		letters:  make(map[string]*types.CoverLetter),
		postings: make(map[string]types.JobPosting),
		pdfs:     make(map[string]types.PDFFile),
		now:      time.Now,
	}
}

func (m *Memory) CreateCoverLetter(_ context.Context, req *types.CreateDraftRequest) (*types.CoverLetter, error) {
	doc := NewCoverLetter(req, m.now())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.letters[doc.VersionID] = doc
	return cloneCoverLetter(doc), nil
}

func (m *Memory) GetCoverLetter(_ context.Context, versionID string) (*types.CoverLetter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.letters[versionID]
	if !ok {
		return nil, notFound("cover letter", versionID)
	}
	return cloneCoverLetter(doc), nil
}

// ListCoverLetters returns every letter, most recently updated first.
func (m *Memory) ListCoverLetters(_ context.Context) ([]types.VersionSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.VersionSummary, 0, len(m.letters))
	for _, doc := range m.letters {
		out = append(out, Summary(doc))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (m *Memory) DeleteCoverLetter(_ context.Context, versionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.letters[versionID]; !ok {
		return notFound("cover letter", versionID)
	}
	delete(m.letters, versionID)
	return nil
}

func (m *Memory) UpdateSection(_ context.Context, versionID string, name sections.Name, content, description string) error {
	return m.mutate(versionID, func(doc *types.CoverLetter, now time.Time) error {
		return ApplyUpdate(doc, name, content, description, now)
	})
}

func (m *Memory) SaveAllSections(_ context.Context, versionID string, contents map[string]string) error {
	return m.mutate(versionID, func(doc *types.CoverLetter, now time.Time) error {
		ApplySaveAll(doc, contents, now)
		return nil
	})
}

func (m *Memory) CreateSnapshot(_ context.Context, versionID string, name sections.Name, description string) (string, error) {
	var id string
	err := m.mutate(versionID, func(doc *types.CoverLetter, now time.Time) error {
		var err error
		id, err = ApplySnapshot(doc, name, description, now)
		return err
	})
	return id, err
}

func (m *Memory) RevertSection(_ context.Context, versionID string, name sections.Name, targetVersionID string) error {
	return m.mutate(versionID, func(doc *types.CoverLetter, now time.Time) error {
		return ApplyRevert(doc, name, targetVersionID, now)
	})
}

func (m *Memory) SectionHistory(_ context.Context, versionID string, name sections.Name) ([]types.SectionSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.letters[versionID]
	if !ok {
		return nil, notFound("cover letter", versionID)
	}
	return History(doc, name)
}

// mutate applies fn to a copy of the stored letter and keeps the copy only
// if fn succeeds.
func (m *Memory) mutate(versionID string, fn func(doc *types.CoverLetter, now time.Time) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.letters[versionID]
	if !ok {
		return notFound("cover letter", versionID)
	}
	next := cloneCoverLetter(doc)
	if err := fn(next, m.now()); err != nil {
		return err
	}
	m.letters[versionID] = next
	return nil
}

func (m *Memory) CreateJobPosting(_ context.Context, posting *types.JobPosting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postings[posting.ID] = *posting
	return nil
}

func (m *Memory) GetJobPosting(_ context.Context, id string) (*types.JobPosting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.postings[id]
	if !ok {
		return nil, notFound("job posting", id)
	}
	return &p, nil
}

// ListJobPostings returns every posting, newest first.
func (m *Memory) ListJobPostings(_ context.Context) ([]types.JobPosting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.JobPosting, 0, len(m.postings))
	for _, p := range m.postings {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) AddDocuments(_ context.Context, docs []Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents = append(m.documents, docs...)
	return nil
}

// ListDocuments returns the documents of one kind, or all documents when
// kind is empty.
func (m *Memory) ListDocuments(_ context.Context, kind string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Document
	for _, d := range m.documents {
		if kind == "" || d.Kind == kind {
			out = append(out, d)
		}
	}
	return out, nil
}

// AddPDFFile records an uploaded PDF, replacing an earlier upload with the
// same filename.
func (m *Memory) AddPDFFile(_ context.Context, file types.PDFFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdfs[file.Filename] = file
	return nil
}

// ListPDFFiles returns uploaded PDFs, newest first.
func (m *Memory) ListPDFFiles(_ context.Context) ([]types.PDFFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.PDFFile, 0, len(m.pdfs))
	for _, f := range m.pdfs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out, nil
}

// Close is a no-op.
func (m *Memory) Close() {}
