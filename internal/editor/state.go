package editor

import (
	"context"
	"errors"
	"time"

	"github.com/jonathan/cover-letter-studio/internal/sections"
	"github.com/jonathan/cover-letter-studio/internal/types"
)

// DefaultAutoSaveDelay is the quiet period before an autosave runs.
const DefaultAutoSaveDelay = 3 * time.Second

// DefaultRequestTimeout bounds background calls (section sync, autosave).
const DefaultRequestTimeout = 30 * time.Second

var (
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("edit session is closed")
	// ErrNoDraft is returned by history operations before the letter has
	// been stored remotely.
	ErrNoDraft = errors.New("cover letter has not been saved for editing yet")
)

// Remote is the versioned cover letter store a Session mirrors edits to.
// *api.Client implements it.
type Remote interface {
	CreateDraft(ctx context.Context, req *types.CreateDraftRequest) (string, error)
	GetCoverLetter(ctx context.Context, versionID string) (*types.CoverLetter, error)
	UpdateSection(ctx context.Context, versionID string, name sections.Name, content string) error
	SaveAllSections(ctx context.Context, versionID string, set sections.Set) error
	SectionHistory(ctx context.Context, versionID string, name sections.Name) ([]types.SectionSnapshot, error)
	CreateSectionSnapshot(ctx context.Context, versionID string, name sections.Name, description string) (string, error)
	RevertSection(ctx context.Context, versionID string, name sections.Name, targetVersionID string) error
}

// State is the observable state of an edit session.
type State struct {
	Sections          sections.Set
	IsEditing         bool
	HasUnsavedChanges bool
	ActiveVersionID   string // empty until the draft is stored remotely
	LastSavedAt       *time.Time
	AutoSaveEnabled   bool
}

// Reporter receives remote failures, including those of background
// operations that have no caller to return to. op names the operation.
type Reporter func(op string, err error)

// Options configures a Session.
type Options struct {
	AutoSaveDelay   time.Duration
	DisableAutoSave bool
	RequestTimeout  time.Duration
	OnError         Reporter
	OnAutoSave      func(savedAt time.Time)
	Scheduler       Scheduler
	Now             func() time.Time
}

func (o *Options) withDefaults() Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.AutoSaveDelay <= 0 {
		out.AutoSaveDelay = DefaultAutoSaveDelay
	}
	if out.RequestTimeout <= 0 {
		out.RequestTimeout = DefaultRequestTimeout
	}
	if out.Scheduler == nil {
		out.Scheduler = realScheduler{}
	}
	if out.Now == nil {
		out.Now = time.Now
	}
	return out
}
