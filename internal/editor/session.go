// Package editor keeps the local, section-by-section editing state of a
// cover letter and mirrors it to the remote versioned store: every edit is
// pushed in the background, idle periods trigger an autosave, and history
// operations (snapshot, revert) resynchronise the local copy.
package editor

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/jonathan/cover-letter-studio/internal/sections"
	"github.com/jonathan/cover-letter-studio/internal/types"
	"golang.org/x/sync/errgroup"
)

// Session is one edit session over one cover letter. All methods are safe
// for concurrent use. The session lock is never held across a remote call.
type Session struct {
	remote Remote
	job    types.JobContext
	opts   Options

	mu       sync.Mutex
	idle     *sync.Cond
	original string
	opened   sections.Set
	state    State
	history  map[sections.Name][]types.SectionSnapshot
	edits    uint64 // bumped by every local mutation
	inflight int
	closed   bool

	autosave *debouncer
}

// New creates a session bound to remote. job is sent with the draft when
// editing begins.
func New(remote Remote, job types.JobContext, opts *Options) *Session {
	s := &Session{
		remote:  remote,
		job:     job,
		opts:    opts.withDefaults(),
		history: make(map[sections.Name][]types.SectionSnapshot),
	}
	s.idle = sync.NewCond(&s.mu)
	s.state.AutoSaveEnabled = !s.opts.DisableAutoSave
	s.autosave = newDebouncer(s.opts.Scheduler, s.opts.AutoSaveDelay, s.autoSaveTick)
	return s
}

// Open loads raw letter text, replacing any previous document. The session
// starts in preview mode with nothing stored remotely.
func (s *Session) Open(rawText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked("", rawText, sections.Parse(rawText))
}

// OpenVersion loads the sections already stored remotely under versionID,
// so editing resumes that version instead of creating a new draft. The
// sections are taken as stored, not reparsed.
func (s *Session) OpenVersion(versionID string, set sections.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(versionID, set.Join(), set)
}

func (s *Session) resetLocked(versionID, rawText string, set sections.Set) {
	s.autosave.Stop()
	s.original = rawText
	s.opened = set
	s.state.Sections = set
	s.state.IsEditing = false
	s.state.HasUnsavedChanges = false
	s.state.ActiveVersionID = versionID
	s.state.LastSavedAt = nil
	s.history = make(map[sections.Name][]types.SectionSnapshot)
	s.edits++
}

// BeginEdit enters edit mode. The first time, the document is stored
// remotely as a new draft. A failed draft is reported and returned, but
// edit mode is entered anyway and editing continues locally only.
func (s *Session) BeginEdit(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state.IsEditing {
		s.mu.Unlock()
		return nil
	}
	if s.state.ActiveVersionID != "" {
		s.state.IsEditing = true
		s.armLocked()
		s.mu.Unlock()
		return nil
	}
	text := s.original
	if s.state.Sections != s.opened {
		text = s.state.Sections.Join()
	}
	s.mu.Unlock()

	versionID, err := s.remote.CreateDraft(ctx, types.NewCreateDraftRequest(text, s.job))

	if err != nil {
		s.report("create draft", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsEditing = true
	if err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}
	if s.state.ActiveVersionID == "" {
		s.state.ActiveVersionID = versionID
	}
	s.armLocked()
	return nil
}

// EditSection replaces one section locally. When a draft exists the new
// content is pushed in the background and the autosave timer restarts.
func (s *Session) EditSection(name sections.Name, text string) error {
	name, err := sections.ParseName(string(name))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.state.Sections = s.state.Sections.With(name, text)
	s.state.HasUnsavedChanges = true
	s.edits++

	if s.state.IsEditing && s.state.ActiveVersionID != "" {
		versionID := s.state.ActiveVersionID
		s.goLocked(func(ctx context.Context) {
			if err := s.remote.UpdateSection(ctx, versionID, name, text); err != nil {
				s.report("update section", err)
			}
		})
		s.armLocked()
	}
	return nil
}

// Save stores every section remotely (when a draft exists), leaves edit
// mode and returns the reassembled letter. On failure the session stays in
// edit mode with its unsaved flag set.
func (s *Session) Save(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	versionID := s.state.ActiveVersionID
	set := s.state.Sections
	edits := s.edits
	s.mu.Unlock()

	if versionID != "" {
		if err := s.remote.SaveAllSections(ctx, versionID, set); err != nil {
			s.report("save", err)
			return "", fmt.Errorf("failed to save cover letter: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.autosave.Stop()
	if versionID != "" {
		now := s.opts.Now()
		s.state.LastSavedAt = &now
	}
	s.state.IsEditing = false
	if s.edits == edits {
		s.state.HasUnsavedChanges = false
	}
	return set.Join(), nil
}

// Cancel discards local edits, restoring the sections the session was
// opened with. Edits already pushed remotely are not rolled back.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autosave.Stop()
	s.state.Sections = s.opened
	s.state.IsEditing = false
	s.state.HasUnsavedChanges = false
	s.edits++
}

// RequestSectionHistory fetches and caches the snapshots of one section,
// newest first.
func (s *Session) RequestSectionHistory(ctx context.Context, name sections.Name) ([]types.SectionSnapshot, error) {
	versionID, err := s.activeVersion()
	if err != nil {
		return nil, err
	}

	history, err := s.remote.SectionHistory(ctx, versionID, name)
	if err != nil {
		s.report("load history", err)
		return nil, fmt.Errorf("failed to load %s history: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.ActiveVersionID == versionID {
		s.history[name] = history
	}
	return cloneHistory(history), nil
}

// RefreshAllHistories reloads the history of every section concurrently.
// Sections that loaded are cached even when another one failed.
func (s *Session) RefreshAllHistories(ctx context.Context) error {
	versionID, err := s.activeVersion()
	if err != nil {
		return err
	}

	names := sections.Names()
	results := make([][]types.SectionSnapshot, len(names))
	loaded := make([]bool, len(names))

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			history, err := s.remote.SectionHistory(ctx, versionID, name)
			if err != nil {
				return fmt.Errorf("failed to load %s history: %w", name, err)
			}
			results[i] = history
			loaded[i] = true
			return nil
		})
	}
	err = g.Wait()
	if err != nil {
		s.report("load history", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.ActiveVersionID == versionID {
		for i, name := range names {
			if loaded[i] {
				s.history[name] = results[i]
			}
		}
	}
	return err
}

// CreateSectionSnapshot records the current remote content of a section
// in its history, then refreshes the cached history.
func (s *Session) CreateSectionSnapshot(ctx context.Context, name sections.Name, description string) error {
	versionID, err := s.activeVersion()
	if err != nil {
		return err
	}

	if _, err := s.remote.CreateSectionSnapshot(ctx, versionID, name, description); err != nil {
		s.report("create snapshot", err)
		return fmt.Errorf("failed to create %s snapshot: %w", name, err)
	}
	_, err = s.RequestSectionHistory(ctx, name)
	return err
}

// RevertSection restores a section to a snapshot remotely, then reloads
// the whole document and replaces every local section with the reparsed
// remote content. The unsaved flag is left as it was.
func (s *Session) RevertSection(ctx context.Context, name sections.Name, targetVersionID string) error {
	versionID, err := s.activeVersion()
	if err != nil {
		return err
	}

	if err := s.remote.RevertSection(ctx, versionID, name, targetVersionID); err != nil {
		s.report("revert section", err)
		return fmt.Errorf("failed to revert %s: %w", name, err)
	}

	doc, err := s.remote.GetCoverLetter(ctx, versionID)
	if err != nil {
		s.report("reload cover letter", err)
		return fmt.Errorf("reverted %s but failed to reload the letter: %w", name, err)
	}

	s.mu.Lock()
	if s.state.ActiveVersionID == versionID {
		s.state.Sections = sections.Parse(doc.Content)
		s.edits++
	}
	s.mu.Unlock()

	_, err = s.RequestSectionHistory(ctx, name)
	return err
}

// SetAutoSave toggles autosave. Disabling cancels a pending autosave;
// enabling with unsaved edits restarts the quiet period.
func (s *Session) SetAutoSave(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.AutoSaveEnabled = enabled
	if !enabled {
		s.autosave.Stop()
		return
	}
	if s.state.HasUnsavedChanges {
		s.armLocked()
	}
}

// State returns a copy of the session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	if st.LastSavedAt != nil {
		t := *st.LastSavedAt
		st.LastSavedAt = &t
	}
	return st
}

// History returns the cached history of a section, newest first.
func (s *Session) History(name sections.Name) []types.SectionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneHistory(s.history[name])
}

// AutoSavePending reports whether an autosave is scheduled.
func (s *Session) AutoSavePending() bool {
	return s.autosave.Pending()
}

// Wait blocks until every background section update and running autosave
// has finished.
func (s *Session) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.inflight > 0 {
		s.idle.Wait()
	}
}

// Close cancels any pending autosave and rejects further edits. Background
// calls already started are allowed to finish.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.autosave.Stop()
}

func (s *Session) autoSaveTick() {
	s.mu.Lock()
	if s.closed || !s.state.AutoSaveEnabled || !s.state.IsEditing ||
		s.state.ActiveVersionID == "" || !s.state.HasUnsavedChanges {
		s.mu.Unlock()
		return
	}
	versionID := s.state.ActiveVersionID
	set := s.state.Sections
	edits := s.edits
	s.inflight++
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.RequestTimeout)
	err := s.remote.SaveAllSections(ctx, versionID, set)
	cancel()
	if err != nil {
		s.report("autosave", err)
		s.mu.Lock()
		s.doneLocked()
		return
	}

	now := s.opts.Now()
	s.mu.Lock()
	if s.state.ActiveVersionID == versionID {
		s.state.LastSavedAt = &now
		if s.edits == edits {
			s.state.HasUnsavedChanges = false
		}
	}
	s.doneLocked()

	if s.opts.OnAutoSave != nil {
		s.opts.OnAutoSave(now)
	}
}

// armLocked restarts the autosave quiet period if autosave applies.
func (s *Session) armLocked() {
	if s.state.AutoSaveEnabled && s.state.IsEditing && s.state.ActiveVersionID != "" && s.state.HasUnsavedChanges {
		s.autosave.Trigger()
	}
}

// goLocked runs f in the background, tracked by Wait.
func (s *Session) goLocked(f func(ctx context.Context)) {
	s.inflight++
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.RequestTimeout)
		defer cancel()
		f(ctx)

		s.mu.Lock()
		s.doneLocked()
	}()
}

// doneLocked marks one background call finished and releases the lock.
func (s *Session) doneLocked() {
	s.inflight--
	if s.inflight == 0 {
		s.idle.Broadcast()
	}
	s.mu.Unlock()
}

func (s *Session) activeVersion() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	if s.state.ActiveVersionID == "" {
		return "", ErrNoDraft
	}
	return s.state.ActiveVersionID, nil
}

// report must be called without s.mu held.
func (s *Session) report(op string, err error) {
	if s.opts.OnError != nil {
		s.opts.OnError(op, err)
		return
	}
	log.Printf("[editor] %s failed: %v", op, err)
}

func cloneHistory(in []types.SectionSnapshot) []types.SectionSnapshot {
	if in == nil {
		return nil
	}
	out := make([]types.SectionSnapshot, len(in))
	copy(out, in)
	return out
}
