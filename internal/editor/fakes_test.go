package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/cover-letter-studio/internal/sections"
	"github.com/jonathan/cover-letter-studio/internal/types"
)

var errRemoteDown = errors.New("remote down")

type updateCall struct {
	VersionID string
	Name      sections.Name
	Content   string
}

type revertCall struct {
	VersionID string
	Name      sections.Name
	Target    string
}

// fakeRemote records calls and serves canned responses.
type fakeRemote struct {
	mu sync.Mutex

	versionID string
	document  string
	history   map[sections.Name][]types.SectionSnapshot

	draftErr    error
	updateErr   error
	saveErr     error
	historyErr  map[sections.Name]error
	snapshotErr error
	revertErr   error
	getErr      error

	drafts    []*types.CreateDraftRequest
	updates   []updateCall
	saves     []sections.Set
	snapshots []string
	reverts   []revertCall
	gets      int
	histories int

	// onSave runs at the start of SaveAllSections, outside the lock.
	onSave func()
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		versionID:  "v-1",
		history:    make(map[sections.Name][]types.SectionSnapshot),
		historyErr: make(map[sections.Name]error),
	}
}

func (f *fakeRemote) CreateDraft(_ context.Context, req *types.CreateDraftRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drafts = append(f.drafts, req)
	if f.draftErr != nil {
		return "", f.draftErr
	}
	return f.versionID, nil
}

func (f *fakeRemote) GetCoverLetter(_ context.Context, versionID string) (*types.CoverLetter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &types.CoverLetter{VersionID: versionID, Content: f.document}, nil
}

func (f *fakeRemote) UpdateSection(_ context.Context, versionID string, name sections.Name, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updateCall{versionID, name, content})
	return f.updateErr
}

func (f *fakeRemote) SaveAllSections(_ context.Context, _ string, set sections.Set) error {
	if f.onSave != nil {
		f.onSave()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, set)
	return f.saveErr
}

func (f *fakeRemote) SectionHistory(_ context.Context, _ string, name sections.Name) ([]types.SectionSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histories++
	if err := f.historyErr[name]; err != nil {
		return nil, err
	}
	return f.history[name], nil
}

func (f *fakeRemote) CreateSectionSnapshot(_ context.Context, _ string, name sections.Name, description string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapshotErr != nil {
		return "", f.snapshotErr
	}
	id := fmt.Sprintf("snap-%d", len(f.snapshots)+1)
	f.snapshots = append(f.snapshots, description)
	f.history[name] = append([]types.SectionSnapshot{{VersionID: id, ChangeDescription: description}}, f.history[name]...)
	return id, nil
}

func (f *fakeRemote) RevertSection(_ context.Context, versionID string, name sections.Name, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reverts = append(f.reverts, revertCall{versionID, name, target})
	return f.revertErr
}

func (f *fakeRemote) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeRemote) updateCalls() []updateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]updateCall(nil), f.updates...)
}

// fakeScheduler never fires on its own; tests fire pending timers.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	sched   *fakeScheduler
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{sched: s, delay: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// active counts timers that are neither stopped nor fired.
func (s *fakeScheduler) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fire runs every active timer on the calling goroutine.
func (s *fakeScheduler) fire() {
	s.mu.Lock()
	var due []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

// fireStale runs a timer that was already stopped, as a real timer can when
// Stop loses the race with expiry.
func (s *fakeScheduler) fireStale(i int) {
	s.mu.Lock()
	t := s.timers[i]
	s.mu.Unlock()
	t.f()
}
