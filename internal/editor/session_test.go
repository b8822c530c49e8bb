package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/cover-letter-studio/internal/sections"
	"github.com/jonathan/cover-letter-studio/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const letter = `Acme Corp

Dear Hiring Manager,
I build reliable services.
Sincerely,
Jane`

var testJob = types.JobContext{JobTitle: "Backend Engineer", CompanyName: "Acme"}

type harness struct {
	remote  *fakeRemote
	sched   *fakeScheduler
	session *Session

	mu     sync.Mutex
	errors []string
}

func newHarness(t *testing.T, opts *Options) *harness {
	t.Helper()
	h := &harness{remote: newFakeRemote(), sched: &fakeScheduler{}}
	o := Options{}
	if opts != nil {
		o = *opts
	}
	o.Scheduler = h.sched
	o.OnError = func(op string, _ error) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.errors = append(h.errors, op)
	}
	h.session = New(h.remote, testJob, &o)
	t.Cleanup(h.session.Close)
	return h
}

func (h *harness) reported() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.errors...)
}

// editing opens the sample letter and enters edit mode with a draft.
func (h *harness) editing(t *testing.T) {
	t.Helper()
	h.session.Open(letter)
	require.NoError(t, h.session.BeginEdit(context.Background()))
	require.Equal(t, "v-1", h.session.State().ActiveVersionID)
}

func TestOpen_ParsesIntoPreview(t *testing.T) {
	h := newHarness(t, nil)
	h.session.Open(letter)

	st := h.session.State()
	assert.False(t, st.IsEditing)
	assert.False(t, st.HasUnsavedChanges)
	assert.Empty(t, st.ActiveVersionID)
	assert.True(t, st.AutoSaveEnabled)
	assert.Equal(t, sections.Parse(letter), st.Sections)
	assert.Equal(t, "Sincerely,\nJane", st.Sections.Get(sections.Conclusion))
}

func TestBeginEdit_CreatesDraftOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.editing(t)

	require.Len(t, h.remote.drafts, 1)
	draft := h.remote.drafts[0]
	assert.Equal(t, letter, draft.CoverLetter)
	assert.Equal(t, "Backend Engineer", draft.JobTitle)
	assert.Equal(t, "Acme", draft.CompanyName)

	require.NoError(t, h.session.BeginEdit(context.Background()))
	_, err := h.session.Save(context.Background())
	require.NoError(t, err)
	require.NoError(t, h.session.BeginEdit(context.Background()))

	assert.Len(t, h.remote.drafts, 1)
	assert.True(t, h.session.State().IsEditing)
}

func TestBeginEdit_FailureIsNonFatal(t *testing.T) {
	h := newHarness(t, nil)
	h.remote.draftErr = errRemoteDown
	h.session.Open(letter)

	err := h.session.BeginEdit(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errRemoteDown)

	st := h.session.State()
	assert.True(t, st.IsEditing)
	assert.Empty(t, st.ActiveVersionID)
	assert.Equal(t, []string{"create draft"}, h.reported())

	require.NoError(t, h.session.EditSection(sections.Body, "local only"))
	h.session.Wait()
	assert.Empty(t, h.remote.updateCalls())
	assert.Zero(t, h.sched.active())

	text, err := h.session.Save(context.Background())
	require.NoError(t, err)
	assert.Contains(t, text, "local only")
	assert.Zero(t, h.remote.saveCount())
	assert.Nil(t, h.session.State().LastSavedAt)
}

func TestBeginEdit_RetryKeepsLocalEdits(t *testing.T) {
	h := newHarness(t, nil)
	h.remote.draftErr = errRemoteDown
	h.session.Open(letter)
	_ = h.session.BeginEdit(context.Background())
	require.NoError(t, h.session.EditSection(sections.Body, "added paragraph"))
	_, err := h.session.Save(context.Background())
	require.NoError(t, err)

	h.remote.draftErr = nil
	require.NoError(t, h.session.BeginEdit(context.Background()))

	require.Len(t, h.remote.drafts, 2)
	assert.Contains(t, h.remote.drafts[1].CoverLetter, "added paragraph")
}

func TestOpenVersion_ResumesWithoutDraft(t *testing.T) {
	h := newHarness(t, nil)
	h.session.OpenVersion("v-9", sections.Parse(letter))

	require.NoError(t, h.session.BeginEdit(context.Background()))
	assert.Empty(t, h.remote.drafts)
	assert.Equal(t, "v-9", h.session.State().ActiveVersionID)
}

func TestOpenVersion_KeepsStoredSections(t *testing.T) {
	h := newHarness(t, nil)
	stored := sections.FromMap(map[string]string{
		"header":       "Acme Corp\n\n",
		"introduction": "Dear Hiring Manager,\n\n",
		"body":         "I build reliable services.\n\n",
		"conclusion":   "Sincerely,\nJane",
	})
	h.session.OpenVersion("v-9", stored)
	assert.Equal(t, stored, h.session.State().Sections)

	ctx := context.Background()
	require.NoError(t, h.session.BeginEdit(ctx))
	require.NoError(t, h.session.EditSection(sections.Body, "changed"))
	h.session.Cancel()
	assert.Equal(t, stored, h.session.State().Sections, "cancel restores the stored sections")

	require.NoError(t, h.session.BeginEdit(ctx))
	_, err := h.session.Save(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, h.remote.saveCount())
	assert.Equal(t, stored, h.remote.saves[0])
}

func TestEditSection_PushesInBackground(t *testing.T) {
	h := newHarness(t, nil)
	h.editing(t)

	require.NoError(t, h.session.EditSection(sections.Body, "new body"))
	h.session.Wait()

	assert.Equal(t, []updateCall{{"v-1", sections.Body, "new body"}}, h.remote.updateCalls())
	st := h.session.State()
	assert.True(t, st.HasUnsavedChanges)
	assert.Equal(t, "new body", st.Sections.Get(sections.Body))
}

func TestEditSection_UpdateFailureKeepsLocalEdit(t *testing.T) {
	h := newHarness(t, nil)
	h.editing(t)
	h.remote.mu.Lock()
	h.remote.updateErr = errRemoteDown
	h.remote.mu.Unlock()

	require.NoError(t, h.session.EditSection(sections.Introduction, "Hello"))
	h.session.Wait()

	assert.Equal(t, "Hello", h.session.State().Sections.Get(sections.Introduction))
	assert.Equal(t, []string{"update section"}, h.reported())
}

func TestEditSection_UnknownName(t *testing.T) {
	h := newHarness(t, nil)
	h.session.Open(letter)

	err := h.session.EditSection(sections.Name("postscript"), "P.S.")
	var unknown *sections.UnknownSectionError
	require.ErrorAs(t, err, &unknown)
	assert.False(t, h.session.State().HasUnsavedChanges)
}

func TestEditSection_NormalisesName(t *testing.T) {
	h := newHarness(t, nil)
	h.editing(t)

	require.NoError(t, h.session.EditSection(sections.Name(" HEADER "), "New Header"))
	h.session.Wait()

	assert.Equal(t, "New Header", h.session.State().Sections.Get(sections.Header))
	assert.Equal(t, []updateCall{{"v-1", sections.Header, "New Header"}}, h.remote.updateCalls())
}

func TestAutoSave_DebouncesBurstIntoOneSave(t *testing.T) {
	h := newHarness(t, &Options{AutoSaveDelay: 2 * time.Second})
	h.editing(t)

	for _, text := range []string{"a", "ab", "abc"} {
		require.NoError(t, h.session.EditSection(sections.Body, text))
	}
	h.session.Wait()

	assert.Equal(t, 1, h.sched.active())
	assert.True(t, h.session.AutoSavePending())
	assert.Equal(t, 2*time.Second, h.sched.timers[0].delay)
	assert.Zero(t, h.remote.saveCount())

	h.sched.fire()

	require.Equal(t, 1, h.remote.saveCount())
	assert.Equal(t, "abc", h.remote.saves[0].Get(sections.Body))
	st := h.session.State()
	assert.False(t, st.HasUnsavedChanges)
	assert.NotNil(t, st.LastSavedAt)
	assert.False(t, h.session.AutoSavePending())
}

func TestAutoSave_StaleTimerIgnored(t *testing.T) {
	h := newHarness(t, nil)
	h.editing(t)

	require.NoError(t, h.session.EditSection(sections.Body, "one"))
	require.NoError(t, h.session.EditSection(sections.Body, "two"))
	h.session.Wait()

	h.sched.fireStale(0)
	assert.Zero(t, h.remote.saveCount())

	h.sched.fire()
	assert.Equal(t, 1, h.remote.saveCount())
}

func TestAutoSave_DisabledSchedulesNothing(t *testing.T) {
	h := newHarness(t, &Options{DisableAutoSave: true})
	h.editing(t)

	require.NoError(t, h.session.EditSection(sections.Body, "edit"))
	h.session.Wait()

	assert.Zero(t, h.sched.active())
	assert.True(t, h.session.State().HasUnsavedChanges)
}

func TestSetAutoSave_TogglesPendingTimer(t *testing.T) {
	h := newHarness(t, nil)
	h.editing(t)
	require.NoError(t, h.session.EditSection(sections.Body, "edit"))
	h.session.Wait()
	require.Equal(t, 1, h.sched.active())

	h.session.SetAutoSave(false)
	assert.Zero(t, h.sched.active())
	assert.False(t, h.session.State().AutoSaveEnabled)

	h.session.SetAutoSave(true)
	assert.Equal(t, 1, h.sched.active())

	h.sched.fire()
	assert.Equal(t, 1, h.remote.saveCount())
}

func TestAutoSave_FailureKeepsUnsaved(t *testing.T) {
	var autosaved int
	h := newHarness(t, &Options{OnAutoSave: func(time.Time) { autosaved++ }})
	h.editing(t)
	h.remote.saveErr = errRemoteDown

	require.NoError(t, h.session.EditSection(sections.Body, "edit"))
	h.session.Wait()
	h.sched.fire()

	st := h.session.State()
	assert.True(t, st.HasUnsavedChanges)
	assert.Nil(t, st.LastSavedAt)
	assert.Contains(t, h.reported(), "autosave")
	assert.Zero(t, autosaved)
}

func TestAutoSave_EditDuringSaveStaysUnsaved(t *testing.T) {
	h := newHarness(t, nil)
	h.editing(t)
	require.NoError(t, h.session.EditSection(sections.Body, "first"))
	h.session.Wait()

	h.remote.onSave = func() {
		h.remote.onSave = nil
		require.NoError(t, h.session.EditSection(sections.Body, "second"))
	}
	h.sched.fire()
	h.session.Wait()

	st := h.session.State()
	assert.True(t, st.HasUnsavedChanges)
	assert.NotNil(t, st.LastSavedAt)
	assert.Equal(t, "first", h.remote.saves[0].Get(sections.Body))
	assert.Equal(t, 1, h.sched.active())
}

func TestSave_Success(t *testing.T) {
	h := newHarness(t, &Options{Now: func() time.Time { return time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC) }})
	h.editing(t)
	require.NoError(t, h.session.EditSection(sections.Body, "I ship on time."))
	h.session.Wait()

	text, err := h.session.Save(context.Background())
	require.NoError(t, err)

	st := h.session.State()
	assert.Equal(t, st.Sections.Join(), text)
	assert.False(t, st.IsEditing)
	assert.False(t, st.HasUnsavedChanges)
	require.NotNil(t, st.LastSavedAt)
	assert.Equal(t, 2025, st.LastSavedAt.Year())
	assert.Equal(t, 1, h.remote.saveCount())
	assert.Zero(t, h.sched.active())
}

func TestSave_FailureStaysEditing(t *testing.T) {
	h := newHarness(t, nil)
	h.editing(t)
	require.NoError(t, h.session.EditSection(sections.Body, "draft"))
	h.session.Wait()
	h.remote.saveErr = errRemoteDown

	text, err := h.session.Save(context.Background())
	require.Error(t, err)
	assert.Empty(t, text)

	st := h.session.State()
	assert.True(t, st.IsEditing)
	assert.True(t, st.HasUnsavedChanges)
	assert.Nil(t, st.LastSavedAt)
	assert.Contains(t, h.reported(), "save")
}

func TestCancel_RestoresOpenedText(t *testing.T) {
	h := newHarness(t, nil)
	h.editing(t)
	require.NoError(t, h.session.EditSection(sections.Conclusion, "Cheers"))
	h.session.Wait()

	h.session.Cancel()

	st := h.session.State()
	assert.Equal(t, sections.Parse(letter), st.Sections)
	assert.False(t, st.IsEditing)
	assert.False(t, st.HasUnsavedChanges)
	assert.Zero(t, h.sched.active())
}

func TestHistoryOperations_RequireDraft(t *testing.T) {
	h := newHarness(t, nil)
	h.session.Open(letter)
	ctx := context.Background()

	_, err := h.session.RequestSectionHistory(ctx, sections.Body)
	assert.ErrorIs(t, err, ErrNoDraft)
	assert.ErrorIs(t, h.session.CreateSectionSnapshot(ctx, sections.Body, ""), ErrNoDraft)
	assert.ErrorIs(t, h.session.RevertSection(ctx, sections.Body, "s1"), ErrNoDraft)
	assert.ErrorIs(t, h.session.RefreshAllHistories(ctx), ErrNoDraft)
	assert.Zero(t, h.remote.histories)
}

func TestCreateSectionSnapshot_RefreshesHistory(t *testing.T) {
	h := newHarness(t, nil)
	h.editing(t)

	require.NoError(t, h.session.CreateSectionSnapshot(context.Background(), sections.Body, "before rewrite"))

	history := h.session.History(sections.Body)
	require.Len(t, history, 1)
	assert.Equal(t, "snap-1", history[0].VersionID)
	assert.Equal(t, "before rewrite", history[0].ChangeDescription)
}

func TestCreateSectionSnapshot_Failure(t *testing.T) {
	h := newHarness(t, nil)
	h.editing(t)
	h.remote.snapshotErr = errRemoteDown

	err := h.session.CreateSectionSnapshot(context.Background(), sections.Body, "")
	require.Error(t, err)
	assert.Empty(t, h.session.History(sections.Body))
	assert.Equal(t, []string{"create snapshot"}, h.reported())
}

func TestRevertSection_ResyncsEverySection(t *testing.T) {
	h := newHarness(t, nil)
	h.editing(t)
	require.NoError(t, h.session.EditSection(sections.Introduction, "local intro"))
	h.session.Wait()

	remoteDoc := "Acme Corp\n\nDear Hiring Manager,\nreverted intro\nBest regards,\nJane"
	h.remote.document = remoteDoc
	h.remote.history[sections.Introduction] = []types.SectionSnapshot{{VersionID: "s1"}}

	require.NoError(t, h.session.RevertSection(context.Background(), sections.Introduction, "s1"))

	assert.Equal(t, []revertCall{{"v-1", sections.Introduction, "s1"}}, h.remote.reverts)
	st := h.session.State()
	assert.Equal(t, sections.Parse(remoteDoc), st.Sections)
	assert.Equal(t, "Best regards,\nJane", st.Sections.Get(sections.Conclusion))
	assert.True(t, st.HasUnsavedChanges)
	assert.Len(t, h.session.History(sections.Introduction), 1)
}

func TestRevertSection_FailureLeavesSections(t *testing.T) {
	h := newHarness(t, nil)
	h.editing(t)
	h.remote.revertErr = errRemoteDown
	before := h.session.State().Sections

	err := h.session.RevertSection(context.Background(), sections.Body, "s1")
	require.Error(t, err)
	assert.Equal(t, before, h.session.State().Sections)
	assert.Zero(t, h.remote.gets)
}

func TestRevertSection_ReloadFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.editing(t)
	h.remote.getErr = errRemoteDown
	before := h.session.State().Sections

	err := h.session.RevertSection(context.Background(), sections.Body, "s1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errRemoteDown))
	assert.Equal(t, before, h.session.State().Sections)
	assert.Equal(t, []string{"reload cover letter"}, h.reported())
}

func TestRefreshAllHistories_PartialFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.editing(t)
	h.remote.history[sections.Header] = []types.SectionSnapshot{{VersionID: "h1"}}
	h.remote.history[sections.Body] = []types.SectionSnapshot{{VersionID: "b2"}, {VersionID: "b1"}}
	h.remote.historyErr[sections.Signature] = errRemoteDown

	err := h.session.RefreshAllHistories(context.Background())
	require.Error(t, err)

	assert.Equal(t, 5, h.remote.histories)
	assert.Len(t, h.session.History(sections.Header), 1)
	assert.Len(t, h.session.History(sections.Body), 2)
	assert.Empty(t, h.session.History(sections.Signature))
}

func TestClose_RejectsEditsAndCancelsTimer(t *testing.T) {
	h := newHarness(t, nil)
	h.editing(t)
	require.NoError(t, h.session.EditSection(sections.Body, "edit"))
	h.session.Wait()
	require.Equal(t, 1, h.sched.active())

	h.session.Close()

	assert.Zero(t, h.sched.active())
	assert.ErrorIs(t, h.session.EditSection(sections.Body, "late"), ErrClosed)
	assert.ErrorIs(t, h.session.BeginEdit(context.Background()), ErrClosed)
	_, err := h.session.Save(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDebouncer_RealScheduler(t *testing.T) {
	fired := make(chan struct{}, 4)
	d := newDebouncer(nil, 20*time.Millisecond, func() { fired <- struct{}{} })

	for i := 0; i < 3; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("debounced function never ran")
	}
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, fired, 0)
	assert.False(t, d.Pending())
}
