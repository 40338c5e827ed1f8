package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yash-srivastava19/floaty/internal/config"
	"github.com/yash-srivastava19/floaty/internal/notes"
)

func TestInit_loadsCollectionAndSettings(t *testing.T) {
	svc := newFake(3)
	svc.settings = config.Settings{OpenSame: true, KeyCmd: "ctrl+k"}
	e := newTestEngine(t, svc)

	assert.Equal(t, 3, e.Cache().Len())
	assert.Equal(t, svc.settings, e.Settings())
	assert.Equal(t, ModeView, e.Mode())
	assert.Equal(t, -1, e.Selected())
}

func TestInit_settingsFailureUsesDefaults(t *testing.T) {
	svc := newFake(0)
	svc.failConfig = true
	e := newTestEngine(t, svc)

	assert.Equal(t, config.DefaultSettings(), e.Settings())
}

func TestComposing_firstCommitAddsAndBinds(t *testing.T) {
	svc := newFake(2)
	e := newTestEngine(t, svc)

	e.NewNote(FocusTitle)
	require.Equal(t, ModeNew, e.Mode())
	run(t, e, e.SetTitle("Hi"))

	adds := svc.callsOf("add")
	require.Len(t, adds, 1)
	assert.Equal(t, "Hi", adds[0].title)
	assert.Equal(t, "", adds[0].content)
	assert.Empty(t, svc.callsOf("edit"), "no edit may be issued for an unbound draft")

	assert.Equal(t, ModeView, e.Mode())
	b, ok := e.Binding()
	require.True(t, ok)
	assert.Equal(t, 2, b.Index)
	assert.Equal(t, "n3", b.ID)
	assert.Equal(t, 3, e.Cache().Len())
}

func TestComposing_commitsTrimmedValues(t *testing.T) {
	svc := newFake(0)
	e := newTestEngine(t, svc)

	e.NewNote(FocusContent)
	e.SetTitle("  padded  ")
	run(t, e, e.SetContent("\tbody\n"))

	adds := svc.callsOf("add")
	require.Len(t, adds, 1)
	assert.Equal(t, "padded", adds[0].title)
	assert.Equal(t, "body", adds[0].content)
}

func TestComposing_blankDraftIsNeverAdded(t *testing.T) {
	svc := newFake(0)
	e := newTestEngine(t, svc)

	e.NewNote(FocusTitle)
	run(t, e, e.SetTitle("   "))
	run(t, e, e.SetContent("\n\t"))

	assert.Empty(t, svc.callsOf("add"))
	assert.Equal(t, ModeNew, e.Mode())
}

func TestComposing_addFailureLeavesDraftUnbound(t *testing.T) {
	svc := newFake(1)
	svc.failAdd = true
	e := newTestEngine(t, svc)

	e.NewNote(FocusTitle)
	run(t, e, e.SetTitle("lost"))

	assert.Equal(t, ModeNew, e.Mode())
	_, bound := e.Binding()
	assert.False(t, bound)
	assert.ErrorIs(t, e.Err(), ErrTransport)
	assert.ErrorIs(t, e.Err(), errBoom)
	assert.Equal(t, "lost", e.Draft().Title)
	assert.Equal(t, 1, e.Cache().Len())
}

func TestComposing_listFailureAfterAddStillBinds(t *testing.T) {
	svc := newFake(2)
	e := newTestEngine(t, svc)

	e.NewNote(FocusTitle)
	tick := e.SetTitle("Hi")
	commit := e.Update(tick())
	require.NotNil(t, commit)

	svc.failList = true
	done := commit()
	svc.failList = false
	run(t, e, e.Update(done))

	b, ok := e.Binding()
	require.True(t, ok)
	assert.Equal(t, Binding{ID: "n3", Index: 2}, b)
	assert.Equal(t, 3, e.Cache().Len())

	run(t, e, e.SetTitle("Hi!"))
	assert.Len(t, svc.callsOf("add"), 1)
	edits := svc.callsOf("edit")
	require.Len(t, edits, 1)
	assert.Equal(t, 2, edits[0].index)
}

func TestAutosave_onlyLatestTickCommits(t *testing.T) {
	svc := newFake(0)
	e := newTestEngine(t, svc)
	e.NewNote(FocusTitle)

	e.SetTitle("a")
	stale := e.seq
	latest := e.SetTitle("ab")

	assert.Nil(t, e.Update(autosaveMsg{seq: stale}))
	assert.Empty(t, svc.callsOf("add"))

	run(t, e, latest)
	adds := svc.callsOf("add")
	require.Len(t, adds, 1)
	assert.Equal(t, "ab", adds[0].title)
}

func TestAutosave_tickDuringCommitFollowsUpWithEdit(t *testing.T) {
	svc := newFake(0)
	e := newTestEngine(t, svc)
	e.NewNote(FocusTitle)

	e.SetTitle("a")
	first := e.Update(autosaveMsg{seq: e.seq})
	require.NotNil(t, first)

	e.SetTitle("ab")
	assert.Nil(t, e.Update(autosaveMsg{seq: e.seq}), "a second write must wait for the first")

	run(t, e, first)

	assert.Len(t, svc.callsOf("add"), 1)
	edits := svc.callsOf("edit")
	require.Len(t, edits, 1)
	assert.Equal(t, 0, edits[0].index)
	assert.Equal(t, "ab", edits[0].title)
	assert.Equal(t, "ab", svc.notes[0].Title)
}

func TestBound_editsAtBoundIndex(t *testing.T) {
	svc := newFake(3)
	e := newTestEngine(t, svc)

	e.Select(1)
	assert.Equal(t, "note 1", e.Draft().Title)
	run(t, e, e.SetContent("changed"))

	edits := svc.callsOf("edit")
	require.Len(t, edits, 1)
	assert.Equal(t, call{op: "edit", index: 1, title: "note 1", content: "changed"}, edits[0])
	assert.Equal(t, 1, e.Selected())
}

func TestBound_repeatedCommitsSendSameEdit(t *testing.T) {
	svc := newFake(2)
	e := newTestEngine(t, svc)

	e.Select(0)
	run(t, e, e.Flush())
	run(t, e, e.Flush())

	edits := svc.callsOf("edit")
	require.Len(t, edits, 2)
	assert.Equal(t, call{op: "edit", index: 0, title: "note 0", content: "body 0"}, edits[0])
	assert.Equal(t, edits[0], edits[1])
	assert.Equal(t, 2, e.Cache().Len())
}

func TestBound_clearingBothFieldsStillEdits(t *testing.T) {
	svc := newFake(2)
	e := newTestEngine(t, svc)

	e.Select(0)
	e.SetTitle("")
	run(t, e, e.SetContent(""))

	edits := svc.callsOf("edit")
	require.Len(t, edits, 1)
	assert.Equal(t, "", edits[0].title)
	assert.Equal(t, 2, e.Cache().Len())
}

func TestBound_editFailureKeepsBinding(t *testing.T) {
	svc := newFake(2)
	svc.failEdit = true
	e := newTestEngine(t, svc)

	e.Select(1)
	run(t, e, e.SetTitle("x"))

	b, ok := e.Binding()
	require.True(t, ok)
	assert.Equal(t, 1, b.Index)
	assert.ErrorIs(t, e.Err(), ErrTransport)
}

func TestSelect_discardsPendingTimer(t *testing.T) {
	svc := newFake(2)
	e := newTestEngine(t, svc)

	e.Select(0)
	e.SetTitle("typed")
	pending := e.seq
	e.Select(1)

	assert.Nil(t, e.Update(autosaveMsg{seq: pending}))
	assert.Empty(t, svc.callsOf("edit"))
	assert.Equal(t, "note 1", e.Draft().Title)
}

func TestSelect_outOfRangeIsIgnored(t *testing.T) {
	e := newTestEngine(t, newFake(1))
	e.Select(5)
	assert.Equal(t, -1, e.Selected())
}

func TestCommit_afterNavigatingAwayDoesNotRebind(t *testing.T) {
	svc := newFake(2)
	e := newTestEngine(t, svc)

	e.NewNote(FocusTitle)
	e.SetTitle("draft")
	cmd := e.Update(autosaveMsg{seq: e.seq})
	require.NotNil(t, cmd)

	e.Select(0)
	run(t, e, cmd)

	b, ok := e.Binding()
	require.True(t, ok)
	assert.Equal(t, "n1", b.ID)
	assert.Equal(t, "note 0", e.Draft().Title)
	assert.Equal(t, 3, e.Cache().Len())
}

func TestDelete_rebindsToSamePosition(t *testing.T) {
	svc := newFake(5)
	e := newTestEngine(t, svc)
	e.SetFocus(FocusContent)

	e.Select(2)
	run(t, e, e.Delete())

	dels := svc.callsOf("delete")
	require.Len(t, dels, 1)
	assert.Equal(t, 2, dels[0].index)
	assert.Equal(t, 2, e.Selected())
	assert.Equal(t, "note 3", e.Draft().Title)
	assert.Equal(t, "body 3", e.Draft().Content)
	assert.Equal(t, FocusNone, e.LastFocus())
	assert.Equal(t, 4, e.Cache().Len())
}

func TestDelete_lastPositionMovesUp(t *testing.T) {
	svc := newFake(3)
	e := newTestEngine(t, svc)

	e.Select(2)
	run(t, e, e.Delete())

	assert.Equal(t, 1, e.Selected())
	assert.Equal(t, "note 1", e.Draft().Title)
}

func TestDelete_onlyNoteClearsEverything(t *testing.T) {
	svc := newFake(1)
	e := newTestEngine(t, svc)

	e.Select(0)
	run(t, e, e.Delete())

	assert.Equal(t, ModeView, e.Mode())
	assert.Equal(t, Idle{}, e.Phase())
	assert.Equal(t, Draft{}, e.Draft())
	assert.Equal(t, -1, e.Selected())
	assert.Zero(t, e.Cache().Len())
}

func TestDelete_failureChangesNothing(t *testing.T) {
	svc := newFake(3)
	svc.failDelete = true
	e := newTestEngine(t, svc)

	e.Select(1)
	run(t, e, e.Delete())

	assert.Equal(t, 1, e.Selected())
	assert.Equal(t, "note 1", e.Draft().Title)
	assert.Equal(t, 3, e.Cache().Len())
	assert.ErrorIs(t, e.Err(), ErrTransport)
}

func TestDelete_withoutBindingIsNoop(t *testing.T) {
	svc := newFake(2)
	e := newTestEngine(t, svc)
	assert.Nil(t, e.Delete())

	e.NewNote(FocusTitle)
	assert.Nil(t, e.Delete())
	assert.Empty(t, svc.callsOf("delete"))
}

func TestDelete_waitsForInflightEdit(t *testing.T) {
	svc := newFake(3)
	e := newTestEngine(t, svc)

	e.Select(1)
	e.SetTitle("edited")
	edit := e.Update(autosaveMsg{seq: e.seq})
	require.NotNil(t, edit)

	assert.Nil(t, e.Delete())
	run(t, e, edit)

	require.Len(t, svc.callsOf("edit"), 1)
	dels := svc.callsOf("delete")
	require.Len(t, dels, 1)
	assert.Equal(t, 1, dels[0].index)
	assert.Equal(t, 2, e.Cache().Len())
	assert.Equal(t, "note 2", e.Draft().Title)
}

func TestRefresh_reResolvesBindingByID(t *testing.T) {
	svc := newFake(4)
	e := newTestEngine(t, svc)

	e.Select(2)
	svc.removeExternally(0)
	run(t, e, e.Refresh())

	b, ok := e.Binding()
	require.True(t, ok)
	assert.Equal(t, "n3", b.ID)
	assert.Equal(t, 1, b.Index)

	run(t, e, e.SetContent("after shift"))
	edits := svc.callsOf("edit")
	require.Len(t, edits, 1)
	assert.Equal(t, 1, edits[0].index)
}

func TestRefresh_vanishedNoteKeepsDraftAsNew(t *testing.T) {
	svc := newFake(2)
	e := newTestEngine(t, svc)

	e.Select(1)
	svc.removeExternally(1)
	run(t, e, e.Refresh())

	assert.Equal(t, ModeNew, e.Mode())
	assert.Equal(t, "note 1", e.Draft().Title)
}

func TestRefresh_listedBeforeFirstAddIsDropped(t *testing.T) {
	svc := newFake(2)
	e := newTestEngine(t, svc)

	// The watcher's List runs before the add but is delivered after it.
	early := e.Refresh()()

	e.NewNote(FocusTitle)
	run(t, e, e.SetTitle("Hi"))
	require.Equal(t, ModeView, e.Mode())

	assert.Nil(t, e.Update(early))
	assert.Equal(t, ModeView, e.Mode())
	b, ok := e.Binding()
	require.True(t, ok)
	assert.Equal(t, Binding{ID: "n3", Index: 2}, b)
	assert.Equal(t, 3, e.Cache().Len())

	run(t, e, e.SetTitle("Hi!"))
	assert.Len(t, svc.callsOf("add"), 1)
	edits := svc.callsOf("edit")
	require.Len(t, edits, 1)
	assert.Equal(t, call{op: "edit", index: 2, title: "Hi!", content: ""}, edits[0])
	assert.Len(t, svc.notes, 3)
}

func TestRefresh_missingOnceIsCheckedAgain(t *testing.T) {
	svc := newFake(2)
	e := newTestEngine(t, svc)
	e.Select(1)

	e.list++
	partial := refreshedMsg{list: e.list, notes: []notes.Note{svc.notes[0]}}
	check := e.Update(partial)
	require.NotNil(t, check, "a missing note must be looked up again")
	assert.Equal(t, ModeView, e.Mode())

	// Writes wait for the check instead of using a stale index.
	tick := e.SetContent("kept")
	run(t, e, tick)
	assert.Empty(t, svc.callsOf("edit"))

	run(t, e, check)
	b, ok := e.Binding()
	require.True(t, ok)
	assert.Equal(t, Binding{ID: "n2", Index: 1}, b)
	edits := svc.callsOf("edit")
	require.Len(t, edits, 1)
	assert.Equal(t, call{op: "edit", index: 1, title: "note 1", content: "kept"}, edits[0])
}

func TestRefresh_failureKeepsCache(t *testing.T) {
	svc := newFake(2)
	e := newTestEngine(t, svc)
	svc.failList = true

	run(t, e, e.Refresh())
	assert.Equal(t, 2, e.Cache().Len())
	assert.ErrorIs(t, e.Err(), ErrTransport)
}

func TestCancel_returnsToIdle(t *testing.T) {
	svc := newFake(1)
	e := newTestEngine(t, svc)

	e.NewNote(FocusTitle)
	e.SetTitle("never mind")
	pending := e.seq
	e.Cancel()

	assert.Equal(t, Idle{}, e.Phase())
	assert.Equal(t, Draft{}, e.Draft())
	assert.Nil(t, e.Update(autosaveMsg{seq: pending}))
	assert.Empty(t, svc.callsOf("add"))
}

func TestCancel_ignoredWhenBound(t *testing.T) {
	e := newTestEngine(t, newFake(1))
	e.Select(0)
	e.Cancel()
	assert.Equal(t, 0, e.Selected())
}

func TestFlush_commitsImmediately(t *testing.T) {
	svc := newFake(0)
	e := newTestEngine(t, svc)

	e.NewNote(FocusTitle)
	e.SetTitle("quick")
	pending := e.seq
	run(t, e, e.Flush())

	assert.Len(t, svc.callsOf("add"), 1)
	assert.Nil(t, e.Update(autosaveMsg{seq: pending}))
}

func TestClose_stopsAutosave(t *testing.T) {
	svc := newFake(0)
	e := newTestEngine(t, svc)

	e.NewNote(FocusTitle)
	e.SetTitle("x")
	e.Close()
	assert.Nil(t, e.Update(autosaveMsg{seq: e.seq}))
	assert.Nil(t, e.SetTitle("xy"))
}

func TestFocus_requestedAfterTransitions(t *testing.T) {
	svc := newFake(2)
	e := newTestEngine(t, svc)

	e.NewNote(FocusTitle)
	first := e.FocusRequest()
	assert.Equal(t, FocusTitle, first.Target)

	e.SetFocus(FocusContent)
	run(t, e, e.SetContent("typing"))
	bound := e.FocusRequest()
	assert.Greater(t, bound.Seq, first.Seq, "auto-bind must restore focus")
	assert.Equal(t, FocusContent, bound.Target)

	e.Select(0)
	assert.Greater(t, e.FocusRequest().Seq, bound.Seq)
}

func TestFocus_noneMeansNoRequest(t *testing.T) {
	e := newTestEngine(t, newFake(2))
	e.Select(0)
	e.Select(1)
	assert.Zero(t, e.FocusRequest().Seq)
}

func TestSettings_overlayKeepsUnderlyingPhase(t *testing.T) {
	svc := newFake(0)
	e := newTestEngine(t, svc)

	e.NewNote(FocusTitle)
	e.SetTitle("behind settings")
	cmd := e.Update(autosaveMsg{seq: e.seq})
	e.OpenSettings()
	assert.Equal(t, ModeSettings, e.Mode())

	run(t, e, cmd)
	assert.Equal(t, ModeSettings, e.Mode())

	e.CloseSettings()
	assert.Equal(t, ModeView, e.Mode())
	_, ok := e.Binding()
	assert.True(t, ok)
}

func TestSettings_updatePersists(t *testing.T) {
	svc := newFake(0)
	e := newTestEngine(t, svc)

	run(t, e, e.UpdateSettings(config.Settings{OpenSame: true}))

	want := config.Settings{OpenSame: true, KeyCmd: config.DefaultKeyCmd}
	assert.Equal(t, want, e.Settings())
	require.NotNil(t, svc.saved)
	assert.Equal(t, want, *svc.saved)
}
