package draft

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yash-srivastava19/floaty/internal/config"
	"github.com/yash-srivastava19/floaty/internal/notes"
)

const defaultCallTimeout = 5 * time.Second

type commitKind int

const (
	commitAdd commitKind = iota
	commitEdit
)

type autosaveMsg struct{ seq int }

type committedMsg struct {
	gen   int
	kind  commitKind
	id    string
	notes []notes.Note
	err   error
}

type refreshedMsg struct {
	list  int
	notes []notes.Note
	err   error
}

type deletedMsg struct {
	gen   int
	index int
	notes []notes.Note
	err   error
}

type settingsLoadedMsg struct {
	settings config.Settings
	err      error
}

type settingsSavedMsg struct{ err error }

type Options struct {
	// Delay is the quiet period before an edit is committed.
	Delay time.Duration
	// CallTimeout bounds every service call.
	CallTimeout time.Duration
	Logger      *slog.Logger
}

// Engine owns the draft, its binding to a persisted note and the autosave
// timer. It is driven from a Bubble Tea Update loop: every method runs on
// that goroutine and service calls happen in the returned commands.
type Engine struct {
	svc     Service
	cache   *Cache
	logger  *slog.Logger
	delay   time.Duration
	timeout time.Duration

	phase    Phase
	draft    Draft
	draftRev int
	settings config.Settings

	lastFocus Focus
	focusReq  FocusRequest

	// seq identifies the armed autosave tick; bumping it cancels the tick.
	seq int
	// gen identifies the draft; results for an older draft only refresh the cache.
	gen int

	// list numbers Refresh calls; applied is the newest number a write result
	// has superseded. Refreshes at or below applied are stale.
	list    int
	applied int
	// lost is the bound ID while a refresh confirms it is really gone.
	lost string

	inflight    bool
	dirty       bool
	deleteQueue bool

	status string
	err    error
	closed bool
}

func New(svc Service, opts Options) *Engine {
	if opts.Delay <= 0 {
		opts.Delay = config.DefaultAutosaveDelay
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{
		svc:      svc,
		cache:    NewCache(),
		logger:   opts.Logger,
		delay:    opts.Delay,
		timeout:  opts.CallTimeout,
		phase:    Idle{},
		settings: config.DefaultSettings(),
	}
}

// Init loads settings and the collection.
func (e *Engine) Init() tea.Cmd {
	return tea.Batch(e.loadSettings(), e.Refresh())
}

func (e *Engine) Phase() Phase { return e.phase }
func (e *Engine) Mode() Mode { return e.phase.Mode() }
func (e *Engine) Draft() Draft { return e.draft }
func (e *Engine) Cache() *Cache { return e.cache }
func (e *Engine) Notes() []notes.Note { return e.cache.Snapshot() }
func (e *Engine) Settings() config.Settings { return e.settings }
func (e *Engine) LastFocus() Focus { return e.lastFocus }
func (e *Engine) FocusRequest() FocusRequest { return e.focusReq }
func (e *Engine) Saving() bool { return e.inflight }
func (e *Engine) Status() string { return e.status }
func (e *Engine) Err() error { return e.err }

// DraftRev changes whenever the engine replaces the draft text itself, as
// opposed to the user typing. The UI reloads its inputs when it changes.
func (e *Engine) DraftRev() int { return e.draftRev }

// Binding reports the note the draft is bound to, if any.
func (e *Engine) Binding() (Binding, bool) {
	if b, ok := e.base().(Bound); ok {
		return b.Binding, true
	}
	return Binding{}, false
}

// Selected is the highlighted sidebar position, or -1.
func (e *Engine) Selected() int {
	if b, ok := e.Binding(); ok {
		return b.Index
	}
	return -1
}

// base is the phase beneath the settings screen.
func (e *Engine) base() Phase {
	if c, ok := e.phase.(Configuring); ok {
		return c.Prev
	}
	return e.phase
}

func (e *Engine) setBase(p Phase) {
	if _, ok := e.phase.(Configuring); ok {
		e.phase = Configuring{Prev: p}
		return
	}
	e.phase = p
}

// SetTitle records a title keystroke and re-arms autosave.
func (e *Engine) SetTitle(s string) tea.Cmd {
	e.lastFocus = FocusTitle
	if e.draft.Title == s {
		return nil
	}
	e.draft.Title = s
	return e.arm()
}

// SetContent records a content keystroke and re-arms autosave.
func (e *Engine) SetContent(s string) tea.Cmd {
	e.lastFocus = FocusContent
	if e.draft.Content == s {
		return nil
	}
	e.draft.Content = s
	return e.arm()
}

// SetFocus records which input the user focused.
func (e *Engine) SetFocus(f Focus) {
	e.lastFocus = f
}

// Blur drops input focus without forgetting the draft.
func (e *Engine) Blur() {
	e.lastFocus = FocusNone
}

// NewNote starts composing an empty draft and asks for focus on f.
func (e *Engine) NewNote(f Focus) {
	e.reset()
	e.phase = Composing{}
	e.replaceDraft(Draft{})
	e.lastFocus = f
	e.requestFocus()
}

// Select binds the draft to the note at index.
func (e *Engine) Select(index int) {
	n, ok := e.cache.At(index)
	if !ok {
		return
	}
	if b, bound := e.Binding(); bound && b.ID == n.ID && e.phase.Mode() != ModeSettings {
		return
	}
	e.reset()
	e.phase = Bound{Binding: Binding{ID: n.ID, Index: index}}
	e.replaceDraft(Draft{Title: n.Title, Content: n.Content})
	e.requestFocus()
}

// Cancel abandons a new note that was never saved.
func (e *Engine) Cancel() {
	if _, ok := e.base().(Composing); !ok {
		return
	}
	e.reset()
	e.setBase(Idle{})
	e.replaceDraft(Draft{})
	e.lastFocus = FocusNone
}

// OpenSettings shows the settings screen over the current phase.
func (e *Engine) OpenSettings() {
	if _, ok := e.phase.(Configuring); ok {
		return
	}
	e.phase = Configuring{Prev: e.phase}
}

// CloseSettings returns to the phase the settings screen was opened from.
func (e *Engine) CloseSettings() {
	c, ok := e.phase.(Configuring)
	if !ok {
		return
	}
	e.phase = c.Prev
	e.requestFocus()
}

// UpdateSettings applies s and persists it when the service supports it.
func (e *Engine) UpdateSettings(s config.Settings) tea.Cmd {
	if strings.TrimSpace(s.KeyCmd) == "" {
		s.KeyCmd = config.DefaultKeyCmd
	}
	e.settings = s
	w, ok := e.svc.(SettingsWriter)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := e.ctx()
		defer cancel()
		return settingsSavedMsg{err: transportErr("save config", w.SaveConfig(ctx, s))}
	}
}

// Refresh reloads the collection.
func (e *Engine) Refresh() tea.Cmd {
	e.list++
	list := e.list
	return func() tea.Msg {
		ctx, cancel := e.ctx()
		defer cancel()
		ns, err := e.svc.List(ctx)
		return refreshedMsg{list: list, notes: ns, err: transportErr("list", err)}
	}
}

// Delete removes the bound note. Nothing happens when no note is bound.
func (e *Engine) Delete() tea.Cmd {
	if _, ok := e.Binding(); !ok {
		return nil
	}
	e.seq++
	e.dirty = false
	if e.inflight || e.lost != "" {
		e.deleteQueue = true
		return nil
	}
	return e.deleteBound()
}

// Flush commits the draft now instead of waiting for the timer.
func (e *Engine) Flush() tea.Cmd {
	e.seq++
	return e.commit()
}

// Close stops autosave. Results already in flight still update the cache.
func (e *Engine) Close() {
	e.closed = true
	e.seq++
}

// Update handles the engine's own messages and ignores everything else.
func (e *Engine) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case autosaveMsg:
		if msg.seq != e.seq || e.closed {
			return nil
		}
		return e.commit()
	case committedMsg:
		return e.onCommitted(msg)
	case deletedMsg:
		return e.onDeleted(msg)
	case refreshedMsg:
		if msg.list <= e.applied {
			e.logger.Debug("dropping stale refresh", "list", msg.list, "applied", e.applied)
			return nil
		}
		if msg.err != nil {
			e.logger.Warn("refresh failed, keeping cached notes", "err", msg.err)
			e.status = "refresh failed"
			e.err = msg.err
			if e.lost != "" {
				// Could not confirm; keep the last known binding.
				e.lost = ""
				if !e.inflight {
					return e.afterWrite()
				}
			}
			return nil
		}
		e.cache.Replace(msg.notes)
		if cmd := e.reconcile(); cmd != nil {
			return cmd
		}
		if !e.inflight {
			return e.afterWrite()
		}
	case settingsLoadedMsg:
		if msg.err != nil {
			e.logger.Warn("load settings, using defaults", "err", msg.err)
			e.settings = config.DefaultSettings()
			return nil
		}
		e.settings = msg.settings
	case settingsSavedMsg:
		if msg.err != nil {
			e.fail("save settings failed", msg.err)
		}
	}
	return nil
}

func (e *Engine) arm() tea.Cmd {
	if e.closed {
		return nil
	}
	switch e.base().(type) {
	case Composing, Bound:
	default:
		return nil
	}
	e.seq++
	seq := e.seq
	return tea.Tick(e.delay, func(time.Time) tea.Msg {
		return autosaveMsg{seq: seq}
	})
}

func (e *Engine) commit() tea.Cmd {
	if e.inflight || e.lost != "" {
		e.dirty = true
		return nil
	}
	title := trimmed(e.draft.Title)
	content := trimmed(e.draft.Content)
	gen := e.gen

	switch p := e.base().(type) {
	case Composing:
		if title == "" && content == "" {
			return nil
		}
		e.inflight = true
		return func() tea.Msg {
			ctx, cancel := e.ctx()
			defer cancel()
			id, err := e.svc.Add(ctx, title, content)
			if err != nil {
				return committedMsg{gen: gen, kind: commitAdd, err: transportErr("add", err)}
			}
			ns, err := e.svc.List(ctx)
			return committedMsg{gen: gen, kind: commitAdd, id: id, notes: ns, err: transportErr("list", err)}
		}
	case Bound:
		e.inflight = true
		index := p.Binding.Index
		return func() tea.Msg {
			ctx, cancel := e.ctx()
			defer cancel()
			if err := e.svc.Edit(ctx, index, title, content); err != nil {
				return committedMsg{gen: gen, kind: commitEdit, err: transportErr("edit", err)}
			}
			ns, err := e.svc.List(ctx)
			return committedMsg{gen: gen, kind: commitEdit, notes: ns, err: transportErr("list", err)}
		}
	}
	return nil
}

func (e *Engine) onCommitted(msg committedMsg) tea.Cmd {
	e.inflight = false
	if msg.err != nil {
		e.fail("autosave failed", msg.err)
		if msg.kind == commitAdd && msg.id != "" && msg.gen == e.gen {
			// The note exists; only the listing failed. Bind where an append
			// lands and let a refresh confirm it.
			if _, composing := e.base().(Composing); composing {
				e.setBase(Bound{Binding: Binding{ID: msg.id, Index: e.cache.Len()}})
				e.requestFocus()
				return tea.Batch(e.Refresh(), e.afterWrite())
			}
		}
		return e.afterWrite()
	}
	e.cache.Replace(msg.notes)
	e.applied = e.list

	if msg.gen == e.gen {
		if _, composing := e.base().(Composing); composing && msg.kind == commitAdd {
			idx := e.cache.IndexOf(msg.id)
			if idx < 0 {
				idx = e.cache.Len() - 1
			}
			id := msg.id
			if n, ok := e.cache.At(idx); ok && id == "" {
				id = n.ID
			}
			e.setBase(Bound{Binding: Binding{ID: id, Index: idx}})
			e.requestFocus()
			e.logger.Debug("draft bound", "id", id, "index", idx)
		}
	}
	check := e.reconcile()
	e.status = "saved"
	e.err = nil
	return tea.Batch(check, e.afterWrite())
}

// afterWrite runs whatever queued up behind the write that just finished.
func (e *Engine) afterWrite() tea.Cmd {
	if e.lost != "" {
		return nil
	}
	if e.deleteQueue {
		e.deleteQueue = false
		e.dirty = false
		if _, ok := e.Binding(); ok {
			return e.deleteBound()
		}
		return nil
	}
	if e.dirty {
		e.dirty = false
		return e.commit()
	}
	return nil
}

func (e *Engine) deleteBound() tea.Cmd {
	b, ok := e.Binding()
	if !ok {
		return nil
	}
	e.inflight = true
	gen := e.gen
	return func() tea.Msg {
		ctx, cancel := e.ctx()
		defer cancel()
		if err := e.svc.Delete(ctx, b.Index); err != nil {
			return deletedMsg{gen: gen, index: b.Index, err: transportErr("delete", err)}
		}
		ns, err := e.svc.List(ctx)
		return deletedMsg{gen: gen, index: b.Index, notes: ns, err: transportErr("list", err)}
	}
}

func (e *Engine) onDeleted(msg deletedMsg) tea.Cmd {
	e.inflight = false
	if msg.err != nil {
		e.fail("delete failed", msg.err)
		return e.afterWrite()
	}
	e.cache.Replace(msg.notes)
	e.applied = e.list
	if msg.gen != e.gen {
		check := e.reconcile()
		return tea.Batch(check, e.afterWrite())
	}

	e.reset()
	e.lastFocus = FocusNone
	n := e.cache.Len()
	if n == 0 {
		e.setBase(Idle{})
		e.replaceDraft(Draft{})
	} else {
		idx := min(msg.index, n-1)
		note, _ := e.cache.At(idx)
		e.setBase(Bound{Binding: Binding{ID: note.ID, Index: idx}})
		e.replaceDraft(Draft{Title: note.Title, Content: note.Content})
	}
	e.status = "deleted"
	e.err = nil
	return nil
}

// reconcile re-resolves the binding after the cache changed. A bound note
// missing from one snapshot is checked again with a fresh List; only when it
// is missing twice does the draft fall back to an unsaved new note. Writes
// wait while the check runs.
func (e *Engine) reconcile() tea.Cmd {
	b, ok := e.Binding()
	if !ok {
		e.lost = ""
		return nil
	}
	idx := e.cache.IndexOf(b.ID)
	switch {
	case idx >= 0:
		e.lost = ""
		if idx != b.Index {
			e.setBase(Bound{Binding: Binding{ID: b.ID, Index: idx}})
		}
	case e.lost != b.ID:
		e.logger.Debug("bound note missing, checking again", "id", b.ID)
		e.lost = b.ID
		return e.Refresh()
	default:
		e.logger.Info("bound note disappeared, keeping draft as new", "id", b.ID)
		e.lost = ""
		e.deleteQueue = false
		e.setBase(Composing{})
	}
	return nil
}

// reset cancels the pending tick and starts a new draft generation.
func (e *Engine) reset() {
	e.seq++
	e.gen++
	e.dirty = false
	e.deleteQueue = false
	e.lost = ""
}

func (e *Engine) replaceDraft(d Draft) {
	e.draft = d
	e.draftRev++
}

func (e *Engine) requestFocus() {
	if e.lastFocus == FocusNone {
		return
	}
	e.focusReq = FocusRequest{Target: e.lastFocus, Seq: e.focusReq.Seq + 1}
}

func (e *Engine) fail(what string, err error) {
	e.logger.Error(what, "err", err)
	e.status = what
	e.err = err
}

func (e *Engine) loadSettings() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := e.ctx()
		defer cancel()
		s, err := e.svc.Config(ctx)
		return settingsLoadedMsg{settings: s, err: transportErr("config", err)}
	}
}

func (e *Engine) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), e.timeout)
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
