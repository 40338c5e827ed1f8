package ui

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"github.com/yash-srivastava19/floaty/internal/config"
	"github.com/yash-srivastava19/floaty/internal/draft"
	"github.com/yash-srivastava19/floaty/internal/notes"
	"github.com/yash-srivastava19/floaty/internal/window"
)

type inputFocus int

const (
	inputNone inputFocus = iota
	inputSearch
	inputTitle
	inputContent
)

const sidebarWidth = 32

// ── Messages ──────────────────────────────────────────────────────────────────

// fileChangedMsg arrives when the notes file changed underneath us.
type fileChangedMsg struct {
	open bool
}

// ── App struct ────────────────────────────────────────────────────────────────

type Options struct {
	Engine  *draft.Engine
	Trigger *draft.Trigger
	Window  draft.Window
	Changes <-chan notes.ChangeEvent
	Config  *config.Config
	Logger  *slog.Logger
}

// App is the main surface: the note list on the left and the editor pane.
type App struct {
	engine  *draft.Engine
	trigger *draft.Trigger
	win     draft.Window
	changes <-chan notes.ChangeEvent
	cfg     *config.Config
	logger  *slog.Logger
	keys    keyMap

	width     int
	height    int
	fullWidth bool

	// Inputs
	focus        inputFocus
	searchInput  textinput.Model
	titleInput   textinput.Model
	contentInput textarea.Model

	// Preview
	previewing bool
	viewport   viewport.Model

	// List: collection indexes matching the query, newest first
	query      string
	visible    []int
	listOffset int

	// Last engine state applied to the inputs
	draftRev int
	focusSeq int

	quitting bool

	statusMsg     string
	statusIsError bool
}

func New(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}

	si := textinput.New()
	si.Placeholder = "search..."
	si.CharLimit = 200
	si.Prompt = "/ "

	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.CharLimit = 200
	ti.Prompt = ""

	ci := textarea.New()
	ci.Placeholder = "Write something..."
	ci.CharLimit = 0
	ci.MaxHeight = 0
	ci.ShowLineNumbers = false

	return &App{
		engine:       opts.Engine,
		trigger:      opts.Trigger,
		win:          opts.Window,
		changes:      opts.Changes,
		cfg:          opts.Config,
		logger:       opts.Logger,
		keys:         newKeyMap(opts.Config.KeyCmd),
		searchInput:  si,
		titleInput:   ti,
		contentInput: ci,
		viewport:     viewport.New(80, 20),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.engine.Init(), a.trigger.Start(), a.waitForChange())
}

// Close releases the shortcut subscription and stops autosave. Safe to call
// more than once.
func (a *App) Close() {
	a.engine.Close()
	if err := a.trigger.Close(); err != nil {
		a.logger.Warn("close shortcut subscription", "err", err)
	}
}

// ── Commands ──────────────────────────────────────────────────────────────────

func (a *App) waitForChange() tea.Cmd {
	if a.changes == nil {
		return nil
	}
	ch := a.changes
	return func() tea.Msg {
		_, ok := <-ch
		return fileChangedMsg{open: ok}
	}
}

// ── Update ────────────────────────────────────────────────────────────────────

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd, ok := a.trigger.Update(msg); ok {
		return a, tea.Batch(cmd, a.sync())
	}

	var cmds []tea.Cmd
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()

	case window.MaximizeMsg:
		a.fullWidth = !a.fullWidth
		a.layout()

	case window.PromptOpenedMsg:
		if msg.Err != nil {
			a.setStatus("capture: "+msg.Err.Error(), true)
		}

	case fileChangedMsg:
		if msg.open {
			cmds = append(cmds, a.engine.Refresh(), a.waitForChange())
		}

	case tea.KeyMsg:
		a.statusMsg = ""
		cmds = append(cmds, a.handleKey(msg))

	default:
		cmds = append(cmds, a.engine.Update(msg), a.updateFocused(msg))
	}

	cmds = append(cmds, a.sync())
	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Close):
		return a.quit()
	case key.Matches(msg, a.keys.Minimize):
		return a.win.Minimize()
	case key.Matches(msg, a.keys.Maximize):
		return a.win.Maximize()
	case key.Matches(msg, a.keys.Settings):
		if a.engine.Mode() == draft.ModeSettings {
			a.engine.CloseSettings()
		} else {
			a.blurAll()
			a.engine.OpenSettings()
		}
		return nil
	}

	if a.engine.Mode() == draft.ModeSettings {
		return a.updateSettings(msg)
	}

	switch {
	case key.Matches(msg, a.keys.New):
		a.previewing = false
		a.engine.NewNote(draft.FocusTitle)
		return nil
	case key.Matches(msg, a.keys.Escape):
		a.blurAll()
		a.engine.Blur()
		a.engine.Cancel()
		return nil
	case key.Matches(msg, a.keys.Delete):
		return a.engine.Delete()
	case key.Matches(msg, a.keys.Preview):
		a.togglePreview()
		return nil
	case key.Matches(msg, a.keys.Copy):
		a.copyDraft()
		return nil
	}

	switch a.focus {
	case inputSearch:
		return a.updateSearch(msg)
	case inputTitle:
		return a.updateTitle(msg)
	case inputContent:
		return a.updateContent(msg)
	}
	return a.updateBrowse(msg)
}

// ── Browse (no input focused) ─────────────────────────────────────────────────

func (a *App) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.String() == "q":
		return a.quit()
	case key.Matches(msg, a.keys.Up):
		a.moveSelection(-1)
	case key.Matches(msg, a.keys.Down):
		a.moveSelection(1)
	case key.Matches(msg, a.keys.Search):
		return a.focusInput(inputSearch)
	case key.Matches(msg, a.keys.Edit):
		if a.editable() {
			a.previewing = false
			return a.focusInput(inputContent)
		}
		if len(a.visible) > 0 {
			a.engine.Select(a.visible[0])
		}
	case msg.String() == "t":
		if a.editable() {
			a.previewing = false
			return a.focusInput(inputTitle)
		}
	}
	return nil
}

func (a *App) moveSelection(delta int) {
	if len(a.visible) == 0 {
		return
	}
	pos := slices.Index(a.visible, a.engine.Selected())
	if pos < 0 {
		pos = 0
	} else {
		pos = max(0, min(pos+delta, len(a.visible)-1))
	}
	a.engine.Select(a.visible[pos])
	a.ensureVisible(pos)
}

// ── Search ────────────────────────────────────────────────────────────────────

func (a *App) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "down":
		a.blurAll()
		if len(a.visible) > 0 {
			a.engine.Select(a.visible[0])
			a.ensureVisible(0)
		}
		return nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if q := a.searchInput.Value(); q != a.query {
		a.query = q
		a.listOffset = 0
		a.refreshVisible()
	}
	return cmd
}

// ── Editor ────────────────────────────────────────────────────────────────────

func (a *App) updateTitle(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Switch), msg.String() == "enter":
		return a.focusInput(inputContent)
	}
	var cmd tea.Cmd
	a.titleInput, cmd = a.titleInput.Update(msg)
	return tea.Batch(cmd, a.engine.SetTitle(a.titleInput.Value()))
}

func (a *App) updateContent(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, a.keys.Switch) {
		return a.focusInput(inputTitle)
	}
	var cmd tea.Cmd
	a.contentInput, cmd = a.contentInput.Update(msg)
	return tea.Batch(cmd, a.engine.SetContent(a.contentInput.Value()))
}

// updateFocused forwards non-key messages, such as cursor blinks, to the
// focused input.
func (a *App) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.focus {
	case inputSearch:
		a.searchInput, cmd = a.searchInput.Update(msg)
	case inputTitle:
		a.titleInput, cmd = a.titleInput.Update(msg)
	case inputContent:
		a.contentInput, cmd = a.contentInput.Update(msg)
	}
	return cmd
}

// ── Settings ──────────────────────────────────────────────────────────────────

func (a *App) updateSettings(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Toggle):
		s := a.engine.Settings()
		s.OpenSame = !s.OpenSame
		return a.engine.UpdateSettings(s)
	case key.Matches(msg, a.keys.Escape), msg.String() == "q":
		a.engine.CloseSettings()
	}
	return nil
}

// ── Engine sync ───────────────────────────────────────────────────────────────

// sync copies engine state into the widgets after every update: list
// contents, draft text the engine replaced, and pending focus requests.
func (a *App) sync() tea.Cmd {
	a.refreshVisible()

	if rev := a.engine.DraftRev(); rev != a.draftRev {
		a.draftRev = rev
		d := a.engine.Draft()
		a.titleInput.SetValue(d.Title)
		a.contentInput.SetValue(d.Content)
		if a.engine.LastFocus() == draft.FocusNone && (a.focus == inputTitle || a.focus == inputContent) {
			a.blurAll()
		}
		if a.previewing {
			a.renderPreview()
		}
	}

	if a.quitting && !a.engine.Saving() {
		return a.shutdown()
	}
	if a.engine.Mode() == draft.ModeSettings {
		a.blurAll()
		return nil
	}

	req := a.engine.FocusRequest()
	if req.Seq == a.focusSeq {
		return nil
	}
	a.focusSeq = req.Seq
	a.previewing = false
	switch req.Target {
	case draft.FocusTitle:
		return a.focusInput(inputTitle)
	case draft.FocusContent:
		return a.focusInput(inputContent)
	}
	return nil
}

// focusInput focuses f with the caret at the end of its text.
func (a *App) focusInput(f inputFocus) tea.Cmd {
	a.blurAll()
	a.focus = f
	switch f {
	case inputSearch:
		a.searchInput.CursorEnd()
		return a.searchInput.Focus()
	case inputTitle:
		a.engine.SetFocus(draft.FocusTitle)
		a.titleInput.CursorEnd()
		return a.titleInput.Focus()
	case inputContent:
		a.engine.SetFocus(draft.FocusContent)
		// SetValue leaves the caret after the last character.
		a.contentInput.SetValue(a.contentInput.Value())
		return a.contentInput.Focus()
	}
	return nil
}

func (a *App) blurAll() {
	a.focus = inputNone
	a.searchInput.Blur()
	a.titleInput.Blur()
	a.contentInput.Blur()
}

func (a *App) quit() tea.Cmd {
	a.quitting = true
	a.blurAll()
	cmd := a.engine.Flush()
	if cmd == nil && !a.engine.Saving() {
		return a.shutdown()
	}
	return cmd
}

func (a *App) shutdown() tea.Cmd {
	a.quitting = false
	a.Close()
	if a.win == nil {
		return tea.Quit
	}
	return a.win.Close()
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (a *App) editable() bool {
	switch a.engine.Phase().(type) {
	case draft.Composing, draft.Bound:
		return true
	}
	return false
}

func (a *App) refreshVisible() {
	idx := notes.FilterIndices(a.engine.Notes(), a.query)
	slices.Reverse(idx)
	a.visible = idx
	if a.listOffset > max(0, len(idx)-1) {
		a.listOffset = max(0, len(idx)-1)
	}
}

func (a *App) togglePreview() {
	if !a.editable() {
		return
	}
	a.previewing = !a.previewing
	if a.previewing {
		a.blurAll()
		a.renderPreview()
	}
}

func (a *App) renderPreview() {
	d := a.engine.Draft()
	body := d.Content
	if strings.TrimSpace(d.Title) != "" {
		body = "# " + d.Title + "\n\n" + body
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(20, a.viewport.Width-2)),
	)
	rendered := body
	if err == nil {
		if out, err2 := r.Render(body); err2 == nil {
			rendered = out
		}
	}
	a.viewport.SetContent(rendered)
	a.viewport.GotoTop()
}

func (a *App) copyDraft() {
	if !a.editable() {
		return
	}
	if err := clipboard.WriteAll(a.engine.Draft().Content); err != nil {
		a.setStatus("copy failed: "+err.Error(), true)
		return
	}
	a.setStatus("copied to clipboard", false)
}

func (a *App) layout() {
	bodyH := a.bodyHeight()
	editorW := a.editorWidth()
	a.searchInput.Width = sidebarWidth - 8
	a.titleInput.Width = max(10, editorW-6)
	a.contentInput.SetWidth(max(10, editorW-4))
	a.contentInput.SetHeight(max(3, bodyH-6))
	a.viewport.Width = max(10, editorW-2)
	a.viewport.Height = max(3, bodyH-2)
	if a.previewing {
		a.renderPreview()
	}
}

func (a *App) bodyHeight() int {
	return max(5, a.height-4)
}

func (a *App) editorWidth() int {
	if a.fullWidth {
		return a.width
	}
	return max(20, a.width-sidebarWidth-1)
}

// listHeight is the number of sidebar rows available for notes.
func (a *App) listHeight() int {
	return max(1, a.bodyHeight()-5)
}

func (a *App) ensureVisible(pos int) {
	listH := a.listHeight()
	if pos < a.listOffset {
		a.listOffset = pos
	}
	if pos >= a.listOffset+listH {
		a.listOffset = pos - listH + 1
	}
}

func (a *App) setStatus(msg string, isErr bool) {
	a.statusMsg = msg
	a.statusIsError = isErr
}

func humanTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dw", int(d.Hours()/(24*7)))
	default:
		return t.Format("Jan 2")
	}
}

func noteAge(n notes.Note) string {
	t, ok := n.Time()
	if !ok {
		return ""
	}
	return humanTime(t)
}

// truncate cuts s to maxW terminal cells, ending in an ellipsis when cut.
func truncate(s string, maxW int) string {
	if maxW < 4 {
		maxW = 4
	}
	return runewidth.Truncate(s, maxW, "…")
}

// notePreview returns the first non-empty, non-heading line of a note body,
// truncated to maxW cells.
func notePreview(body string, maxW int) string {
	for _, line := range strings.Split(body, "\n") {
		l := strings.TrimSpace(line)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		return truncate(l, maxW)
	}
	return ""
}
