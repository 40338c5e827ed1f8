package draft

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yash-srivastava19/floaty/internal/shortcut"
)

// ShortcutSource delivers global shortcut events.
type ShortcutSource interface {
	Events() <-chan shortcut.Event
	Close() error
}

// ShortcutMsg is one shortcut event.
type ShortcutMsg struct {
	Event shortcut.Event
}

type shortcutClosedMsg struct{}

// Trigger opens the quick-capture surface when the global shortcut fires, or
// starts a new note in place when the open-same setting is on.
type Trigger struct {
	src    ShortcutSource
	win    Window
	engine *Engine
	logger *slog.Logger
	closed bool
}

func NewTrigger(src ShortcutSource, win Window, engine *Engine, logger *slog.Logger) *Trigger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trigger{src: src, win: win, engine: engine, logger: logger}
}

// Start waits for the first event. A nil source never fires.
func (t *Trigger) Start() tea.Cmd {
	if t == nil || t.src == nil {
		return nil
	}
	return t.wait()
}

func (t *Trigger) wait() tea.Cmd {
	ch := t.src.Events()
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return shortcutClosedMsg{}
		}
		return ShortcutMsg{Event: ev}
	}
}

// Update handles shortcut messages and reports whether msg was one.
func (t *Trigger) Update(msg tea.Msg) (tea.Cmd, bool) {
	if t == nil {
		return nil, false
	}
	switch msg := msg.(type) {
	case ShortcutMsg:
		if t.closed {
			return nil, true
		}
		if msg.Event.Name != shortcut.EventName {
			return t.wait(), true
		}
		t.logger.Debug("shortcut event", "open_same", t.engine.Settings().OpenSame)
		if t.engine.Settings().OpenSame {
			t.engine.CloseSettings()
			t.engine.NewNote(FocusTitle)
			return t.wait(), true
		}
		var open tea.Cmd
		if t.win != nil {
			open = t.win.OpenPrompt()
		}
		return tea.Batch(open, t.wait()), true
	case shortcutClosedMsg:
		t.closed = true
		return nil, true
	}
	return nil, false
}

// Close unsubscribes from shortcut events.
func (t *Trigger) Close() error {
	if t == nil || t.src == nil || t.closed {
		return nil
	}
	t.closed = true
	return t.src.Close()
}
