package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yash-srivastava19/floaty/internal/config"
	"github.com/yash-srivastava19/floaty/internal/logging"
	"github.com/yash-srivastava19/floaty/internal/notes"
)

var errBoom = errors.New("boom")

type call struct {
	op      string
	index   int
	title   string
	content string
}

type fakeService struct {
	mu       sync.Mutex
	notes    []notes.Note
	next     int
	calls    []call
	settings config.Settings
	saved    *config.Settings

	failAdd, failEdit, failDelete, failList, failConfig bool
}

func newFake(n int) *fakeService {
	f := &fakeService{settings: config.Settings{OpenSame: false, KeyCmd: "ctrl+n"}}
	for i := 0; i < n; i++ {
		f.next++
		f.notes = append(f.notes, notes.Note{
			ID:      fmt.Sprintf("n%d", f.next),
			Title:   fmt.Sprintf("note %d", i),
			Content: fmt.Sprintf("body %d", i),
		})
	}
	return f
}

func (f *fakeService) record(c call) {
	f.calls = append(f.calls, c)
}

func (f *fakeService) List(context.Context) ([]notes.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList {
		return nil, errBoom
	}
	return append([]notes.Note(nil), f.notes...), nil
}

func (f *fakeService) Add(_ context.Context, title, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(call{op: "add", index: -1, title: title, content: content})
	if f.failAdd {
		return "", errBoom
	}
	f.next++
	id := fmt.Sprintf("n%d", f.next)
	f.notes = append(f.notes, notes.Note{ID: id, Title: title, Content: content})
	return id, nil
}

func (f *fakeService) Edit(_ context.Context, index int, title, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(call{op: "edit", index: index, title: title, content: content})
	if f.failEdit {
		return errBoom
	}
	if index < 0 || index >= len(f.notes) {
		return notes.ErrIndexOutOfRange
	}
	f.notes[index].Title = title
	f.notes[index].Content = content
	return nil
}

func (f *fakeService) Delete(_ context.Context, index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(call{op: "delete", index: index})
	if f.failDelete {
		return errBoom
	}
	if index < 0 || index >= len(f.notes) {
		return notes.ErrIndexOutOfRange
	}
	f.notes = append(f.notes[:index], f.notes[index+1:]...)
	return nil
}

func (f *fakeService) Config(context.Context) (config.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failConfig {
		return config.Settings{}, errBoom
	}
	return f.settings, nil
}

func (f *fakeService) SaveConfig(_ context.Context, s config.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = &s
	return nil
}

func (f *fakeService) callsOf(op string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

// removeExternally simulates another process deleting a note.
func (f *fakeService) removeExternally(index int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = append(f.notes[:index], f.notes[index+1:]...)
}

type fakeWindow struct {
	prompts, closes, minimizes, maximizes int
}

type promptOpenedMsg struct{}

func (w *fakeWindow) Close() tea.Cmd    { w.closes++; return nil }
func (w *fakeWindow) Minimize() tea.Cmd { w.minimizes++; return nil }
func (w *fakeWindow) Maximize() tea.Cmd { w.maximizes++; return nil }
func (w *fakeWindow) OpenPrompt() tea.Cmd {
	w.prompts++
	return func() tea.Msg { return promptOpenedMsg{} }
}

func newTestEngine(t *testing.T, svc Service) *Engine {
	t.Helper()
	e := New(svc, Options{Delay: time.Millisecond, Logger: logging.Nop()})
	run(t, e, e.Init())
	return e
}

// run executes cmd and every command it leads to, feeding messages back
// into the engine, until nothing is left.
func run(t *testing.T, e *Engine, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("command chain did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if msg == nil {
			continue
		}
		queue = append(queue, e.Update(msg))
	}
}
