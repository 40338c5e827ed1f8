package ui

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yash-srivastava19/floaty/internal/draft"
	"github.com/yash-srivastava19/floaty/internal/templates"
)

// Capture is the quick-capture surface: a title and a body that autosave,
// closed with ctrl+s or esc once the last write has landed.
type Capture struct {
	engine *draft.Engine
	logger *slog.Logger
	keys   keyMap

	width  int
	height int

	focus        inputFocus
	titleInput   textinput.Model
	contentInput textarea.Model

	focusSeq int
	touched  bool
	closing  bool
	quitSent bool
}

func NewCapture(engine *draft.Engine, template string, logger *slog.Logger) *Capture {
	if logger == nil {
		logger = slog.Default()
	}

	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.CharLimit = 200
	ti.Prompt = ""

	ci := textarea.New()
	ci.Placeholder = "Capture a thought..."
	ci.CharLimit = 0
	ci.MaxHeight = 0
	ci.ShowLineNumbers = false

	engine.NewNote(draft.FocusContent)
	if body := templates.Get(template, time.Now().Format("2006-01-02")); body != "" {
		// Not armed: an untouched template is never saved on its own.
		_ = engine.SetContent(body)
		ci.SetValue(body)
	}

	return &Capture{
		engine:       engine,
		logger:       logger,
		keys:         newKeyMap(""),
		titleInput:   ti,
		contentInput: ci,
	}
}

func (c *Capture) Init() tea.Cmd {
	return tea.Batch(c.engine.Init(), c.sync())
}

func (c *Capture) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		c.titleInput.Width = max(10, c.width-6)
		c.contentInput.SetWidth(max(10, c.width-4))
		c.contentInput.SetHeight(max(3, c.height-8))
	case tea.KeyMsg:
		cmds = append(cmds, c.handleKey(msg))
	default:
		cmds = append(cmds, c.engine.Update(msg), c.updateFocused(msg))
	}
	cmds = append(cmds, c.sync())
	return c, tea.Batch(cmds...)
}

func (c *Capture) handleKey(msg tea.KeyMsg) tea.Cmd {
	if c.closing {
		return nil
	}
	switch {
	case key.Matches(msg, c.keys.Save), key.Matches(msg, c.keys.Close),
		key.Matches(msg, c.keys.Escape):
		return c.finish(c.touched)
	case key.Matches(msg, c.keys.Switch):
		if c.focus == inputTitle {
			return c.focusInput(inputContent)
		}
		return c.focusInput(inputTitle)
	}

	var cmd tea.Cmd
	switch c.focus {
	case inputTitle:
		if msg.String() == "enter" {
			return c.focusInput(inputContent)
		}
		c.titleInput, cmd = c.titleInput.Update(msg)
		if v := c.titleInput.Value(); v != c.engine.Draft().Title {
			c.touched = true
			return tea.Batch(cmd, c.engine.SetTitle(v))
		}
	case inputContent:
		c.contentInput, cmd = c.contentInput.Update(msg)
		if v := c.contentInput.Value(); v != c.engine.Draft().Content {
			c.touched = true
			return tea.Batch(cmd, c.engine.SetContent(v))
		}
	}
	return cmd
}

// finish closes the surface, committing first when save is set. A template
// nobody typed into is not worth a note.
func (c *Capture) finish(save bool) tea.Cmd {
	c.closing = true
	if !save {
		return nil
	}
	return c.engine.Flush()
}

func (c *Capture) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch c.focus {
	case inputTitle:
		c.titleInput, cmd = c.titleInput.Update(msg)
	case inputContent:
		c.contentInput, cmd = c.contentInput.Update(msg)
	}
	return cmd
}

func (c *Capture) sync() tea.Cmd {
	if c.quitSent {
		return nil
	}
	if c.closing && !c.engine.Saving() {
		c.engine.Close()
		c.quitSent = true
		return tea.Quit
	}
	req := c.engine.FocusRequest()
	if req.Seq == c.focusSeq {
		return nil
	}
	c.focusSeq = req.Seq
	switch req.Target {
	case draft.FocusTitle:
		return c.focusInput(inputTitle)
	case draft.FocusContent:
		return c.focusInput(inputContent)
	}
	return nil
}

func (c *Capture) focusInput(f inputFocus) tea.Cmd {
	c.focus = f
	c.titleInput.Blur()
	c.contentInput.Blur()
	switch f {
	case inputTitle:
		c.engine.SetFocus(draft.FocusTitle)
		c.titleInput.CursorEnd()
		return c.titleInput.Focus()
	case inputContent:
		c.engine.SetFocus(draft.FocusContent)
		c.contentInput.SetValue(c.contentInput.Value())
		return c.contentInput.Focus()
	}
	return nil
}

func (c *Capture) View() string {
	if c.width == 0 {
		return "loading..."
	}
	var b strings.Builder
	w := c.width

	label := styleTag.Render("new note")
	if _, bound := c.engine.Binding(); bound {
		label = styleSuccess.Render("saved")
	}
	if c.engine.Saving() {
		label = styleDimItem.Render("saving…")
	}
	b.WriteString(styleTitle.Render("floaty") + styleDivider.Render("  +  ") + label + "\n")
	b.WriteString(styleDivider.Render(strings.Repeat("─", w)) + "\n")

	titleSty, contentSty := styleInputBorder, styleInputBorder
	if c.focus == inputTitle {
		titleSty = styleInputActive
	} else {
		contentSty = styleInputActive
	}
	b.WriteString(titleSty.Width(w-4).Render(c.titleInput.View()) + "\n")
	b.WriteString(contentSty.Width(w-4).Render(c.contentInput.View()) + "\n")
	b.WriteString(styleDivider.Render(strings.Repeat("─", w)) + "\n")

	if err := c.engine.Err(); err != nil {
		b.WriteString(styleError.Render("  " + c.engine.Status() + ": " + err.Error()))
	} else {
		b.WriteString(styleHint.Render("  tab switch field · ctrl+s save & close · esc close"))
	}
	return b.String()
}
