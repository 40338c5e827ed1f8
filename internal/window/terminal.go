// Package window maps window operations onto the terminal the editor runs in.
package window

import (
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNoLauncher means there is no way to open the capture surface: not inside
// tmux and no capture_cmd configured.
var ErrNoLauncher = errors.New("no capture launcher: run inside tmux or set capture_cmd")

// MaximizeMsg asks the editor to toggle its full-width layout.
type MaximizeMsg struct{}

// PromptOpenedMsg reports the outcome of launching the capture surface.
type PromptOpenedMsg struct {
	Err error
}

// Terminal implements the editor's window operations for a terminal program.
type Terminal struct {
	captureCmd string
	self       string
	logger     *slog.Logger

	getenv func(string) string
	start  func(*exec.Cmd) error
}

func NewTerminal(captureCmd string, logger *slog.Logger) *Terminal {
	if logger == nil {
		logger = slog.Default()
	}
	self, err := os.Executable()
	if err != nil {
		self = "floaty"
	}
	return &Terminal{
		captureCmd: captureCmd,
		self:       self,
		logger:     logger,
		getenv:     os.Getenv,
		start:      startDetached,
	}
}

func (t *Terminal) Close() tea.Cmd { return tea.Quit }

func (t *Terminal) Minimize() tea.Cmd { return tea.Suspend }

func (t *Terminal) Maximize() tea.Cmd {
	return func() tea.Msg { return MaximizeMsg{} }
}

// OpenPrompt launches the capture surface without waiting for it.
func (t *Terminal) OpenPrompt() tea.Cmd {
	return func() tea.Msg {
		cmd := t.promptCommand()
		if cmd == nil {
			return PromptOpenedMsg{Err: ErrNoLauncher}
		}
		if err := t.start(cmd); err != nil {
			t.logger.Warn("open capture surface", "cmd", cmd.Args, "err", err)
			return PromptOpenedMsg{Err: err}
		}
		t.logger.Debug("capture surface opened", "cmd", cmd.Args)
		return PromptOpenedMsg{}
	}
}

func (t *Terminal) promptCommand() *exec.Cmd {
	if t.getenv("TMUX") != "" {
		return exec.Command("tmux", "display-popup", "-E", "-w", "70%", "-h", "60%", t.self, "capture")
	}
	parts := strings.Fields(t.captureCmd)
	if len(parts) == 0 {
		return nil
	}
	return exec.Command(parts[0], parts[1:]...)
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
