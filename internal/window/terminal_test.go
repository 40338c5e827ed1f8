package window

import (
	"errors"
	"os/exec"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yash-srivastava19/floaty/internal/logging"
)

func fakeTerminal(captureCmd string, env map[string]string) (*Terminal, *[]*exec.Cmd) {
	var started []*exec.Cmd
	t := NewTerminal(captureCmd, logging.Nop())
	t.self = "/usr/bin/floaty"
	t.getenv = func(k string) string { return env[k] }
	t.start = func(c *exec.Cmd) error {
		started = append(started, c)
		return nil
	}
	return t, &started
}

func TestOpenPrompt_tmuxPopup(t *testing.T) {
	term, started := fakeTerminal("alacritty -e floaty capture", map[string]string{"TMUX": "/tmp/tmux-1000/default,1,0"})

	msg := term.OpenPrompt()()
	assert.Equal(t, PromptOpenedMsg{}, msg)
	require.Len(t, *started, 1)
	args := (*started)[0].Args
	assert.Equal(t, "tmux", args[0])
	assert.Equal(t, []string{"/usr/bin/floaty", "capture"}, args[len(args)-2:])
}

func TestOpenPrompt_captureCmd(t *testing.T) {
	term, started := fakeTerminal("  alacritty --class floaty -e floaty capture ", nil)

	term.OpenPrompt()()
	require.Len(t, *started, 1)
	assert.Equal(t, []string{"alacritty", "--class", "floaty", "-e", "floaty", "capture"}, (*started)[0].Args)
}

func TestOpenPrompt_noLauncher(t *testing.T) {
	term, started := fakeTerminal("", nil)

	msg := term.OpenPrompt()()
	assert.Equal(t, PromptOpenedMsg{Err: ErrNoLauncher}, msg)
	assert.Empty(t, *started)
}

func TestOpenPrompt_startFailure(t *testing.T) {
	term, _ := fakeTerminal("missing-binary", nil)
	boom := errors.New("exec: not found")
	term.start = func(*exec.Cmd) error { return boom }

	msg := term.OpenPrompt()().(PromptOpenedMsg)
	assert.ErrorIs(t, msg.Err, boom)
}

func TestWindowOps(t *testing.T) {
	term, _ := fakeTerminal("", nil)

	assert.IsType(t, tea.QuitMsg{}, term.Close()())
	assert.IsType(t, tea.SuspendMsg{}, term.Minimize()())
	assert.Equal(t, MaximizeMsg{}, term.Maximize()())
}
