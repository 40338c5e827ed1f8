package draft

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yash-srivastava19/floaty/internal/config"
	"github.com/yash-srivastava19/floaty/internal/notes"
)

// Service is the persistence service. Positions are indexes into the
// collection returned by List.
type Service interface {
	List(ctx context.Context) ([]notes.Note, error)
	// Add appends a note and returns its id.
	Add(ctx context.Context, title, content string) (string, error)
	Edit(ctx context.Context, index int, title, content string) error
	Delete(ctx context.Context, index int) error
	Config(ctx context.Context) (config.Settings, error)
}

// SettingsWriter is implemented by services that can persist settings changes.
type SettingsWriter interface {
	SaveConfig(ctx context.Context, s config.Settings) error
}

// Window is the window/OS collaborator. Every method is fire-and-forget; the
// returned command may be nil.
type Window interface {
	Close() tea.Cmd
	Minimize() tea.Cmd
	Maximize() tea.Cmd
	OpenPrompt() tea.Cmd
}
