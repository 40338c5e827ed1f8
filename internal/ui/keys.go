package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/yash-srivastava19/floaty/internal/config"
)

type keyMap struct {
	New      key.Binding
	Escape   key.Binding
	Delete   key.Binding
	Search   key.Binding
	Switch   key.Binding
	Settings key.Binding
	Preview  key.Binding
	Copy     key.Binding
	Maximize key.Binding
	Minimize key.Binding
	Close    key.Binding
	Up       key.Binding
	Down     key.Binding
	Edit     key.Binding
	Toggle   key.Binding
	Save     key.Binding
}

func newKeyMap(newKey string) keyMap {
	if newKey == "" {
		newKey = config.DefaultKeyCmd
	}
	return keyMap{
		New:      key.NewBinding(key.WithKeys(newKey), key.WithHelp(newKey, "new")),
		Escape:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "blur/cancel")),
		Delete:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Switch:   key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch field")),
		Settings: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "settings")),
		Preview:  key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "preview")),
		Copy:     key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy")),
		Maximize: key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "full width")),
		Minimize: key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "suspend")),
		Close:    key.NewBinding(key.WithKeys("ctrl+q", "ctrl+c"), key.WithHelp("ctrl+q", "quit")),
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("j/k", "navigate")),
		Down:     key.NewBinding(key.WithKeys("j", "down")),
		Edit:     key.NewBinding(key.WithKeys("enter", "i"), key.WithHelp("enter", "edit")),
		Toggle:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("space", "toggle")),
		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save & close")),
	}
}
