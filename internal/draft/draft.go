package draft

// Mode is what the editor pane shows.
type Mode int

const (
	ModeView Mode = iota
	ModeNew
	ModeSettings
)

func (m Mode) String() string {
	switch m {
	case ModeView:
		return "view"
	case ModeNew:
		return "new"
	case ModeSettings:
		return "settings"
	}
	return "unknown"
}

// Draft is the editable copy of a note.
type Draft struct {
	Title   string
	Content string
}

// Binding ties the draft to a persisted note. ID is authoritative; Index is
// re-resolved after every refresh and used only for positional service calls.
type Binding struct {
	ID    string
	Index int
}

// Phase is the engine state. Exactly one of Idle, Composing, Bound or
// Configuring.
type Phase interface {
	Mode() Mode
}

// Idle: view mode with nothing selected.
type Idle struct{}

// Composing: a new note that has never been saved.
type Composing struct{}

// Bound: the draft mirrors the persisted note at Binding.
type Bound struct {
	Binding Binding
}

// Configuring: the settings screen, over whatever phase was active.
type Configuring struct {
	Prev Phase
}

func (Idle) Mode() Mode { return ModeView }
func (Composing) Mode() Mode { return ModeNew }
func (Bound) Mode() Mode { return ModeView }
func (Configuring) Mode() Mode { return ModeSettings }
