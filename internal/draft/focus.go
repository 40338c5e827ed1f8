package draft

// Focus is the input that last held focus.
type Focus int

const (
	FocusNone Focus = iota
	FocusTitle
	FocusContent
)

func (f Focus) String() string {
	switch f {
	case FocusTitle:
		return "title"
	case FocusContent:
		return "content"
	}
	return "none"
}

// FocusRequest asks the UI to focus Target with the caret at the end of its
// text. Seq increases with every request so the UI applies each one once.
type FocusRequest struct {
	Target Focus
	Seq    int
}
