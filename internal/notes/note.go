package notes

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the format of Note.Timestamp, local time.
const TimestampLayout = "2006-01-02 15:04:05"

var ErrIndexOutOfRange = errors.New("index out of range")

type Note struct {
	ID        string `json:"id,omitempty"`
	Timestamp string `json:"ts"`
	Title     string `json:"title"`
	Content   string `json:"content"`
}

// DisplayTitle is the title shown in lists; empty titles read as "(untitled)".
func (n Note) DisplayTitle() string {
	if strings.TrimSpace(n.Title) == "" {
		return "(untitled)"
	}
	return n.Title
}

// Empty reports whether both title and content are blank after trimming.
func (n Note) Empty() bool {
	return strings.TrimSpace(n.Title) == "" && strings.TrimSpace(n.Content) == ""
}

// Time parses Timestamp. ok is false for missing or malformed values.
func (n Note) Time() (t time.Time, ok bool) {
	t, err := time.ParseInLocation(TimestampLayout, n.Timestamp, time.Local)
	return t, err == nil
}

func Now() string {
	return time.Now().Format(TimestampLayout)
}

func newID() string {
	return uuid.NewString()
}

func newNote(title, content string) Note {
	return Note{
		ID:        newID(),
		Timestamp: Now(),
		Title:     title,
		Content:   content,
	}
}

// ParseLines decodes one note per line. Blank lines are skipped and lines that
// fail to decode are reported through skip (may be nil) and left out.
func ParseLines(r io.Reader, skip func(line int, err error)) ([]Note, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var out []Note
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var n Note
		if err := json.Unmarshal(line, &n); err != nil {
			if skip != nil {
				skip(lineNo, err)
			}
			continue
		}
		out = append(out, n)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan notes: %w", err)
	}
	return out, nil
}

// EncodeLines is the inverse of ParseLines.
func EncodeLines(w io.Writer, ns []Note) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range ns {
		if err := enc.Encode(ns[i]); err != nil {
			return fmt.Errorf("encode note %d: %w", i, err)
		}
	}
	return nil
}
