package notes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Repository is the storage contract behind the persistence service.
// Identity is positional: index i is the i-th note in insertion order.
type Repository interface {
	List(ctx context.Context) ([]Note, error)
	Add(ctx context.Context, title, content string) (Note, error)
	Edit(ctx context.Context, index int, title, content string) error
	Delete(ctx context.Context, index int) error
	Close() error
}

const tempPrefix = ".floaty-tmp-"

// JSONLStore keeps every note as one JSON object per line in a single file.
type JSONLStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

func NewJSONLStore(path string, logger *slog.Logger) *JSONLStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONLStore{path: path, logger: logger}
}

func (s *JSONLStore) Path() string {
	return s.path
}

func (s *JSONLStore) List(ctx context.Context) ([]Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Add appends without rewriting the file.
func (s *JSONLStore) Add(ctx context.Context, title, content string) (Note, error) {
	if err := ctx.Err(); err != nil {
		return Note{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return Note{}, fmt.Errorf("create notes dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return Note{}, fmt.Errorf("open notes file: %w", err)
	}
	defer f.Close()

	n := newNote(title, content)
	if err := EncodeLines(f, []Note{n}); err != nil {
		return Note{}, err
	}
	if err := f.Sync(); err != nil {
		return Note{}, fmt.Errorf("sync notes file: %w", err)
	}
	return n, nil
}

// Edit replaces title and content at index and bumps the timestamp. Nothing is
// written when both are unchanged.
func (s *JSONLStore) Edit(ctx context.Context, index int, title, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(all) {
		return fmt.Errorf("edit %d of %d: %w", index, len(all), ErrIndexOutOfRange)
	}
	if all[index].Title == title && all[index].Content == content {
		return nil
	}
	all[index].Title = title
	all[index].Content = content
	all[index].Timestamp = Now()
	return s.rewrite(all)
}

func (s *JSONLStore) Delete(ctx context.Context, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(all) {
		return fmt.Errorf("delete %d of %d: %w", index, len(all), ErrIndexOutOfRange)
	}
	all = append(all[:index], all[index+1:]...)
	return s.rewrite(all)
}

func (s *JSONLStore) Close() error {
	return nil
}

func (s *JSONLStore) load() ([]Note, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Note{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open notes file: %w", err)
	}
	defer f.Close()

	ns, err := ParseLines(f, func(line int, err error) {
		s.logger.Warn("skipping bad line", "path", s.path, "line", line, "err", err)
	})
	if err != nil {
		return nil, err
	}
	if ns == nil {
		ns = []Note{}
	}

	// Files written before ids existed are migrated once.
	migrated := false
	for i := range ns {
		if ns[i].ID == "" {
			ns[i].ID = newID()
			migrated = true
		}
	}
	if migrated {
		if err := s.rewrite(ns); err != nil {
			s.logger.Warn("assign note ids", "path", s.path, "err", err)
		}
	}
	return ns, nil
}

func (s *JSONLStore) rewrite(ns []Note) error {
	var buf bytes.Buffer
	if err := EncodeLines(&buf, ns); err != nil {
		return err
	}
	return writeFileAtomic(s.path, buf.Bytes(), 0o644)
}

// writeFileAtomic writes to a temp file in the target directory and renames it
// over filename, so readers see either the old or the new file.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create notes dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", filename, err)
	}
	return nil
}
