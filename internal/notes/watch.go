package notes

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultWatchDelay = 150 * time.Millisecond

// ChangeEvent reports that the notes file changed on disk, usually because the
// capture surface (a separate process) saved a note.
type ChangeEvent struct {
	Path string
}

// Watch streams ChangeEvents for path until ctx is cancelled. The parent
// directory is watched rather than the file because atomic rewrites replace
// the file. Bursts are coalesced into one event; events are dropped while the
// consumer is busy since one refresh catches up with all of them.
func Watch(ctx context.Context, path string, logger *slog.Logger) (<-chan ChangeEvent, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure notes dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	events := make(chan ChangeEvent, 1)

	go func() {
		var (
			mu     sync.Mutex
			timer  *time.Timer
			closed bool
		)
		defer func() {
			mu.Lock()
			closed = true
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			_ = watcher.Close()
			close(events)
		}()

		send := func() {
			mu.Lock()
			defer mu.Unlock()
			timer = nil
			if closed {
				return
			}
			select {
			case events <- ChangeEvent{Path: target}:
			default:
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("notes watcher", "err", err)
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
					continue
				}
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(defaultWatchDelay, send)
				mu.Unlock()
			}
		}
	}()

	return events, nil
}
