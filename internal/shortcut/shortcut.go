// Package shortcut carries the global quick-capture shortcut into a running
// floaty. The OS or window manager owns the actual hotkey and runs
// `floaty trigger`, which writes one line to the main surface's socket.
package shortcut

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// EventName is the only message the socket understands.
const EventName = "shortcut-event"

var ErrInUse = errors.New("shortcut socket already in use")

type Event struct {
	Name string
	At   time.Time
}

// Subscription is a scoped listener: events flow from Listen until Close.
type Subscription struct {
	path   string
	ln     net.Listener
	events chan Event
	done   chan struct{}
	logger *slog.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
	conns     map[net.Conn]struct{}
	mu        sync.Mutex
}

// Listen binds a unix socket at path. A stale socket file left by a crashed
// process is replaced; a live one yields ErrInUse.
func Listen(path string, logger *slog.Logger) (*Subscription, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create socket dir: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		if c, err := net.DialTimeout("unix", path, 200*time.Millisecond); err == nil {
			_ = c.Close()
			return nil, fmt.Errorf("%s: %w", path, ErrInUse)
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	s := &Subscription{
		path:   path,
		ln:     ln,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
		logger: logger,
		conns:  make(map[net.Conn]struct{}),
	}
	s.wg.Add(1)
	go s.accept()
	go func() {
		s.wg.Wait()
		close(s.events)
	}()
	return s, nil
}

// Events is closed once the subscription is closed.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

func (s *Subscription) Path() string {
	return s.path
}

// Close stops accepting, drops open connections and removes the socket file.
// Safe to call more than once.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.ln.Close()
		s.mu.Lock()
		for c := range s.conns {
			_ = c.Close()
		}
		s.mu.Unlock()
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) && err == nil {
			err = rmErr
		}
	})
	return err
}

func (s *Subscription) accept() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.logger.Warn("shortcut accept", "err", err)
			}
			return
		}
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()
		select {
		case <-s.done:
			_ = conn.Close()
		default:
		}
		s.wg.Add(1)
		go s.serve(conn)
	}
}

func (s *Subscription) serve(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name != EventName {
			s.logger.Debug("shortcut: ignoring message", "msg", name)
			continue
		}
		select {
		case s.events <- Event{Name: name, At: time.Now()}:
		case <-s.done:
			return
		}
	}
}

// Trigger sends one shortcut-event to the floaty listening at path.
func Trigger(path string) error {
	conn, err := net.DialTimeout("unix", path, time.Second)
	if err != nil {
		return fmt.Errorf("dial %s: %w", path, err)
	}
	defer conn.Close()
	_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
	if _, err := conn.Write([]byte(EventName + "\n")); err != nil {
		return fmt.Errorf("send shortcut: %w", err)
	}
	return nil
}
