// Package service is the in-process persistence service the editor talks to.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/yash-srivastava19/floaty/internal/config"
	"github.com/yash-srivastava19/floaty/internal/notes"
)

// Local serves notes from a Repository and settings from the config file.
type Local struct {
	repo   notes.Repository
	logger *slog.Logger

	mu  sync.Mutex
	cfg *config.Config
}

func NewLocal(repo notes.Repository, cfg *config.Config, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Local{repo: repo, cfg: cfg, logger: logger}
}

// OpenRepository opens the store selected by cfg.Storage.
func OpenRepository(cfg *config.Config, logger *slog.Logger) (notes.Repository, error) {
	switch cfg.Storage {
	case config.StorageBolt:
		return notes.OpenBoltStore(cfg.NotesPath)
	case config.StorageJSONL, "":
		return notes.NewJSONLStore(cfg.NotesPath, logger), nil
	}
	return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}

func (l *Local) List(ctx context.Context) ([]notes.Note, error) {
	ns, err := l.repo.List(ctx)
	if err != nil {
		l.logger.Warn("list notes", "err", err)
		return nil, err
	}
	return ns, nil
}

func (l *Local) Add(ctx context.Context, title, content string) (string, error) {
	n, err := l.repo.Add(ctx, title, content)
	if err != nil {
		l.logger.Warn("add note", "err", err)
		return "", err
	}
	l.logger.Debug("note added", "id", n.ID)
	return n.ID, nil
}

func (l *Local) Edit(ctx context.Context, index int, title, content string) error {
	if err := l.repo.Edit(ctx, index, title, content); err != nil {
		l.logger.Warn("edit note", "index", index, "err", err)
		return err
	}
	return nil
}

func (l *Local) Delete(ctx context.Context, index int) error {
	if err := l.repo.Delete(ctx, index); err != nil {
		l.logger.Warn("delete note", "index", index, "err", err)
		return err
	}
	l.logger.Debug("note deleted", "index", index)
	return nil
}

// Config re-reads the config file so changes made by another floaty process
// are picked up.
func (l *Local) Config(ctx context.Context) (config.Settings, error) {
	if err := ctx.Err(); err != nil {
		return config.Settings{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	cfg, err := config.Load(l.cfg.File)
	if err != nil {
		return config.Settings{}, err
	}
	l.cfg.OpenSame = cfg.OpenSame
	l.cfg.KeyCmd = cfg.KeyCmd
	return l.cfg.Settings(), nil
}

func (l *Local) SaveConfig(ctx context.Context, s config.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg.OpenSame = s.OpenSame
	l.cfg.KeyCmd = s.KeyCmd
	if err := config.Save(l.cfg); err != nil {
		l.logger.Warn("save config", "file", l.cfg.File, "err", err)
		return err
	}
	return nil
}

func (l *Local) Close() error {
	return l.repo.Close()
}
