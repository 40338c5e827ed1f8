package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/yash-srivastava19/floaty/internal/config"
	"github.com/yash-srivastava19/floaty/internal/draft"
	"github.com/yash-srivastava19/floaty/internal/logging"
	"github.com/yash-srivastava19/floaty/internal/notes"
	"github.com/yash-srivastava19/floaty/internal/service"
	"github.com/yash-srivastava19/floaty/internal/shortcut"
	"github.com/yash-srivastava19/floaty/internal/ui"
	"github.com/yash-srivastava19/floaty/internal/window"
)

var (
	configPath string
	debug      bool

	cfg       *config.Config
	logger    = logging.Nop()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "floaty",
	Short: "Quick-capture notes in the terminal",
	Long: `floaty keeps a list of short notes that save themselves as you type.

Run it with no arguments for the editor. Bind "floaty trigger" to a global
hotkey to pop up a capture window from anywhere.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			if !errors.Is(err, config.ErrConfigLoad) {
				return err
			}
			fmt.Fprintf(os.Stderr, "floaty: %v (using defaults)\n", err)
		}

		// Commands that own the terminal log to a file; the rest to stderr.
		if cmd.Annotations["tui"] == "true" {
			logger, logCloser, err = logging.Open(cfg.LogFile, debug)
			if err != nil {
				return err
			}
		} else {
			logger = logging.Stderr(debug)
		}
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
	Annotations: map[string]string{"tui": "true"},
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEditor()
	},
}

// Execute runs the command tree; called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		die("%v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/floaty/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")

	rootCmd.AddCommand(captureCmd(), triggerCmd(), addCmd(), listCmd(), searchCmd(), versionCmd())
}

func openService() (*service.Local, error) {
	repo, err := service.OpenRepository(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open notes: %w", err)
	}
	return service.NewLocal(repo, cfg, logger), nil
}

func runEditor() error {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	engine := draft.New(svc, draft.Options{Delay: cfg.AutosaveDelay, Logger: logger})
	win := window.NewTerminal(cfg.CaptureCmd, logger)

	var trigger *draft.Trigger
	sub, err := shortcut.Listen(cfg.SocketPath, logger)
	if err != nil {
		// Another floaty already owns the socket; this one still works, it
		// just does not react to the shortcut.
		logger.Warn("shortcut listener disabled", "err", err)
	} else {
		trigger = draft.NewTrigger(sub, win, engine, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := notes.Watch(ctx, cfg.NotesPath, logger)
	if err != nil {
		logger.Warn("notes watcher disabled", "err", err)
		changes = nil
	}

	app := ui.New(ui.Options{
		Engine:  engine,
		Trigger: trigger,
		Window:  win,
		Changes: changes,
		Config:  cfg,
		Logger:  logger,
	})
	defer app.Close()

	logger.Info("editor starting", "notes", cfg.NotesPath, "storage", cfg.Storage, "socket", cfg.SocketPath)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
