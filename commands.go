package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/yash-srivastava19/floaty/internal/draft"
	"github.com/yash-srivastava19/floaty/internal/notes"
	"github.com/yash-srivastava19/floaty/internal/shortcut"
	"github.com/yash-srivastava19/floaty/internal/templates"
	"github.com/yash-srivastava19/floaty/internal/ui"
)

func captureCmd() *cobra.Command {
	var template string
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Open the quick-capture window",
		Example: `  floaty capture
  floaty capture --template todo`,
		Annotations: map[string]string{"tui": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := templates.Validate(template); err != nil {
				return err
			}
			svc, err := openService()
			if err != nil {
				return err
			}
			defer svc.Close()

			engine := draft.New(svc, draft.Options{Delay: cfg.AutosaveDelay, Logger: logger})
			p := tea.NewProgram(ui.NewCapture(engine, template, logger), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().StringVarP(&template, "template", "t", "", "start from a template ("+strings.Join(templates.Names, ", ")+")")
	return cmd
}

func triggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Send the capture shortcut to a running floaty",
		Long: `Bind this to a global hotkey in your window manager or desktop.
The running editor opens a capture window, or a new note in place when
open_same is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := shortcut.Trigger(cfg.SocketPath); err != nil {
				return fmt.Errorf("no running floaty at %s: %w", cfg.SocketPath, err)
			}
			return nil
		},
	}
}

func addCmd() *cobra.Command {
	var (
		template string
		title    string
	)
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a note without opening the editor",
		Example: `  floaty add buy oat milk
  floaty add --title standup --template standup`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := templates.Validate(template); err != nil {
				return err
			}
			content := strings.Join(args, " ")
			if body := templates.Get(template, time.Now().Format("2006-01-02")); body != "" {
				content = strings.TrimRight(body, "\n")
				if len(args) > 0 {
					content += "\n\n" + strings.Join(args, " ")
				}
			}
			title = strings.TrimSpace(title)
			content = strings.TrimSpace(content)
			if title == "" && content == "" {
				return errors.New("nothing to add")
			}

			svc, err := openService()
			if err != nil {
				return err
			}
			defer svc.Close()

			id, err := svc.Add(cmd.Context(), title, content)
			if err != nil {
				return fmt.Errorf("add: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "added", id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&template, "template", "t", "", "start from a template ("+strings.Join(templates.Names, ", ")+")")
	cmd.Flags().StringVar(&title, "title", "", "note title")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ns, err := loadNotes(cmd.Context())
			if err != nil {
				return err
			}
			if len(ns) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no notes yet")
				return nil
			}
			idx := notes.FilterIndices(ns, "")
			slices.Reverse(idx)
			printNotes(cmd, ns, idx)
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	var fuzzy bool
	cmd := &cobra.Command{
		Use:     "search <query>",
		Aliases: []string{"s"},
		Short:   "Search note titles and bodies",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			ns, err := loadNotes(cmd.Context())
			if err != nil {
				return err
			}
			var idx []int
			if fuzzy {
				idx = notes.FuzzyFilter(ns, query)
			} else {
				idx = notes.FilterIndices(ns, query)
				slices.Reverse(idx)
			}
			if len(idx) == 0 {
				return fmt.Errorf("no notes match %q", query)
			}
			printNotes(cmd, ns, idx)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&fuzzy, "fuzzy", "f", false, "rank by fuzzy match instead of substring")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "floaty "+version)
		},
	}
}

func loadNotes(ctx context.Context) ([]notes.Note, error) {
	svc, err := openService()
	if err != nil {
		return nil, err
	}
	defer svc.Close()
	ns, err := svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return ns, nil
}

func printNotes(cmd *cobra.Command, ns []notes.Note, idx []int) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow("#", "WHEN", "TITLE", "PREVIEW")
	for _, i := range idx {
		n := ns[i]
		tbl.AddRow(i+1, n.Timestamp, n.DisplayTitle(), firstLine(n.Content))
	}
	fmt.Fprintln(cmd.OutOrStdout(), tbl)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
