package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/subx/internal/shared"
	"github.com/desertthunder/subx/internal/tasks"
	"github.com/desertthunder/subx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive my-page and edit views.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/subx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	progress := make(chan tasks.ProgressUpdate, 50)

	// Requests still in flight when the program exits are cancelled.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(ctx, ui.Options{
		Reconciler: r.newReconciler(progress),
		NewEditSession: func(projectID string) *tasks.EditSession {
			return r.newEditSession(ctx, projectID, progress)
		},
		Progress:    progress,
		OpenBrowser: r.openBrowser,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
