package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lectern/internal/dashboard"
	"github.com/desertthunder/lectern/internal/shared"
	"github.com/desertthunder/lectern/internal/ui"
	"github.com/urfave/cli/v3"
)

// Dashboard launches the interactive folder browser.
func (r *Runner) Dashboard(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(); err != nil {
		return err
	}

	snap, err := r.session.Restore(ctx)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	stdout := r.logger
	r.SetLogger(fileLogger)
	defer r.SetLogger(stdout)

	prompter := ui.NewPrompter()
	defer prompter.Close()

	ctrl := dashboard.New(dashboard.Options{
		Session:    r.session,
		Files:      r.client.Files,
		Confirmer:  prompter,
		Navigator:  r.navigator(),
		Viewer:     &dashboard.BrowserViewer{Delay: dashboard.DefaultViewDelay, Open: r.browser, Logger: fileLogger},
		LoginRoute: r.config.Server.LoginRoute,
		Logger:     fileLogger,
	})

	model := ui.NewModel(ctx, ctrl, prompter, snap.User.ID)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return model.Err()
}
