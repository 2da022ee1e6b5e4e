package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/lectern/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{ConfigPath: "config.toml", Logger: logger})

	app := &cli.Command{
		Name:    "lectern",
		Usage:   "Record lectures, manage notes and summarize them from the terminal",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before:   runner.Before,
		Commands: runner.register(),
	}

	err := app.Run(context.Background(), os.Args)
	if cerr := runner.Close(); cerr != nil {
		logger.Warn("failed to close database", "error", cerr)
	}

	os.Exit(runner.exitCode(err))
}

// exitCode reports err to the user and returns the process exit status.
func (r *Runner) exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, shared.ErrNotImplemented):
		r.logger.Warn("not implemented")
		return 0
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrSessionExpired):
		r.logger.Error(err.Error())
		r.writePlain("Run 'lectern auth login' to sign in.\n")
		return 1
	case errors.Is(err, shared.ErrServiceUnavailable), errors.Is(err, shared.ErrTimeout):
		r.logger.Error(err.Error())
		r.writePlain("The backend could not be reached. Check your connection and try again.\n")
		return 1
	default:
		r.logger.Error("application error", "error", err)
		return 1
	}
}
