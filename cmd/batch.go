package main

import (
	"context"
	"sync"

	"github.com/desertthunder/lectern/internal/tasks"
	"github.com/urfave/cli/v3"
)

// RecordingsSync uploads every pending recording.
func (r *Runner) RecordingsSync(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(); err != nil {
		return err
	}

	recs, err := r.recordings.List(map[string]any{"uploaded": false})
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return r.writePlain("Nothing to upload\n")
	}

	engine := tasks.NewEngine(nil, r.client.Audio, r.recordings, r.logger)
	opts := tasks.PoolOpts{Workers: int(cmd.Int("workers")), RateLimit: r.config.API.RequestsPerSecond}

	result, err := r.withProgress(func(prog chan<- tasks.ProgressUpdate) (*tasks.BulkResult, error) {
		return engine.BulkUpload(ctx, prog, recs, opts)
	})
	if err != nil {
		return err
	}

	return r.writePlainln("✓ Uploaded %d of %d recordings (%d failed)", result.Succeeded, result.Total, result.Failed)
}

// RecordingsSummarize summarizes every saved recording into per-recording notes.
func (r *Runner) RecordingsSummarize(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(); err != nil {
		return err
	}

	recs, err := r.recordings.List(nil)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return r.writePlain("No recordings\n")
	}

	opts := tasks.BulkSummaryOpts{
		PoolOpts:  tasks.PoolOpts{Workers: int(cmd.Int("workers")), RateLimit: r.config.API.RequestsPerSecond},
		OutputDir: cmd.String("output"),
		Language:  cmd.String("language"),
		Length:    cmd.String("length"),
	}
	if opts.Language == "" {
		opts.Language = r.config.Summary.Language
	}
	if opts.Length == "" {
		opts.Length = r.config.Summary.Length
	}

	engine := tasks.NewEngine(r.client.Summary, nil, nil, r.logger)
	result, err := r.withProgress(func(prog chan<- tasks.ProgressUpdate) (*tasks.BulkResult, error) {
		return engine.BulkSummarize(ctx, prog, recs, opts)
	})
	if err != nil {
		return err
	}

	r.writePlainln("✓ Summarized %d of %d recordings (%d failed)", result.Succeeded, result.Total, result.Failed)
	return r.writePlain("Manifest: %s\n", result.ManifestPath)
}

// withProgress runs fn while printing its progress updates.
func (r *Runner) withProgress(fn func(chan<- tasks.ProgressUpdate) (*tasks.BulkResult, error)) (*tasks.BulkResult, error) {
	prog := make(chan tasks.ProgressUpdate, 16)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for u := range prog {
			if u.Phase == tasks.Done {
				continue
			}
			r.writePlain("→ %s\n", u.Message)
		}
	}()

	result, err := fn(prog)
	close(prog)
	wg.Wait()
	return result, err
}
