package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/lectern/internal/formatter"
	"github.com/desertthunder/lectern/internal/models"
	"github.com/desertthunder/lectern/internal/services"
	"github.com/desertthunder/lectern/internal/shared"
	"github.com/urfave/cli/v3"
)

// Summarize sends text from exactly one source to the summarization endpoint.
func (r *Runner) Summarize(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(); err != nil {
		return err
	}

	text, title, err := r.summarySource(cmd)
	if err != nil {
		return err
	}

	req := services.SummaryRequest{
		Text:     text,
		Language: cmd.String("language"),
		Length:   cmd.String("length"),
	}
	if req.Language == "" {
		req.Language = r.config.Summary.Language
	}
	if req.Length == "" {
		req.Length = r.config.Summary.Length
	}
	if err := req.Validate(); err != nil {
		return err
	}

	r.logger.Info("summarizing", "chars", len(text), "language", req.Language, "length", req.Length)
	summary, err := r.client.Summary.Summarize(ctx, req)
	if err != nil {
		return err
	}

	note := &formatter.SummaryNote{
		Title:      title,
		Language:   req.Language,
		Length:     req.Length,
		Summary:    summary,
		Transcript: text,
		CreatedAt:  time.Now(),
	}

	if dir := cmd.String("export"); dir != "" {
		result, err := formatter.WriteSummaryExport(note, dir)
		if err != nil {
			return err
		}
		r.writePlain("✓ Notes written to %s\n", result.Directory)
		r.writePlain("  %s\n  %s\n", result.MarkdownFile, result.HTMLFile)
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]string{
			"summary":  summary,
			"language": req.Language,
			"length":   req.Length,
		}, true)
	}

	return r.writePlain("%s\n", summary)
}

// summarySource resolves the text to summarize and a default title for it.
func (r *Runner) summarySource(cmd *cli.Command) (text, title string, err error) {
	sources := 0
	for _, set := range []bool{cmd.String("text") != "", cmd.String("file") != "", cmd.String("recording") != "", cmd.Bool("latest")} {
		if set {
			sources++
		}
	}
	switch {
	case sources == 0:
		return "", "", fmt.Errorf("%w: one of --text, --file, --recording or --latest", shared.ErrMissingArgument)
	case sources > 1:
		return "", "", fmt.Errorf("%w: use only one of --text, --file, --recording or --latest", shared.ErrInvalidArgument)
	}

	title = cmd.String("title")

	if path := cmd.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return string(data), title, nil
	}
	if t := cmd.String("text"); t != "" {
		return t, title, nil
	}

	var rec *models.Recording
	if id := cmd.String("recording"); id != "" {
		rec, err = r.recordings.Get(id)
	} else {
		rec, err = r.recordings.Latest()
	}
	if err != nil {
		return "", "", err
	}
	if title == "" {
		title = fmt.Sprintf("Recording %d", rec.Sequence)
	}
	return rec.Transcript, title, nil
}
