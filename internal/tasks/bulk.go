package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/desertthunder/lectern/internal/formatter"
	"github.com/desertthunder/lectern/internal/models"
	"github.com/desertthunder/lectern/internal/services"
	"github.com/desertthunder/lectern/internal/shared"
)

// ItemResult is the outcome for one recording in a batch.
type ItemResult struct {
	RecordingID string   `json:"recording_id"`
	Sequence    int      `json:"sequence"`
	Success     bool     `json:"success"`
	Files       []string `json:"files,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Error       string   `json:"error,omitempty"`
	err         error
}

// Err returns the item's failure, if any.
func (r ItemResult) Err() error { return r.err }

// BulkResult summarizes a batch.
type BulkResult struct {
	Total           int          `json:"total"`
	Succeeded       int          `json:"succeeded"`
	Failed          int          `json:"failed"`
	OutputDirectory string       `json:"output_directory,omitempty"`
	ManifestPath    string       `json:"-"`
	Results         []ItemResult `json:"results"`
}

func (b *BulkResult) add(res ItemResult) {
	b.Results = append(b.Results, res)
	if res.Success {
		b.Succeeded++
	} else {
		b.Failed++
	}
}

// sortResults orders results by recording sequence, since workers finish in any order.
func (b *BulkResult) sortResults() {
	sort.SliceStable(b.Results, func(i, j int) bool { return b.Results[i].Sequence < b.Results[j].Sequence })
}

// BulkSummaryOpts configures [Engine.BulkSummarize].
type BulkSummaryOpts struct {
	PoolOpts
	OutputDir string // Base output directory (default: summaries_{epoch})
	Language  string // Summary language
	Length    string // Summary length
}

// BulkSummarize summarizes every recording's transcript and writes notes for each
// under OutputDir, followed by a manifest.
func (e *Engine) BulkSummarize(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	recs []*models.Recording,
	opts BulkSummaryOpts,
) (*BulkResult, error) {
	if e.summarizer == nil {
		return nil, fmt.Errorf("%w: summarizer not initialized", shared.ErrServiceUnavailable)
	}

	check := services.SummaryRequest{Text: "-", Language: opts.Language, Length: opts.Length}
	if err := check.Validate(); err != nil {
		return nil, err
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("summaries_%d", time.Now().Unix())
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkResult{Total: len(recs), OutputDirectory: opts.OutputDir, Results: make([]ItemResult, 0, len(recs))}
	e.sendProgress(prog, queuedUpdate(len(recs)))

	results := runPool(ctx, opts.PoolOpts, recs, func(ctx context.Context, rec *models.Recording) ItemResult {
		return e.summarizeOne(ctx, rec, opts)
	})

	for res := range results {
		result.add(res)
		e.sendProgress(prog, itemUpdate(Summarize, len(result.Results), len(recs), res.Sequence, res.err))
	}
	result.sortResults()

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("summaries completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	e.sendProgress(prog, doneUpdate(len(recs), result.Failed))
	e.logger.Info("bulk summary finished", "total", result.Total, "failed", result.Failed)
	return result, nil
}

func (e *Engine) summarizeOne(ctx context.Context, rec *models.Recording, opts BulkSummaryOpts) ItemResult {
	res := ItemResult{RecordingID: rec.ID, Sequence: rec.Sequence}

	if strings.TrimSpace(rec.Transcript) == "" {
		return res.fail(fmt.Errorf("%w: empty transcript", shared.ErrInvalidInput))
	}

	summary, err := e.summarizer.Summarize(ctx, services.SummaryRequest{
		Text:     rec.Transcript,
		Language: opts.Language,
		Length:   opts.Length,
	})
	if err != nil {
		return res.fail(err)
	}

	note := &formatter.SummaryNote{
		Title:      fmt.Sprintf("Recording %d", rec.Sequence),
		Language:   opts.Language,
		Length:     opts.Length,
		Summary:    summary,
		Transcript: rec.Transcript,
		CreatedAt:  rec.CreatedAt,
	}
	written, err := formatter.WriteSummaryExport(note, filepath.Join(opts.OutputDir, fmt.Sprintf("recording-%03d", rec.Sequence)))
	if err != nil {
		return res.fail(err)
	}

	res.Success = true
	res.Summary = summary
	res.Files = []string{written.MarkdownFile, written.HTMLFile}
	return res
}

// BulkUpload uploads the audio of every recording and marks each one that succeeds.
func (e *Engine) BulkUpload(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	recs []*models.Recording,
	opts PoolOpts,
) (*BulkResult, error) {
	if e.uploader == nil {
		return nil, fmt.Errorf("%w: uploader not initialized", shared.ErrServiceUnavailable)
	}

	result := &BulkResult{Total: len(recs), Results: make([]ItemResult, 0, len(recs))}
	e.sendProgress(prog, queuedUpdate(len(recs)))

	results := runPool(ctx, opts, recs, e.uploadOne)
	for res := range results {
		result.add(res)
		e.sendProgress(prog, itemUpdate(Upload, len(result.Results), len(recs), res.Sequence, res.err))
	}
	result.sortResults()

	if err := ctx.Err(); err != nil {
		return result, err
	}

	e.sendProgress(prog, doneUpdate(len(recs), result.Failed))
	e.logger.Info("bulk upload finished", "total", result.Total, "failed", result.Failed)
	return result, nil
}

func (e *Engine) uploadOne(ctx context.Context, rec *models.Recording) ItemResult {
	res := ItemResult{RecordingID: rec.ID, Sequence: rec.Sequence}

	data, err := os.ReadFile(rec.AudioPath)
	if err != nil {
		return res.fail(fmt.Errorf("failed to read audio: %w", err))
	}
	if len(data) == 0 {
		return res.fail(shared.ErrNoAudio)
	}

	upload := &services.Upload{Name: filepath.Base(rec.AudioPath), Data: data}
	upload.ContentType = services.DetectContentType(upload)

	audio, err := e.uploader.UploadAudio(ctx, upload)
	if err != nil {
		return res.fail(err)
	}

	if e.marker != nil {
		if err := e.marker.MarkUploaded(rec.ID); err != nil {
			e.logger.Warn("failed to mark recording uploaded", "id", rec.ID, "error", err)
		}
	}

	res.Success = true
	if audio != nil {
		res.Summary = audio.Summary
	}
	return res
}

func (r ItemResult) fail(err error) ItemResult {
	r.Success = false
	r.err = err
	r.Error = err.Error()
	return r
}
