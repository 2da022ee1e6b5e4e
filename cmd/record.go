package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lectern/internal/formatter"
	"github.com/desertthunder/lectern/internal/models"
	"github.com/desertthunder/lectern/internal/recording"
	"github.com/desertthunder/lectern/internal/services"
	"github.com/desertthunder/lectern/internal/shared"
	"github.com/desertthunder/lectern/internal/ui"
	"github.com/urfave/cli/v3"
)

// Record runs the recorder TUI over an audio source, then saves the take locally
// and optionally uploads it.
func (r *Runner) Record(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(); err != nil {
		return err
	}

	audioPath := cmd.String("audio")
	if audioPath == "" {
		return fmt.Errorf("%w: --audio source", shared.ErrMissingArgument)
	}
	source, err := os.Open(audioPath)
	if err != nil {
		return fmt.Errorf("failed to open audio source: %w", err)
	}
	defer source.Close()

	var recognizer recording.Recognizer
	if path := cmd.String("events"); path != "" {
		events, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open recognizer events: %w", err)
		}
		defer events.Close()
		recognizer = recording.NewLineRecognizer(events, r.logger)
	}

	language := cmd.String("language")
	if language == "" {
		language = r.config.Recording.Language
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	stdout := r.logger
	r.SetLogger(fileLogger)
	defer r.SetLogger(stdout)

	ctrl := recording.New(recording.Options{
		Capturer:    recording.NewReaderCapturer(source, r.config.Recording.ChunkSize),
		Recognizer:  recognizer,
		Uploader:    r.client.Audio,
		Language:    language,
		AltLanguage: r.config.Recording.AltLanguage,
		Logger:      fileLogger,
	})

	model := ui.NewRecorderModel(ctx, ctrl)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("error running recorder: %w", err)
	}

	artifact := model.Artifact()
	if artifact == nil || len(artifact.Data) == 0 {
		return r.writePlain("No audio recorded\n")
	}

	rec, err := r.saveRecording(ctrl.Language(), ctrl.Transcript().Final(), artifact, cmd.String("output"))
	if err != nil {
		return err
	}
	r.writePlain("✓ Saved recording %d (%s) to %s\n", rec.Sequence, formatter.FormatSize(int64(len(artifact.Data))), rec.AudioPath)

	if !cmd.Bool("upload") {
		return nil
	}

	result, err := ctrl.Save(ctx)
	if err != nil {
		return err
	}
	return r.reportUpload(rec, result)
}

// saveRecording writes the artifact under dir and records it in the database.
func (r *Runner) saveRecording(language, transcript string, artifact *recording.Artifact, dir string) (*models.Recording, error) {
	if dir == "" {
		dir = "recordings"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	name := fmt.Sprintf("recording-%s%s", time.Now().Format("20060102-150405"), filepath.Ext(artifact.Name))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, artifact.Data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write recording: %w", err)
	}

	rec := models.NewRecording(language, transcript, path)
	if err := r.recordings.Create(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *Runner) reportUpload(rec *models.Recording, result *services.AudioResult) error {
	if err := r.recordings.MarkUploaded(rec.ID); err != nil {
		r.logger.Warn("failed to mark recording uploaded", "id", rec.ID, "error", err)
	}

	r.writePlain("✓ Uploaded recording %d\n", rec.Sequence)
	if result == nil {
		return nil
	}
	if result.FullText != "" {
		r.writePlainln("Transcript:\n%s", result.FullText)
	}
	if result.Summary != "" {
		r.writePlainln("Summary:\n%s", result.Summary)
	}
	return nil
}

// RecordingsList prints saved recordings.
func (r *Runner) RecordingsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(); err != nil {
		return err
	}

	criteria := map[string]any{}
	if lang := cmd.String("language"); lang != "" {
		criteria["language"] = lang
	}
	if cmd.Bool("pending") {
		criteria["uploaded"] = false
	}

	recs, err := r.recordings.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(recs, true)
	}

	r.writePlainHeader(fmt.Sprintf("Recordings (%d)", len(recs)))
	for _, rec := range recs {
		status := "pending"
		if rec.Uploaded {
			status = "uploaded"
		}
		r.writePlain("%3d  %s  %-6s  %-8s  %s\n", rec.Sequence, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Language, status, rec.ID)
		if preview := firstLine(rec.Transcript, 60); preview != "" {
			r.writePlain("     %s\n", preview)
		}
	}
	return nil
}

// RecordingsUpload uploads a saved recording's audio for transcription.
func (r *Runner) RecordingsUpload(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(); err != nil {
		return err
	}

	rec, err := r.recordings.Get(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	data, err := os.ReadFile(rec.AudioPath)
	if err != nil {
		return fmt.Errorf("failed to read recording audio: %w", err)
	}
	if len(data) == 0 {
		return shared.ErrNoAudio
	}

	artifact := recording.NewArtifact(data)
	result, err := r.client.Audio.UploadAudio(ctx, &services.Upload{Name: artifact.Name, ContentType: artifact.MIME, Data: artifact.Data})
	if err != nil {
		return fmt.Errorf("failed to upload recording: %w", err)
	}
	return r.reportUpload(rec, result)
}

// RecordingsDelete soft-deletes a recording and removes its audio file.
func (r *Runner) RecordingsDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	rec, err := r.recordings.Get(id)
	if err != nil {
		return err
	}
	if err := r.recordings.Delete(id); err != nil {
		return err
	}
	if err := os.Remove(rec.AudioPath); err != nil && !os.IsNotExist(err) {
		r.logger.Warn("failed to remove audio file", "path", rec.AudioPath, "error", err)
	}
	return r.writePlain("✓ Deleted recording %d\n", rec.Sequence)
}

// Demo uploads an audio file to the unauthenticated demo endpoint.
func (r *Runner) Demo(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := r.init(); err != nil {
		return err
	}

	upload := &services.Upload{Name: filepath.Base(path), Data: data}
	upload.ContentType = services.DetectContentType(upload)

	r.logger.Info("uploading demo audio", "file", upload.Name, "type", upload.ContentType)
	result, err := r.client.Audio.UploadDemo(ctx, upload)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlainHeader("Transcript")
	r.writePlain("%s\n", result.FullText)
	r.writePlainln("")
	r.writePlainHeader("Summary")
	return r.writePlain("%s\n", result.Summary)
}

func firstLine(s string, n int) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
