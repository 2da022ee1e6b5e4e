package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/lectern/internal/models"
	"github.com/desertthunder/lectern/internal/shared"
)

// RecordingRepository persists [models.Recording] rows.
type RecordingRepository struct {
	db *sql.DB
}

// NewRecordingRepository creates a new [RecordingRepository] with the given database connection
func NewRecordingRepository(db *sql.DB) *RecordingRepository {
	return &RecordingRepository{db: db}
}

const recordingColumns = `id, sequence, language, transcript, audio_path, uploaded, created_at, deleted_at`

// Create inserts a new recording with generated ID and sequence. The
// counter bump and the insert share one transaction, so a failed insert
// leaves no gap in the numbering.
func (r *RecordingRepository) Create(rec *models.Recording) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var sequence int
	err = tx.QueryRow(`UPDATE recordings_sequence SET value = value + 1 WHERE id = 1 RETURNING value`).Scan(&sequence)
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO recordings (id, sequence, language, transcript, audio_path, uploaded, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, id, sequence, rec.Language, rec.Transcript, rec.AudioPath, rec.Uploaded, createdAt); err != nil {
		return fmt.Errorf("failed to insert recording: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recording: %w", err)
	}

	rec.ID, rec.Sequence, rec.CreatedAt = id, sequence, createdAt
	return nil
}

// Get retrieves a recording by ID, excluding soft-deleted rows
func (r *RecordingRepository) Get(id string) (*models.Recording, error) {
	query := `SELECT ` + recordingColumns + ` FROM recordings WHERE id = ? AND deleted_at IS NULL`

	rec, err := scanRecording(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRecordingNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recording: %w", err)
	}
	return rec, nil
}

// Latest returns the most recently created recording.
func (r *RecordingRepository) Latest() (*models.Recording, error) {
	query := `SELECT ` + recordingColumns + ` FROM recordings WHERE deleted_at IS NULL ORDER BY sequence DESC LIMIT 1`

	rec, err := scanRecording(r.db.QueryRow(query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrRecordingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recording: %w", err)
	}
	return rec, nil
}

// MarkUploaded flags a recording whose audio reached the backend.
func (r *RecordingRepository) MarkUploaded(id string) error {
	result, err := r.db.Exec("UPDATE recordings SET uploaded = 1 WHERE id = ? AND deleted_at IS NULL", id)
	if err != nil {
		return fmt.Errorf("failed to update recording: %w", err)
	}
	return requireRow(result, id)
}

// Delete soft-deletes a recording by ID
func (r *RecordingRepository) Delete(id string) error {
	result, err := r.db.Exec("UPDATE recordings SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete recording: %w", err)
	}
	return requireRow(result, id)
}

// List returns recordings in sequence order. criteria supports "language" and "uploaded".
func (r *RecordingRepository) List(criteria map[string]any) ([]*models.Recording, error) {
	query := `SELECT ` + recordingColumns + ` FROM recordings WHERE deleted_at IS NULL`
	args := []any{}

	if lang, ok := criteria["language"].(string); ok && lang != "" {
		query += " AND language = ?"
		args = append(args, lang)
	}
	if uploaded, ok := criteria["uploaded"].(bool); ok {
		query += " AND uploaded = ?"
		args = append(args, uploaded)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recordings: %w", err)
	}
	defer rows.Close()

	var recs []*models.Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recording: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return recs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecording(s scanner) (*models.Recording, error) {
	var (
		rec       models.Recording
		deletedAt sql.NullTime
	)
	err := s.Scan(&rec.ID, &rec.Sequence, &rec.Language, &rec.Transcript, &rec.AudioPath, &rec.Uploaded, &rec.CreatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		rec.DeletedAt = &deletedAt.Time
	}
	return &rec, nil
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRecordingNotFound, id)
	}
	return nil
}
