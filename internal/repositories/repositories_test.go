package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/lectern/internal/models"
	"github.com/desertthunder/lectern/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenStorage(shared.StorageConfig{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestTokenRepository(t *testing.T) {
	t.Run("Read Empty", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		token, ok, err := repo.Read()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ok || token != "" {
			t.Errorf("expected absent token, got %q", token)
		}
	})

	t.Run("Save And Read", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		if err := repo.Save("t1"); err != nil {
			t.Fatalf("failed to save token: %v", err)
		}
		if err := repo.Save("t2"); err != nil {
			t.Fatalf("failed to overwrite token: %v", err)
		}

		token, ok, err := repo.Read()
		if err != nil {
			t.Fatalf("failed to read token: %v", err)
		}
		if !ok || token != "t2" {
			t.Errorf("expected t2, got %q (ok=%v)", token, ok)
		}
	})

	t.Run("Save Empty", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))
		if err := repo.Save(""); err == nil {
			t.Error("expected error saving empty token")
		}
	})

	t.Run("Clear Is Idempotent", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		if err := repo.Save("t1"); err != nil {
			t.Fatalf("failed to save token: %v", err)
		}

		for i := range 2 {
			if err := repo.Clear(); err != nil {
				t.Fatalf("clear #%d failed: %v", i+1, err)
			}
		}

		if _, ok, _ := repo.Read(); ok {
			t.Error("expected token to be cleared")
		}
	})

	t.Run("Survives Reopen", func(t *testing.T) {
		path := t.TempDir() + "/state/lectern.db"
		cfg := shared.StorageConfig{Path: path}

		db, err := shared.OpenStorage(cfg)
		if err != nil {
			t.Fatalf("failed to open storage: %v", err)
		}
		if err := NewTokenRepository(db).Save("durable"); err != nil {
			t.Fatalf("failed to save token: %v", err)
		}
		db.Close()

		db, err = shared.OpenStorage(cfg)
		if err != nil {
			t.Fatalf("failed to reopen storage: %v", err)
		}
		defer db.Close()

		token, ok, err := NewTokenRepository(db).Read()
		if err != nil || !ok || token != "durable" {
			t.Errorf("expected durable token after reopen, got %q ok=%v err=%v", token, ok, err)
		}
	})
}

func TestRecordingRepository(t *testing.T) {
	t.Run("Create And Get", func(t *testing.T) {
		repo := NewRecordingRepository(setupTestDB(t))
		rec := models.NewRecording("ur-PK", "Hello.\n", "/tmp/a.wav")

		if err := repo.Create(rec); err != nil {
			t.Fatalf("failed to create recording: %v", err)
		}
		if rec.ID == "" || rec.Sequence != 1 {
			t.Fatalf("expected id and sequence 1, got %q/%d", rec.ID, rec.Sequence)
		}

		got, err := repo.Get(rec.ID)
		if err != nil {
			t.Fatalf("failed to get recording: %v", err)
		}
		if got.Transcript != rec.Transcript || got.Language != "ur-PK" {
			t.Errorf("unexpected recording %+v", got)
		}
	})

	t.Run("Sequence Increments Without Gaps", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRecordingRepository(db)
		_, err := db.Exec(`CREATE TRIGGER reject_xx BEFORE INSERT ON recordings
			WHEN NEW.language = 'xx' BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
		if err != nil {
			t.Fatalf("failed to create trigger: %v", err)
		}

		first := models.NewRecording("en-US", "One.\n", "")
		if err := repo.Create(first); err != nil {
			t.Fatalf("failed to create recording: %v", err)
		}
		rejected := models.NewRecording("xx", "Two.\n", "")
		if err := repo.Create(rejected); err == nil {
			t.Fatal("expected insert to be rejected")
		}
		if rejected.ID != "" || rejected.Sequence != 0 {
			t.Errorf("expected rejected recording untouched, got %q/%d", rejected.ID, rejected.Sequence)
		}
		second := models.NewRecording("en-US", "Three.\n", "")
		if err := repo.Create(second); err != nil {
			t.Fatalf("failed to create recording: %v", err)
		}

		if first.Sequence != 1 || second.Sequence != 2 {
			t.Errorf("expected sequences 1 and 2, got %d and %d", first.Sequence, second.Sequence)
		}
	})

	t.Run("Validation", func(t *testing.T) {
		repo := NewRecordingRepository(setupTestDB(t))
		if err := repo.Create(models.NewRecording("", "", "")); err == nil {
			t.Error("expected validation error for empty language")
		}
	})

	t.Run("Latest And List", func(t *testing.T) {
		repo := NewRecordingRepository(setupTestDB(t))

		first := models.NewRecording("en-US", "one", "")
		second := models.NewRecording("ur-PK", "two", "")
		for _, r := range []*models.Recording{first, second} {
			if err := repo.Create(r); err != nil {
				t.Fatalf("failed to create recording: %v", err)
			}
		}

		latest, err := repo.Latest()
		if err != nil {
			t.Fatalf("failed to get latest: %v", err)
		}
		if latest.ID != second.ID {
			t.Errorf("expected latest %s, got %s", second.ID, latest.ID)
		}

		urdu, err := repo.List(map[string]any{"language": "ur-PK"})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(urdu) != 1 || urdu[0].ID != second.ID {
			t.Errorf("expected one Urdu recording, got %d", len(urdu))
		}

		if err := repo.MarkUploaded(first.ID); err != nil {
			t.Fatalf("failed to mark uploaded: %v", err)
		}
		pending, err := repo.List(map[string]any{"uploaded": false})
		if err != nil {
			t.Fatalf("failed to list pending: %v", err)
		}
		if len(pending) != 1 || pending[0].ID != second.ID {
			t.Errorf("expected only second recording pending, got %d", len(pending))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewRecordingRepository(setupTestDB(t))
		rec := models.NewRecording("en-US", "", "")
		if err := repo.Create(rec); err != nil {
			t.Fatalf("failed to create recording: %v", err)
		}

		if err := repo.Delete(rec.ID); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, err := repo.Get(rec.ID); !errors.Is(err, shared.ErrRecordingNotFound) {
			t.Errorf("expected ErrRecordingNotFound, got %v", err)
		}
		if err := repo.Delete(rec.ID); !errors.Is(err, shared.ErrRecordingNotFound) {
			t.Errorf("expected ErrRecordingNotFound on second delete, got %v", err)
		}
		if _, err := repo.Latest(); !errors.Is(err, shared.ErrRecordingNotFound) {
			t.Errorf("expected ErrRecordingNotFound from Latest, got %v", err)
		}
	})
}
