package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/lectern/internal/models"
	"github.com/desertthunder/lectern/internal/services"
	"github.com/desertthunder/lectern/internal/session"
	"github.com/desertthunder/lectern/internal/shared"
	tu "github.com/desertthunder/lectern/internal/testing"
)

type backend struct {
	mu       sync.Mutex
	requests []string
	auth     []string
	status   int
}

func (b *backend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.requests = append(b.requests, r.Method+" "+r.URL.Path)
	b.auth = append(b.auth, r.Header.Get("Authorization"))
	status := b.status
	b.mu.Unlock()

	if status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(`{"message":"Invalid token"}`))
		return
	}

	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/files/folders/"):
		w.Write([]byte(`[
			{"_id":"f1","name":"Physics","files":[{"_id":"a","name":"notes.txt","fileId":"g1"},{"_id":"b","name":"b.pdf","fileId":"g2"}]},
			{"_id":"f2","name":"Maths","files":[]}
		]`))
	case r.Method == http.MethodPost && r.URL.Path == "/api/files/folder":
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"_id":"f3","name":"Chemistry","user":"u1"}`))
	case r.Method == http.MethodPost && r.URL.Path == "/api/files/upload":
		w.Write([]byte(`{"file":{"_id":"c","originalName":"lab.txt","fileId":"g3"}}`))
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/files/file/view/"):
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("lecture notes"))
	case r.Method == http.MethodDelete:
		w.Write([]byte(`{"message":"deleted"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type fakeViewer struct {
	name    string
	content *services.FileContent
}

func (v *fakeViewer) View(ctx context.Context, name string, content *services.FileContent) error {
	v.name = name
	v.content = content
	return nil
}

type fixture struct {
	backend   *backend
	tokens    *tu.MemoryTokenStore
	store     *session.Store
	nav       *tu.RecordingNavigator
	confirmer *tu.StaticConfirmer
	viewer    *fakeViewer
	ctrl      *Controller
}

func setup(t *testing.T, token string) *fixture {
	t.Helper()

	b := &backend{}
	server := httptest.NewServer(b)
	t.Cleanup(server.Close)

	tokens := tu.NewMemoryTokenStore(token)
	store, err := session.New(tokens, nil, nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if token != "" {
		if err := store.SetUser(&models.User{ID: "u1", Email: "a@b.com"}); err != nil {
			t.Fatalf("Failed to set user: %v", err)
		}
	}

	client := services.NewAuthorizedClient(store.TokenSource(), nil)
	files := services.NewFilesService(services.NewAPIService(server.URL, client))

	f := &fixture{
		backend:   b,
		tokens:    tokens,
		store:     store,
		nav:       &tu.RecordingNavigator{},
		confirmer: &tu.StaticConfirmer{Answer: true},
		viewer:    &fakeViewer{},
	}
	f.ctrl = New(Options{
		Session:    store,
		Files:      files,
		Confirmer:  f.confirmer,
		Navigator:  f.nav,
		Viewer:     f.viewer,
		LoginRoute: "/login",
	})
	return f
}

func TestController(t *testing.T) {
	ctx := context.Background()

	t.Run("No Token Redirects Without Requests", func(t *testing.T) {
		f := setup(t, "")

		_, err := f.ctrl.FetchFolders(ctx, "u1")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if err := f.ctrl.DeleteFolder(ctx, "f1"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if f.backend.calls() != 0 {
			t.Errorf("expected no requests, got %d", f.backend.calls())
		}
		if f.nav.Last() != "/login" {
			t.Errorf("expected redirect to /login, got %q", f.nav.Last())
		}
		if len(f.confirmer.Messages) != 0 {
			t.Error("expected no confirmation prompt")
		}
	})

	t.Run("FetchFolders Replaces Tree", func(t *testing.T) {
		f := setup(t, "T")

		folders, err := f.ctrl.FetchFolders(ctx, "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(folders) != 2 || folders[0].Name != "Physics" || len(folders[0].Files) != 2 {
			t.Errorf("unexpected folders %+v", folders)
		}
		if f.backend.requests[0] != "GET /api/files/folders/u1" {
			t.Errorf("unexpected request %s", f.backend.requests[0])
		}
		if f.backend.auth[0] != "Bearer T" {
			t.Errorf("expected bearer token, got %q", f.backend.auth[0])
		}

		folders[0].Name = "mutated"
		if got, _ := f.ctrl.Find("f1"); got.Name != "Physics" {
			t.Error("expected Folders to return a copy")
		}
	})

	t.Run("CreateFolder", func(t *testing.T) {
		f := setup(t, "T")

		if _, err := f.ctrl.CreateFolder(ctx, "   ", "u1"); !errors.Is(err, shared.ErrEmptyName) {
			t.Errorf("expected ErrEmptyName, got %v", err)
		}
		if f.backend.calls() != 0 {
			t.Error("expected blank name to skip the network")
		}

		folder, err := f.ctrl.CreateFolder(ctx, " Chemistry ", "u1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if folder.ID != "f3" || folder.Files == nil {
			t.Errorf("unexpected folder %+v", folder)
		}
		if got := f.ctrl.Folders(); len(got) != 1 || got[0].ID != "f3" {
			t.Errorf("expected folder appended, got %+v", got)
		}
	})

	t.Run("CreateFile", func(t *testing.T) {
		f := setup(t, "T")
		if _, err := f.ctrl.FetchFolders(ctx, "u1"); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		before := f.backend.calls()

		if _, err := f.ctrl.CreateFile(ctx, "f2", "u1", &services.Upload{Name: "lab.txt"}); !errors.Is(err, shared.ErrEmptyFile) {
			t.Errorf("expected ErrEmptyFile, got %v", err)
		}
		if f.backend.calls() != before {
			t.Error("expected empty upload to skip the network")
		}

		file, err := f.ctrl.CreateFile(ctx, "f2", "u1", &services.Upload{Name: "lab.txt", Data: []byte("hello")})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if file.Name != "lab.txt" || file.FolderID != "f2" {
			t.Errorf("unexpected file %+v", file)
		}

		physics, _ := f.ctrl.Find("f1")
		maths, _ := f.ctrl.Find("f2")
		if len(physics.Files) != 2 || len(maths.Files) != 1 {
			t.Errorf("expected only target folder patched, got %d and %d files", len(physics.Files), len(maths.Files))
		}
	})

	t.Run("DeleteFolder", func(t *testing.T) {
		t.Run("Declined", func(t *testing.T) {
			f := setup(t, "T")
			f.ctrl.FetchFolders(ctx, "u1")
			f.confirmer.Answer = false

			err := f.ctrl.DeleteFolder(ctx, "f1")
			if !errors.Is(err, shared.ErrCancelled) {
				t.Errorf("expected ErrCancelled, got %v", err)
			}
			if f.backend.calls() != 1 || len(f.ctrl.Folders()) != 2 {
				t.Error("expected no delete request and tree unchanged")
			}
		})

		t.Run("Confirmed", func(t *testing.T) {
			f := setup(t, "T")
			f.ctrl.FetchFolders(ctx, "u1")

			if err := f.ctrl.DeleteFolder(ctx, "f1"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if f.confirmer.Messages[0] != confirmDeleteFolder {
				t.Errorf("unexpected prompt %q", f.confirmer.Messages[0])
			}
			if _, ok := f.ctrl.Find("f1"); ok {
				t.Error("expected folder removed")
			}
			if len(f.ctrl.Folders()) != 1 {
				t.Error("expected one folder left")
			}
		})
	})

	t.Run("DeleteFile", func(t *testing.T) {
		f := setup(t, "T")
		f.ctrl.FetchFolders(ctx, "u1")

		if err := f.ctrl.DeleteFile(ctx, "a", "f1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		physics, _ := f.ctrl.Find("f1")
		if len(physics.Files) != 1 || physics.Files[0].ID != "b" {
			t.Errorf("unexpected files %+v", physics.Files)
		}

		if err := f.ctrl.DeleteFile(ctx, "missing", ""); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		physics, _ = f.ctrl.Find("f1")
		if len(physics.Files) != 1 {
			t.Error("expected unknown file delete to leave the tree unchanged")
		}
	})

	t.Run("ViewFile", func(t *testing.T) {
		f := setup(t, "T")
		f.ctrl.FetchFolders(ctx, "u1")

		if err := f.ctrl.ViewFile(ctx, "g1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if f.viewer.name != "notes.txt" || string(f.viewer.content.Data) != "lecture notes" {
			t.Errorf("unexpected view %q %+v", f.viewer.name, f.viewer.content)
		}
	})

	t.Run("Unauthorized Logs Out", func(t *testing.T) {
		f := setup(t, "T")
		f.backend.status = http.StatusUnauthorized

		_, err := f.ctrl.FetchFolders(ctx, "u1")
		if !errors.Is(err, shared.ErrSessionExpired) {
			t.Errorf("expected ErrSessionExpired, got %v", err)
		}
		if f.store.Authenticated() || f.store.Token() != "" {
			t.Error("expected session cleared")
		}
		if f.tokens.Token() != "" {
			t.Error("expected stored token cleared")
		}
		if f.nav.Last() != "/login" {
			t.Errorf("expected redirect to /login, got %q", f.nav.Last())
		}
	})

	t.Run("Server Error Keeps Session", func(t *testing.T) {
		f := setup(t, "T")
		f.backend.status = http.StatusInternalServerError

		_, err := f.ctrl.CreateFolder(ctx, "Chemistry", "u1")
		if err == nil || errors.Is(err, shared.ErrSessionExpired) {
			t.Errorf("expected plain API error, got %v", err)
		}
		if f.store.Token() != "T" {
			t.Error("expected session kept")
		}
	})
}

func TestBrowserViewer(t *testing.T) {
	dir := t.TempDir()
	var opened string
	v := &BrowserViewer{
		Dir:   dir,
		Delay: 10 * time.Millisecond,
		Open:  func(path string) error { opened = path; return nil },
	}

	err := v.View(context.Background(), "notes", &services.FileContent{ContentType: "application/pdf", Data: []byte("%PDF-1.4")})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if filepath.Ext(opened) != ".pdf" || !TempFilePath(opened) {
		t.Errorf("unexpected path %q", opened)
	}
	tu.AssertFileExists(t, opened)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(opened); os.IsNotExist(err) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("expected view file removed after delay")
}

func TestExtension(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content services.FileContent
		want    string
	}{
		{"From Name", "a.docx", services.FileContent{ContentType: "application/pdf"}, ".docx"},
		{"From Content Type", "a", services.FileContent{ContentType: "text/plain"}, ".txt"},
		{"From Bytes", "a", services.FileContent{Data: []byte("%PDF-1.4\n")}, ".pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extension(tt.file, &tt.content); got != tt.want {
				t.Errorf("Extension() = %q, want %q", got, tt.want)
			}
		})
	}
}
