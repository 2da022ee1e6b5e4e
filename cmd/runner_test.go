package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/lectern/internal/models"
	"github.com/desertthunder/lectern/internal/services"
	"github.com/desertthunder/lectern/internal/shared"
	tu "github.com/desertthunder/lectern/internal/testing"
	"github.com/urfave/cli/v3"
)

// backend is a stand-in for the notes API.
type backend struct {
	mu       sync.Mutex
	requests []string
	auth     []string
	meStatus int
	folders  []map[string]any
}

func (b *backend) handler(t *testing.T) http.Handler {
	t.Helper()
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.Method+" "+r.URL.Path)
		b.auth = append(b.auth, r.Header.Get("Authorization"))
		meStatus := b.meStatus
		b.mu.Unlock()

		switch {
		case r.URL.Path == "/api/auth/login":
			var creds struct{ Email, Password string }
			json.NewDecoder(r.Body).Decode(&creds)
			if creds.Password != "secret" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"token": "T-login",
				"user":  map[string]any{"_id": "u1", "email": creds.Email},
			})
		case r.URL.Path == "/api/auth/me":
			if meStatus != 0 {
				writeJSON(w, meStatus, map[string]string{"message": "Invalid token"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"_id": "u1", "email": "ada@example.com"}})
		case r.URL.Path == "/api/files/folders/u1":
			writeJSON(w, http.StatusOK, b.folders)
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/files/folder/"):
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
		case r.URL.Path == "/api/summarization":
			writeJSON(w, http.StatusOK, map[string]string{"summary": "Short summary."})
		default:
			http.NotFound(w, r)
		}
	})
}

func (b *backend) sawRequest(req string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.requests {
		if r == req {
			return true
		}
	}
	return false
}

type harness struct {
	runner *Runner
	tokens *tu.MemoryTokenStore
	output *bytes.Buffer
	api    *backend
}

func newHarness(t *testing.T, token, input string) *harness {
	t.Helper()

	api := &backend{folders: []map[string]any{
		{"_id": "f1", "name": "Physics", "files": []map[string]any{{"_id": "a", "name": "week1.pdf", "fileId": "g1"}}},
	}}
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	config := shared.DefaultConfig()
	config.API.BaseURL = srv.URL
	config.API.RequestsPerSecond = 1000
	config.Storage.Path = ":memory:"
	config.Storage.MaxOpenConns = 1

	tokens := tu.NewMemoryTokenStore(token)
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Tokens: tokens,
		Input:  strings.NewReader(input),
		Output: output,
		Browser: func(string) error {
			return errors.New("no browser in tests")
		},
	})
	t.Cleanup(func() { runner.Close() })

	return &harness{runner: runner, tokens: tokens, output: output, api: api}
}

func (h *harness) run(args ...string) error {
	app := &cli.Command{Name: "lectern", Commands: h.runner.register()}
	return app.Run(context.Background(), append([]string{"lectern"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			tokens := tu.NewMemoryTokenStore("")

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Tokens:     tokens,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.tokens != tokens {
				t.Error("expected tokens to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.browser == nil || runner.input == nil {
				t.Error("expected browser and input defaults")
			}
		})

		t.Run("with file input keeps it for secret prompts", func(t *testing.T) {
			pr, pw, err := os.Pipe()
			if err != nil {
				t.Fatalf("failed to create pipe: %v", err)
			}
			t.Cleanup(func() { pr.Close() })

			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Input: pr, Output: output})
			if runner.tty != pr {
				t.Fatal("expected file input to be kept as tty")
			}

			pw.WriteString("hunter2\n")
			pw.Close()

			secret, err := runner.promptSecret("Password: ")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if secret != "hunter2" {
				t.Errorf("expected piped secret, got %q", secret)
			}
			if output.String() != "Password: " {
				t.Errorf("expected label only, got %q", output.String())
			}
		})

		t.Run("with reader input has no tty", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Input: strings.NewReader("x\n"), Output: &bytes.Buffer{}})
			if runner.tty != nil {
				t.Error("expected no tty for in-memory input")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s", "world"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "hello world" {
			t.Errorf("expected 'hello world', got %q", output.String())
		}

		if err := NewRunner(RunnerOpts{Output: &tu.FWriter{}}).writePlain("test"); err == nil {
			t.Error("expected error from failing writer")
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("Login With Prompted Credentials", func(t *testing.T) {
		h := newHarness(t, "", "Ada@Example.com\nsecret\n")

		if err := h.run("auth", "login"); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		if h.tokens.Token() != "T-login" {
			t.Errorf("expected token stored, got %q", h.tokens.Token())
		}
		if !strings.Contains(h.output.String(), "Signed in as ada@example.com") {
			t.Errorf("unexpected output %q", h.output.String())
		}
	})

	t.Run("Login Failure Keeps Storage Empty", func(t *testing.T) {
		h := newHarness(t, "", "")

		err := h.run("auth", "login", "--email", "ada@example.com", "--password", "wrong")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
		if h.tokens.Token() != "" {
			t.Error("expected no token stored")
		}
	})

	t.Run("Login Failure Keeps Backend Message", func(t *testing.T) {
		h := newHarness(t, "", "")

		err := h.run("auth", "login", "--email", "ada@example.com", "--password", "wrong")
		var apiErr *services.APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized || apiErr.Message != "Invalid credentials" {
			t.Errorf("expected wrapped APIError, got %v", err)
		}
	})

	t.Run("Login With Backend Down", func(t *testing.T) {
		h := newHarness(t, "", "")
		down := httptest.NewServer(http.NotFoundHandler())
		down.Close()
		h.runner.config.API.BaseURL = down.URL

		err := h.run("auth", "login", "--email", "ada@example.com", "--password", "secret")
		if !errors.Is(err, shared.ErrServiceUnavailable) || !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("expected ErrAuthFailed wrapping ErrServiceUnavailable, got %v", err)
		}
		if h.tokens.Token() != "" {
			t.Error("expected no token stored")
		}

		h.output.Reset()
		if code := h.runner.exitCode(err); code != 1 {
			t.Errorf("expected exit code 1, got %d", code)
		}
		if !strings.Contains(h.output.String(), "try again") {
			t.Errorf("expected retry notice, got %q", h.output.String())
		}
	})

	t.Run("Login Rejects Malformed Email", func(t *testing.T) {
		h := newHarness(t, "", "")

		err := h.run("auth", "login", "--email", "not-an-email", "--password", "secret")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if h.api.sawRequest("POST /api/auth/login") {
			t.Error("expected no request for invalid input")
		}
	})

	t.Run("Status Restores User", func(t *testing.T) {
		h := newHarness(t, "T-stored", "")

		if err := h.run("auth", "status"); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !strings.Contains(h.output.String(), "ada@example.com") {
			t.Errorf("unexpected output %q", h.output.String())
		}
	})

	t.Run("Status With Revoked Token Logs Out", func(t *testing.T) {
		h := newHarness(t, "T-dead", "")
		h.api.meStatus = http.StatusUnauthorized

		err := h.run("auth", "status")
		if !errors.Is(err, shared.ErrSessionExpired) {
			t.Errorf("expected ErrSessionExpired, got %v", err)
		}
		if h.tokens.Token() != "" {
			t.Error("expected stored token cleared")
		}
	})

	t.Run("Callback URL", func(t *testing.T) {
		h := newHarness(t, "", "")

		if err := h.run("auth", "callback", "http://localhost:5173/dashboard?token=T-oauth"); err != nil {
			t.Fatalf("callback failed: %v", err)
		}
		if h.tokens.Token() != "T-oauth" {
			t.Errorf("expected OAuth token stored, got %q", h.tokens.Token())
		}

		err := h.run("auth", "callback", "http://localhost:5173/dashboard")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument without token, got %v", err)
		}
	})

	t.Run("Logout", func(t *testing.T) {
		h := newHarness(t, "T-stored", "")

		if err := h.run("auth", "logout"); err != nil {
			t.Fatalf("logout failed: %v", err)
		}
		if h.tokens.Token() != "" || h.tokens.Clears == 0 {
			t.Error("expected token cleared")
		}
	})
}

func TestFolderCommands(t *testing.T) {
	t.Run("List Requires Sign In", func(t *testing.T) {
		h := newHarness(t, "", "")

		if err := h.run("folders", "list"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("List Sends Bearer Token", func(t *testing.T) {
		h := newHarness(t, "T-stored", "")

		if err := h.run("folders", "list"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(h.output.String(), "Physics [f1] (1 files)") {
			t.Errorf("unexpected output %q", h.output.String())
		}

		h.api.mu.Lock()
		defer h.api.mu.Unlock()
		for i, req := range h.api.requests {
			if req == "GET /api/files/folders/u1" && h.api.auth[i] != "Bearer T-stored" {
				t.Errorf("expected bearer header, got %q", h.api.auth[i])
			}
		}
	})

	t.Run("List To CSV", func(t *testing.T) {
		h := newHarness(t, "T-stored", "")
		path := filepath.Join(t.TempDir(), "folders.csv")

		if err := h.run("folders", "list", "--csv", path); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "Physics,f1,week1.pdf,a,g1") {
			t.Errorf("unexpected CSV %s", content)
		}
	})

	t.Run("Delete Declined", func(t *testing.T) {
		h := newHarness(t, "T-stored", "n\n")

		err := h.run("folders", "delete", "f1")
		if !errors.Is(err, shared.ErrCancelled) {
			t.Errorf("expected ErrCancelled, got %v", err)
		}
		if h.api.sawRequest("DELETE /api/files/folder/f1") {
			t.Error("expected no delete request")
		}
	})

	t.Run("Delete Confirmed With Flag", func(t *testing.T) {
		h := newHarness(t, "T-stored", "")

		if err := h.run("folders", "delete", "--yes", "f1"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if !h.api.sawRequest("DELETE /api/files/folder/f1") {
			t.Error("expected delete request")
		}
	})

	t.Run("Delete Unknown Folder", func(t *testing.T) {
		h := newHarness(t, "T-stored", "")

		if err := h.run("folders", "delete", "--yes", "nope"); !errors.Is(err, shared.ErrFolderNotFound) {
			t.Errorf("expected ErrFolderNotFound, got %v", err)
		}
	})
}

func TestSummarizeCommand(t *testing.T) {
	t.Run("Text", func(t *testing.T) {
		h := newHarness(t, "", "")

		if err := h.run("summarize", "--text", "Energy is conserved."); err != nil {
			t.Fatalf("summarize failed: %v", err)
		}
		if strings.TrimSpace(h.output.String()) != "Short summary." {
			t.Errorf("unexpected output %q", h.output.String())
		}
	})

	t.Run("Latest Recording Export", func(t *testing.T) {
		h := newHarness(t, "", "")
		if err := h.runner.init(); err != nil {
			t.Fatal(err)
		}
		if err := h.runner.recordings.Create(models.NewRecording("en-US", "First law.\n", "a.wav")); err != nil {
			t.Fatal(err)
		}

		dir := filepath.Join(t.TempDir(), "notes")
		if err := h.run("summarize", "--latest", "--export", dir); err != nil {
			t.Fatalf("summarize failed: %v", err)
		}

		md := tu.MustReadFile(t, filepath.Join(dir, "notes.md"))
		if !strings.Contains(md, "# Recording 1") || !strings.Contains(md, "Short summary.") {
			t.Errorf("unexpected notes %s", md)
		}
	})

	t.Run("Requires One Source", func(t *testing.T) {
		h := newHarness(t, "", "")

		if err := h.run("summarize"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := h.run("summarize", "--text", "a", "--latest"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Rejects Unknown Length", func(t *testing.T) {
		h := newHarness(t, "", "")

		if err := h.run("summarize", "--text", "a", "--length", "medium"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if h.api.sawRequest("POST /api/summarization") {
			t.Error("expected no request")
		}
	})
}

func TestRecordingCommands(t *testing.T) {
	h := newHarness(t, "", "")
	if err := h.runner.init(); err != nil {
		t.Fatal(err)
	}

	first := models.NewRecording("ur-PK", "Pehla sabaq.\n", filepath.Join(t.TempDir(), "a.wav"))
	second := models.NewRecording("en-US", "Second lecture.\n", filepath.Join(t.TempDir(), "b.wav"))
	for _, rec := range []*models.Recording{first, second} {
		if err := h.runner.recordings.Create(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := h.runner.recordings.MarkUploaded(first.ID); err != nil {
		t.Fatal(err)
	}

	t.Run("List Pending", func(t *testing.T) {
		h.output.Reset()
		if err := h.run("recordings", "list", "--pending"); err != nil {
			t.Fatalf("list failed: %v", err)
		}

		out := h.output.String()
		if !strings.Contains(out, "Recordings (1)") || !strings.Contains(out, second.ID) {
			t.Errorf("expected only the pending recording, got %q", out)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		h.output.Reset()
		if err := h.run("recordings", "delete", second.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		if err := h.run("recordings", "list", "--pending"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(h.output.String(), "Recordings (0)") {
			t.Errorf("expected deleted recording hidden, got %q", h.output.String())
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("Config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{ConfigPath: path, Output: output})

		app := &cli.Command{Name: "lectern", Commands: runner.register()}
		if err := app.Run(context.Background(), []string{"lectern", "setup", "config"}); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}

		tu.AssertFileExists(t, path)
		if runner.config == nil || runner.config.Server.Port != 5173 {
			t.Error("expected config loaded from template")
		}
	})

	t.Run("Migrations", func(t *testing.T) {
		h := newHarness(t, "", "")

		if err := h.run("setup", "migrations"); err != nil {
			t.Fatalf("migrations failed: %v", err)
		}
		if !strings.Contains(h.output.String(), "✓ 0001") {
			t.Errorf("expected applied migration listed, got %q", h.output.String())
		}
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		notice string
	}{
		{"success", nil, 0, ""},
		{"not implemented", shared.ErrNotImplemented, 0, ""},
		{"signed out", shared.ErrNotAuthenticated, 1, "lectern auth login"},
		{"expired", fmt.Errorf("fetch folders: %w", shared.ErrSessionExpired), 1, "lectern auth login"},
		{"unreachable", fmt.Errorf("%w: request failed", shared.ErrServiceUnavailable), 1, "try again"},
		{"other", errors.New("boom"), 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(&bytes.Buffer{})})

			if code := runner.exitCode(tt.err); code != tt.code {
				t.Errorf("exitCode() = %d, want %d", code, tt.code)
			}
			if tt.notice != "" && !strings.Contains(output.String(), tt.notice) {
				t.Errorf("expected %q in output, got %q", tt.notice, output.String())
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		user *models.User
		want string
	}{
		{nil, "unknown user"},
		{&models.User{ID: "u1", Email: "a@b.co"}, "a@b.co"},
		{&models.User{ID: "u1", Name: "Ada"}, "Ada"},
		{&models.User{ID: "u1"}, "u1"},
	}

	for _, tt := range tests {
		if got := displayName(tt.user); got != tt.want {
			t.Errorf("displayName() = %q, want %q", got, tt.want)
		}
	}
}
