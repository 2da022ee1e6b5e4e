package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/lectern/internal/shared"
)

func TestFilesService(t *testing.T) {
	t.Run("ListFolders", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/files/folders/u1" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Write([]byte(`[{"_id":"f1","name":"Physics","files":[{"_id":"a","name":"n.docx","fileId":"g1"}]}]`))
		}))
		defer server.Close()

		folders, err := NewFilesService(NewAPIService(server.URL, nil)).ListFolders(context.Background(), "u1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(folders) != 1 || folders[0].ID != "f1" || folders[0].Files[0].FileID != "g1" {
			t.Errorf("unexpected folders %+v", folders)
		}
	})

	t.Run("CreateFolder", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["name"] != "Maths" || body["user"] != "u1" {
				t.Errorf("unexpected body %v", body)
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"_id":"f2","name":"Maths","user":"u1"}`))
		}))
		defer server.Close()

		folder, err := NewFilesService(NewAPIService(server.URL, nil)).CreateFolder(context.Background(), "Maths", "u1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if folder.ID != "f2" || len(folder.Files) != 0 {
			t.Errorf("unexpected folder %+v", folder)
		}
	})

	t.Run("UploadFile", func(t *testing.T) {
		t.Run("Empty", func(t *testing.T) {
			svc := NewFilesService(NewAPIService("http://127.0.0.1:1", nil))
			_, err := svc.UploadFile(context.Background(), "f1", "u1", &Upload{Name: "x.docx"})
			if !errors.Is(err, shared.ErrEmptyFile) {
				t.Errorf("expected ErrEmptyFile, got %v", err)
			}
			if _, err := svc.UploadFile(context.Background(), "f1", "u1", nil); !errors.Is(err, shared.ErrEmptyFile) {
				t.Errorf("expected ErrEmptyFile for nil upload, got %v", err)
			}
		})

		t.Run("Success", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseMultipartForm(1 << 20); err != nil {
					t.Errorf("failed to parse form: %v", err)
				}
				if r.FormValue("folderId") != "f1" || r.FormValue("userId") != "u1" {
					t.Errorf("unexpected form %v", r.MultipartForm.Value)
				}
				w.Write([]byte(`{"file":{"_id":"x1","name":"n.docx","fileId":"g2"}}`))
			}))
			defer server.Close()

			svc := NewFilesService(NewAPIService(server.URL, nil))
			file, err := svc.UploadFile(context.Background(), "f1", "u1", &Upload{Name: "n.docx", Data: []byte("hi")})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if file.ID != "x1" || file.FolderID != "f1" {
				t.Errorf("unexpected file %+v", file)
			}
		})

		t.Run("Missing File", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			svc := NewFilesService(NewAPIService(server.URL, nil))
			_, err := svc.UploadFile(context.Background(), "f1", "u1", &Upload{Name: "n.docx", Data: []byte("hi")})
			if !errors.Is(err, shared.ErrContract) {
				t.Errorf("expected ErrContract, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		var paths []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("expected DELETE, got %s", r.Method)
			}
			paths = append(paths, r.URL.Path)
			if r.URL.Path == "/api/files/file/missing" {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"error":"File not found"}`))
				return
			}
			w.Write([]byte(`{"message":"deleted"}`))
		}))
		defer server.Close()

		svc := NewFilesService(NewAPIService(server.URL, nil))
		if err := svc.DeleteFolder(context.Background(), "f1"); err != nil {
			t.Errorf("DeleteFolder: %v", err)
		}
		if err := svc.DeleteFile(context.Background(), "x1"); err != nil {
			t.Errorf("DeleteFile: %v", err)
		}
		if err := svc.DeleteFile(context.Background(), "missing"); err == nil || err.Error() != "File not found" {
			t.Errorf("expected File not found, got %v", err)
		}

		if len(paths) != 3 || paths[0] != "/api/files/folder/f1" || paths[1] != "/api/files/file/x1" {
			t.Errorf("unexpected paths %v", paths)
		}
	})

	t.Run("ViewFile", func(t *testing.T) {
		tc := []struct {
			name        string
			status      int
			contentType string
			body        string
			wantErr     string
		}{
			{name: "binary", status: 200, contentType: "application/pdf", body: "%PDF-1.4"},
			{name: "json error", status: 404, contentType: "application/json", body: `{"error":"File missing"}`, wantErr: "File missing"},
			{name: "json without error", status: 200, contentType: "application/json", body: `{}`, wantErr: viewFailedMessage},
			{name: "non-2xx binary", status: 500, contentType: "text/plain", body: "boom", wantErr: viewFailedMessage},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					if r.URL.Path != "/api/files/file/view/g1" {
						t.Errorf("unexpected path %s", r.URL.Path)
					}
					w.Header().Set("Content-Type", tt.contentType)
					w.WriteHeader(tt.status)
					w.Write([]byte(tt.body))
				}))
				defer server.Close()

				content, err := NewFilesService(NewAPIService(server.URL, nil)).ViewFile(context.Background(), "g1")
				if tt.wantErr != "" {
					if err == nil || err.Error() != tt.wantErr {
						t.Errorf("expected %q, got %v", tt.wantErr, err)
					}
					return
				}
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if content.ContentType != "application/pdf" || string(content.Data) != tt.body {
					t.Errorf("unexpected content %+v", content)
				}
			})
		}
	})
}
