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

// minimal RIFF/WAVE header, enough for content sniffing
var wavHeader = []byte("RIFF\x24\x00\x00\x00WAVEfmt \x10\x00\x00\x00\x01\x00\x01\x00\x44\xac\x00\x00\x88\x58\x01\x00\x02\x00\x10\x00data\x00\x00\x00\x00")

func TestSummaryService(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name string
			req  SummaryRequest
			want error
		}{
			{name: "ok", req: SummaryRequest{Text: "x", Language: "Urdu", Length: "long"}},
			{name: "empty text", req: SummaryRequest{Text: "  ", Language: "English", Length: "short"}, want: shared.ErrInvalidInput},
			{name: "bad language", req: SummaryRequest{Text: "x", Language: "French", Length: "short"}, want: shared.ErrInvalidArgument},
			{name: "bad length", req: SummaryRequest{Text: "x", Language: "English", Length: "medium"}, want: shared.ErrInvalidArgument},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.req.Validate()
				if tt.want == nil && err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				if tt.want != nil && !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("Summarize", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != summarizationPath {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			var req SummaryRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.Language != "English" || req.Length != "short" {
				t.Errorf("unexpected request %+v", req)
			}
			w.Write([]byte(`{"summary":"Short summary."}`))
		}))
		defer server.Close()

		svc := NewSummaryService(NewAPIService(server.URL, nil))
		got, err := svc.Summarize(context.Background(), SummaryRequest{Text: "long lecture", Language: "English", Length: "short"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != "Short summary." {
			t.Errorf("unexpected summary %q", got)
		}
	})

	t.Run("No Request On Empty Text", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		svc := NewSummaryService(NewAPIService(server.URL, nil))
		if _, err := svc.Summarize(context.Background(), SummaryRequest{Language: "English", Length: "short"}); err == nil {
			t.Error("expected validation error")
		}
		if called {
			t.Error("expected no request")
		}
	})
}

func TestAudioService(t *testing.T) {
	t.Run("UploadAudio", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != audioUploadPath {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			f, hdr, err := r.FormFile("audio")
			if err != nil {
				t.Errorf("expected audio part: %v", err)
				return
			}
			f.Close()
			if hdr.Filename != "recording.wav" || hdr.Header.Get("Content-Type") != "audio/wav" {
				t.Errorf("unexpected part %s %s", hdr.Filename, hdr.Header.Get("Content-Type"))
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		svc := NewAudioService(NewAPIService(server.URL, nil))
		result, err := svc.UploadAudio(context.Background(), &Upload{Name: "recording.wav", ContentType: "audio/wav", Data: wavHeader})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Summary != "" {
			t.Errorf("expected empty result, got %+v", result)
		}

		if _, err := svc.UploadAudio(context.Background(), &Upload{Name: "recording.wav"}); !errors.Is(err, shared.ErrNoAudio) {
			t.Errorf("expected ErrNoAudio, got %v", err)
		}
	})

	t.Run("UploadDemo", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"summary":"S","fullText":"F"}`))
		}))
		defer server.Close()

		svc := NewAudioService(NewAPIService(server.URL, nil))

		result, err := svc.UploadDemo(context.Background(), &Upload{Name: "lecture.wav", Data: wavHeader})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Summary != "S" || result.FullText != "F" {
			t.Errorf("unexpected result %+v", result)
		}

		_, err = svc.UploadDemo(context.Background(), &Upload{Name: "notes.txt", Data: []byte("plain text")})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for text file, got %v", err)
		}
	})
}
