package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/lectern/internal/shared"
	"github.com/gabriel-vasile/mimetype"
)

const (
	audioUploadPath = "/api/audio/upload"
	audioDemoPath   = "/api/audio/demo"
)

// AudioResult is the backend's transcription of an uploaded recording.
//
// The work path may return an empty body; the demo path fills both fields.
type AudioResult struct {
	Summary  string `json:"summary"`
	FullText string `json:"fullText"`
}

// AudioService uploads recorded audio for transcription and summarization.
type AudioService struct {
	api *APIService
}

// NewAudioService creates an [AudioService] over api.
func NewAudioService(api *APIService) *AudioService {
	return &AudioService{api: api}
}

// UploadAudio sends a finished recording as the "audio" form field.
func (s *AudioService) UploadAudio(ctx context.Context, upload *Upload) (*AudioResult, error) {
	return s.upload(ctx, audioUploadPath, upload)
}

// UploadDemo sends an existing audio file to the demo pipeline. Only audio/* content is accepted.
func (s *AudioService) UploadDemo(ctx context.Context, upload *Upload) (*AudioResult, error) {
	if upload.Size() == 0 {
		return nil, shared.ErrEmptyFile
	}
	if ct := DetectContentType(upload); !strings.HasPrefix(ct, "audio/") {
		return nil, fmt.Errorf("%w: %s is %s, not audio", shared.ErrInvalidInput, upload.Name, ct)
	}
	return s.upload(ctx, audioDemoPath, upload)
}

func (s *AudioService) upload(ctx context.Context, path string, upload *Upload) (*AudioResult, error) {
	if upload.Size() == 0 {
		return nil, shared.ErrNoAudio
	}

	files := []FormFile{{Field: "audio", Filename: upload.Name, ContentType: upload.ContentType, Data: upload.Data}}
	resp, err := s.api.PostMultipart(ctx, path, files)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	result := &AudioResult{}
	if resp.IsJSON {
		if err := resp.Decode(result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// DetectContentType returns the declared content type, or one sniffed from the data.
func DetectContentType(upload *Upload) string {
	if upload.ContentType != "" {
		return upload.ContentType
	}
	return mimetype.Detect(upload.Data).String()
}
