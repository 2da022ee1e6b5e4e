package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/lectern/internal/shared"
)

const summarizationPath = "/api/summarization"

// Summary languages and lengths accepted by the backend.
var (
	SummaryLanguages = []string{"English", "Urdu"}
	SummaryLengths   = []string{"short", "long"}
)

// SummaryRequest is the body of a summarization call.
type SummaryRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Length   string `json:"length"`
}

// Validate rejects empty text and unknown options before any request is made.
func (r SummaryRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("%w: nothing to summarize", shared.ErrInvalidInput)
	}
	if !slices.Contains(SummaryLanguages, r.Language) {
		return fmt.Errorf("%w: language must be one of %s", shared.ErrInvalidArgument, strings.Join(SummaryLanguages, ", "))
	}
	if !slices.Contains(SummaryLengths, r.Length) {
		return fmt.Errorf("%w: length must be one of %s", shared.ErrInvalidArgument, strings.Join(SummaryLengths, ", "))
	}
	return nil
}

// SummaryService calls the summarization endpoint.
type SummaryService struct {
	api *APIService
}

// NewSummaryService creates a [SummaryService] over api.
func NewSummaryService(api *APIService) *SummaryService {
	return &SummaryService{api: api}
}

// Summarize returns the backend's summary of req.Text.
func (s *SummaryService) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	resp, err := s.api.PostJSON(ctx, summarizationPath, req)
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		return "", err
	}

	var body struct {
		Summary string `json:"summary"`
	}
	if err := resp.Decode(&body); err != nil {
		return "", err
	}
	if body.Summary == "" {
		return "", fmt.Errorf("%w: response has no summary", shared.ErrContract)
	}
	return body.Summary, nil
}
