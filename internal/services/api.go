// API service for making HTTP requests to the lecture notes backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/desertthunder/lectern/internal/shared"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:5000"

// genericErrorMessage is reported when an error body carries no message.
const genericErrorMessage = "Something went wrong!"

// APIService performs raw HTTP requests against the backend.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewAPIService creates a new API service instance rooted at baseURL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// WithLimiter throttles every request through l.
func (a *APIService) WithLimiter(l *rate.Limiter) *APIService {
	a.limiter = l
	return a
}

// WithClient returns a copy of a that sends requests through client.
func (a *APIService) WithClient(client *http.Client) *APIService {
	c := *a
	c.httpClient = client
	return &c
}

// BaseURL returns the configured root URL.
func (a *APIService) BaseURL() string { return a.baseURL }

// URL joins path onto the base URL.
func (a *APIService) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return a.baseURL + path
}

// NewLimiter builds a request limiter from config values. A non-positive rate disables limiting.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// NewAuthorizedClient wraps base so every request carries the bearer token from ts.
func NewAuthorizedClient(ts oauth2.TokenSource, base *http.Client) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	return &http.Client{
		Transport: &oauth2.Transport{Source: ts, Base: base.Transport},
		Timeout:   base.Timeout,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the declared media type without parameters.
func (r *APIResponse) ContentType() string {
	ct := r.Headers.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return ct
}

// DeclaresJSON reports whether the server labelled the body as JSON.
func (r *APIResponse) DeclaresJSON() bool {
	return strings.Contains(r.Headers.Get("Content-Type"), "application/json")
}

// Decode unmarshals the body into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: malformed response body: %v", shared.ErrContract, err)
	}
	return nil
}

// Err converts a non-2xx response into an [*APIError], or nil on success.
func (r *APIResponse) Err() error {
	if r.OK() {
		return nil
	}
	return &APIError{Status: r.StatusCode, Message: r.errorMessage()}
}

// errorMessage extracts "message", then "error", from a JSON error body.
func (r *APIResponse) errorMessage() string {
	if obj, ok := r.JSONData.(map[string]any); ok {
		for _, key := range []string{"message", "error"} {
			if s, ok := obj[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return genericErrorMessage
}

// APIError is a non-2xx response with the message the backend supplied.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match [shared.ErrAPIRequest].
func (e *APIError) Unwrap() error { return shared.ErrAPIRequest }

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Do sends a request and reads the whole response. Transport failures wrap [shared.ErrServiceUnavailable].
func (a *APIService) Do(ctx context.Context, method, path string, body io.Reader, header http.Header) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.URL(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrTimeout, err)
		}
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return nil, shared.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodGet, path, nil, nil)
}

// Delete performs a DELETE request.
func (a *APIService) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	header := http.Header{"Content-Type": {"application/json"}}
	return a.Do(ctx, http.MethodPost, path, bytes.NewReader(data), header)
}

// PostJSON marshals v and posts it.
func (a *APIService) PostJSON(ctx context.Context, path string, v any) (*APIResponse, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return a.Post(ctx, path, data)
}

// FormField is a plain multipart value.
type FormField struct {
	Name  string
	Value string
}

// FormFile is a multipart file part. ContentType is sniffed when empty.
type FormFile struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// PostMultipart posts files followed by fields as multipart/form-data.
func (a *APIService) PostMultipart(ctx context.Context, path string, files []FormFile, fields ...FormField) (*APIResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		ct := f.ContentType
		if ct == "" {
			ct = mimetype.Detect(f.Data).String()
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("failed to create form part: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("failed to write form part: %w", err)
		}
	}

	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	header := http.Header{"Content-Type": {w.FormDataContentType()}}
	return a.Do(ctx, http.MethodPost, path, &buf, header)
}
