package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrSessionExpired   = fmt.Errorf("session expired")
	ErrInvalidToken     = fmt.Errorf("invalid token")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrContract           = fmt.Errorf("unexpected response")
	ErrFolderNotFound     = fmt.Errorf("folder not found")
	ErrRecordingNotFound  = fmt.Errorf("recording not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrEmptyName       = fmt.Errorf("name is required")
	ErrEmptyFile       = fmt.Errorf("file is empty")
	ErrCancelled       = fmt.Errorf("cancelled")

	// Recording errors
	ErrInvalidTransition = fmt.Errorf("invalid recording transition")
	ErrNoAudio           = fmt.Errorf("no audio captured")
)
