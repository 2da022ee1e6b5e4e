// package services implements clients for the lecture notes backend's HTTP API
package services

import (
	"net/http"

	"github.com/desertthunder/lectern/internal/shared"
	"golang.org/x/oauth2"
)

// Client bundles every backend service over one configured transport.
//
// Auth, Audio and Summary use the plain client; Files sends the bearer token from ts.
type Client struct {
	API     *APIService
	Auth    *AuthService
	Files   *FilesService
	Audio   *AudioService
	Summary *SummaryService
}

// New builds a [Client] from config. base defaults to a client with the configured timeout.
func New(cfg shared.APIConfig, base *http.Client, ts oauth2.TokenSource) *Client {
	if base == nil {
		base = &http.Client{Timeout: cfg.Timeout()}
	}

	api := NewAPIService(cfg.BaseURL, base).WithLimiter(NewLimiter(cfg.RequestsPerSecond, cfg.Burst))
	authed := api.WithClient(NewAuthorizedClient(ts, base))

	return &Client{
		API:     authed,
		Auth:    NewAuthService(api),
		Files:   NewFilesService(authed),
		Audio:   NewAudioService(api),
		Summary: NewSummaryService(api),
	}
}
