package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/lectern/internal/models"
	"github.com/desertthunder/lectern/internal/shared"
)

const (
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"
	mePath       = "/api/auth/me"
	googlePath   = "/api/auth/google"
)

// Credentials is the body of login and register requests.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is a successful login or register response with the user already normalized.
type AuthResult struct {
	Token string
	User  *models.User
}

// AuthService calls the backend's authentication endpoints.
//
// It holds no state; persisting the returned token is the caller's job.
type AuthService struct {
	api *APIService
}

// NewAuthService creates an [AuthService] over api.
func NewAuthService(api *APIService) *AuthService {
	return &AuthService{api: api}
}

// Login exchanges credentials for a token and profile.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return s.exchange(ctx, loginPath, "Login", email, password)
}

// Register creates an account and returns its token and profile.
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	return s.exchange(ctx, registerPath, "Registration", email, password)
}

func (s *AuthService) exchange(ctx context.Context, path, action, email, password string) (*AuthResult, error) {
	resp, err := s.api.PostJSON(ctx, path, Credentials{Email: shared.NormalizeEmail(email), Password: password})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var body struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("%w: %s failed: malformed response", shared.ErrContract, action)
	}
	if body.Token == "" || isNullJSON(body.User) {
		return nil, fmt.Errorf("%w: %s failed: Missing token or user data", shared.ErrContract, action)
	}

	user, err := models.NormalizeUser(body.User)
	if err != nil {
		return nil, fmt.Errorf("%w: %s failed: %v", shared.ErrContract, action, err)
	}

	return &AuthResult{Token: body.Token, User: user}, nil
}

// Me fetches the profile behind token.
//
// The body may be the user itself or wrapped as {"user": ...}.
func (s *AuthService) Me(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	header := http.Header{"Authorization": {"Bearer " + token}}
	resp, err := s.api.Do(ctx, http.MethodGet, mePath, nil, header)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	raw := json.RawMessage(resp.Body)
	var wrapped struct {
		User json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(resp.Body, &wrapped); err == nil && !isNullJSON(wrapped.User) {
		raw = wrapped.User
	}

	user, err := models.NormalizeUser(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrContract, err)
	}
	if user.ID.IsZero() {
		return nil, fmt.Errorf("%w: profile has no identifier", shared.ErrContract)
	}
	return user, nil
}

// GoogleURL is where the browser starts the Google OAuth redirect.
func (s *AuthService) GoogleURL() string {
	return s.api.URL(googlePath)
}

func isNullJSON(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
