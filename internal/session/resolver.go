package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lectern/internal/models"
	"github.com/desertthunder/lectern/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

// TokenParam is the query parameter carrying the OAuth credential.
const TokenParam = "token"

// ResolveResult reports what a single callback resolution did.
type ResolveResult struct {
	Found    bool
	Token    string
	User     *models.User
	Fallback bool
	Route    string
}

// Resolver turns an OAuth redirect carrying ?token= into an authenticated session.
type Resolver struct {
	store   *Store
	profile ProfileFetcher
	nav     Navigator
	landing string
	logger  *log.Logger
}

// NewResolver creates a [Resolver] that navigates to landing once the user is known.
func NewResolver(store *Store, profile ProfileFetcher, nav Navigator, landing string, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if landing == "" {
		landing = "/dashboard"
	}
	return &Resolver{
		store:   store,
		profile: profile,
		nav:     nav,
		landing: landing,
		logger:  shared.WithLogger(logger, "component", "oauth"),
	}
}

// ResolveURL parses rawURL and resolves its query.
func (r *Resolver) ResolveURL(ctx context.Context, rawURL string) (*ResolveResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return r.Resolve(ctx, u.Query())
}

// Resolve runs the callback once.
//
// No token is a no-op. A found token is persisted before anything else. The
// profile comes from the backend, or from the token's own claims when that
// request fails for any reason. If neither works the token stays stored and
// the decode error is returned.
func (r *Resolver) Resolve(ctx context.Context, query url.Values) (*ResolveResult, error) {
	token := strings.TrimSpace(query.Get(TokenParam))
	if token == "" {
		return &ResolveResult{}, nil
	}

	result := &ResolveResult{Found: true, Token: token}

	if err := r.store.SetToken(token); err != nil {
		return result, err
	}

	user, err := r.profile.Me(ctx, token)
	if err != nil {
		r.logger.Warn("profile fetch failed, decoding token claims", "error", err)

		user, err = DecodeClaims(token)
		if err != nil {
			return result, err
		}
		result.Fallback = true
	}

	if err := r.store.SetUser(user); err != nil {
		return result, err
	}

	result.User = r.store.User()
	result.Route = r.landing
	if r.nav != nil {
		r.nav.Navigate(r.landing)
	}

	r.logger.Info("oauth session resolved", "user", result.User.ID, "fallback", result.Fallback)
	return result, nil
}

// DecodeClaims builds a minimal user from a JWT without verifying its signature.
//
// The identifier is read from "id", then "_id", then "sub".
func DecodeClaims(token string) (*models.User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidToken, err)
	}

	var id models.ID
	for _, key := range []string{"id", "_id", "sub"} {
		if id = claimID(claims[key]); !id.IsZero() {
			break
		}
	}
	if id.IsZero() {
		return nil, fmt.Errorf("%w: token carries no user id", shared.ErrInvalidToken)
	}

	email, _ := claims["email"].(string)
	return &models.User{ID: id, RawID: id, Email: email}, nil
}

func claimID(v any) models.ID {
	switch t := v.(type) {
	case string:
		return models.ID(strings.TrimSpace(t))
	case float64:
		return models.ID(strconv.FormatFloat(t, 'f', -1, 64))
	case json.Number:
		return models.ID(t.String())
	case map[string]any:
		if oid, ok := t["$oid"].(string); ok {
			return models.ID(oid)
		}
	}
	return ""
}
