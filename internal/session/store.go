package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lectern/internal/models"
	"github.com/desertthunder/lectern/internal/services"
	"github.com/desertthunder/lectern/internal/shared"
	"golang.org/x/oauth2"
)

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	Save(token string) error
	Read() (string, bool, error)
	Clear() error
}

// ProfileFetcher resolves the user behind a token.
type ProfileFetcher interface {
	Me(ctx context.Context, token string) (*models.User, error)
}

// Authenticator is the remote side of login and registration.
type Authenticator interface {
	ProfileFetcher
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Register(ctx context.Context, email, password string) (*services.AuthResult, error)
}

// Navigator moves the user to a route after a session transition.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// Store holds the current {token, user} and keeps the token store in step with it.
//
// Every transition replaces the whole state in one assignment under mu.
// Subscribers run after the lock is released.
type Store struct {
	mu     sync.Mutex
	state  models.Session
	tokens TokenStore
	auth   Authenticator
	logger *log.Logger

	subMu   sync.Mutex
	subs    map[int]func(models.Session)
	nextSub int
}

// New creates a [Store] and hydrates the token from tokens. The user stays
// absent until [Store.Restore] or a login resolves it.
func New(tokens TokenStore, auth Authenticator, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	s := &Store{
		tokens: tokens,
		auth:   auth,
		logger: shared.WithLogger(logger, "component", "session"),
		subs:   make(map[int]func(models.Session)),
	}

	token, ok, err := tokens.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read stored token: %w", err)
	}
	if ok {
		s.state.Token = token
		s.logger.Debug("hydrated token", "token", shared.MaskToken(token))
	}
	return s, nil
}

// Login authenticates and adopts the returned token and user.
// On failure the previous state and the stored token are untouched.
func (s *Store) Login(ctx context.Context, email, password string) (models.Session, error) {
	return s.authenticate(ctx, "login", s.auth.Login, email, password)
}

// Register creates an account and adopts it like [Store.Login].
func (s *Store) Register(ctx context.Context, email, password string) (models.Session, error) {
	return s.authenticate(ctx, "register", s.auth.Register, email, password)
}

type exchangeFunc func(ctx context.Context, email, password string) (*services.AuthResult, error)

func (s *Store) authenticate(ctx context.Context, action string, exchange exchangeFunc, email, password string) (models.Session, error) {
	result, err := exchange(ctx, email, password)
	if err != nil {
		s.logger.Warn(action+" failed", "error", err)
		return s.Snapshot(), err
	}
	if result == nil || result.Token == "" || result.User == nil {
		return s.Snapshot(), fmt.Errorf("%w: %s returned no token or user", shared.ErrContract, action)
	}

	next := models.Session{Token: result.Token, User: normalize(result.User)}
	snap, err := s.adopt(next)
	if err != nil {
		return s.Snapshot(), err
	}

	s.logger.Info(action+" succeeded", "user", next.User.ID, "token", shared.MaskToken(next.Token))
	return snap, nil
}

// adopt persists next.Token and swaps in next while holding mu, so a
// concurrent Logout lands either wholly before or wholly after it.
func (s *Store) adopt(next models.Session) (models.Session, error) {
	s.mu.Lock()
	if err := s.tokens.Save(next.Token); err != nil {
		s.mu.Unlock()
		return models.Session{}, fmt.Errorf("failed to persist token: %w", err)
	}
	s.state = next
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return snap, nil
}

// Logout clears the stored token and the in-memory session together.
// Calling it while logged out is a no-op. If storage cannot be cleared the
// in-memory session is kept so both sides still agree.
func (s *Store) Logout() error {
	s.mu.Lock()
	if err := s.tokens.Clear(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to clear token: %w", err)
	}
	wasAuthenticated := s.state.Authenticated()
	s.state = models.Session{}
	s.mu.Unlock()

	if wasAuthenticated {
		s.logger.Info("logged out")
	}
	s.notify(models.Session{})
	return nil
}

// SetUser replaces the user only. The token must already be held, so a user
// is never present without one.
func (s *Store) SetUser(user *models.User) error {
	s.mu.Lock()
	if s.state.Token == "" {
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot set user without a token", shared.ErrNotAuthenticated)
	}
	s.state = models.Session{Token: s.state.Token, User: normalize(user)}
	next := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(next)
	return nil
}

// SetToken persists token and adopts it. A changed token drops the current user.
func (s *Store) SetToken(token string) error {
	if token == "" {
		return fmt.Errorf("%w: token is empty", shared.ErrInvalidToken)
	}

	s.mu.Lock()
	if err := s.tokens.Save(token); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to persist token: %w", err)
	}
	next := models.Session{Token: token}
	if s.state.Token == token {
		next.User = s.state.User
	}
	s.state = next
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("token adopted", "token", shared.MaskToken(token))
	s.notify(snap)
	return nil
}

// Restore resolves the user for a hydrated token. A 401 means the stored
// token is dead: the session is logged out and [shared.ErrSessionExpired] returned.
// Any other profile failure falls back to the token's own claims; only a token
// that cannot be decoded surfaces the fetch error.
func (s *Store) Restore(ctx context.Context) (models.Session, error) {
	snap := s.Snapshot()
	if !snap.Authenticated() {
		return snap, shared.ErrNotAuthenticated
	}
	if snap.User != nil {
		return snap, nil
	}

	user, err := s.auth.Me(ctx, snap.Token)
	if err != nil {
		if services.IsUnauthorized(err) {
			if lerr := s.Logout(); lerr != nil {
				return s.Snapshot(), errors.Join(shared.ErrSessionExpired, lerr)
			}
			return s.Snapshot(), shared.ErrSessionExpired
		}

		fallback, derr := DecodeClaims(snap.Token)
		if derr != nil {
			return snap, err
		}
		s.logger.Warn("profile unavailable, using token claims", "error", err)
		user = fallback
	}

	if err := s.SetUser(user); err != nil {
		return s.Snapshot(), err
	}
	return s.Snapshot(), nil
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() models.Session {
	return models.Session{Token: s.state.Token, User: s.state.User.Clone()}
}

// Token returns the current bearer token, or "".
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// User returns a copy of the current user, or nil.
func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.User.Clone()
}

// Authenticated reports whether a token is held.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Subscribe registers fn to receive the session after every transition.
func (s *Store) Subscribe(fn func(models.Session)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// TokenSource exposes the current token to [oauth2.Transport].
func (s *Store) TokenSource() oauth2.TokenSource {
	return tokenSource{s}
}

func (s *Store) notify(snap models.Session) {
	s.subMu.Lock()
	fns := make([]func(models.Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(models.Session{Token: snap.Token, User: snap.User.Clone()})
	}
}

type tokenSource struct{ s *Store }

func (t tokenSource) Token() (*oauth2.Token, error) {
	token := t.s.Token()
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// normalize copies u and fills ID from RawID when only the latter is set.
func normalize(u *models.User) *models.User {
	c := u.Clone()
	if c != nil && c.ID.IsZero() {
		c.ID = c.RawID
	}
	return c
}
