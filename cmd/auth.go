package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/desertthunder/lectern/internal/models"
	"github.com/desertthunder/lectern/internal/server"
	"github.com/desertthunder/lectern/internal/session"
	"github.com/desertthunder/lectern/internal/shared"
	"github.com/urfave/cli/v3"
)

const authTimeout = 2 * time.Minute

// AuthLogin signs in with email and password and stores the token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email, password, err := r.credentials(cmd)
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", shared.ErrInvalidInput)
	}

	if err := r.init(); err != nil {
		return err
	}

	r.logger.Info("signing in", "email", email)
	snap, err := r.session.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	return r.writePlain("✓ Signed in as %s\n", displayName(snap.User))
}

// AuthRegister creates an account and signs in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	email, password, err := r.credentials(cmd)
	if err != nil {
		return err
	}
	if err := shared.ValidatePassword(password); err != nil {
		return err
	}

	if err := r.init(); err != nil {
		return err
	}

	r.logger.Info("registering", "email", email)
	snap, err := r.session.Register(ctx, email, password)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	return r.writePlain("✓ Account created, signed in as %s\n", displayName(snap.User))
}

// AuthGoogle runs the browser sign-in: the backend redirects back to a local
// server with ?token=, which the resolver turns into a session.
func (r *Runner) AuthGoogle(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(); err != nil {
		return err
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = authTimeout
	}

	resolver := session.NewResolver(r.session, r.client.Auth, r.navigator(), r.config.Server.LandingRoute, r.logger)
	handler := server.NewCallbackHandler(resolver)
	router := server.NewCallbackRouter(handler, server.RequestLogger(r.logger))

	addr := r.config.Server.Addr()
	r.logger.Infof("starting callback server at %v", addr)
	listener, err := server.Listen(addr, router)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := listener.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	authURL := r.client.Auth.GoogleURL()
	r.writePlain("→ Opening browser for Google sign-in...\n")
	if err := r.browser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for the redirect to %s (%s timeout)...\n", listener.URL(), timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result server.CallbackResult
	select {
	case result = <-handler.Result():
	case err := <-listener.Errors():
		return fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return fmt.Errorf("%w: sign-in timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := result.Error(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	return r.reportResolved(result.Session)
}

// AuthCallback resolves a redirect URL pasted by the user, for when the
// browser cannot reach the local server.
func (r *Runner) AuthCallback(ctx context.Context, cmd *cli.Command) error {
	rawURL := strings.TrimSpace(cmd.StringArg("url"))
	if rawURL == "" {
		return fmt.Errorf("%w: redirect URL", shared.ErrMissingArgument)
	}

	if err := r.init(); err != nil {
		return err
	}

	resolver := session.NewResolver(r.session, r.client.Auth, r.navigator(), r.config.Server.LandingRoute, r.logger)
	result, err := resolver.ResolveURL(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}
	if !result.Found {
		return fmt.Errorf("%w: no %s parameter in URL", shared.ErrMissingArgument, session.TokenParam)
	}

	return r.reportResolved(result)
}

func (r *Runner) reportResolved(result *session.ResolveResult) error {
	if result == nil || result.User == nil {
		return fmt.Errorf("%w: sign-in returned no user", shared.ErrContract)
	}

	r.writePlainln("✓ Signed in as %s", displayName(result.User))
	if result.Fallback {
		r.writePlain("⚠ Profile unavailable, using details from the token\n")
	}
	return nil
}

// AuthLogout clears the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(); err != nil {
		return err
	}

	if !r.session.Authenticated() {
		return r.writePlain("Not signed in\n")
	}
	if err := r.session.Logout(); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus restores the stored session and shows who is signed in.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(); err != nil {
		return err
	}

	snap, err := r.session.Restore(ctx)
	if err != nil && !errors.Is(err, shared.ErrNotAuthenticated) {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			Authenticated bool         `json:"authenticated"`
			Token         string       `json:"token,omitempty"`
			User          *models.User `json:"user,omitempty"`
		}{snap.Authenticated(), shared.MaskToken(snap.Token), snap.User}, true)
	}

	if !snap.Authenticated() {
		return r.writePlain("✗ Not signed in\n")
	}

	r.writePlainHeader("Session")
	r.writePlain("User:  %s\n", displayName(snap.User))
	r.writePlain("ID:    %s\n", snap.User.ID)
	r.writePlain("Token: %s\n", shared.MaskToken(snap.Token))
	return nil
}

// credentials reads email and password from flags, prompting for whatever is missing.
func (r *Runner) credentials(cmd *cli.Command) (email, password string, err error) {
	email = cmd.String("email")
	if email == "" {
		if email, err = r.prompt("Email: "); err != nil {
			return "", "", err
		}
	}
	if err := shared.ValidateEmail(email); err != nil {
		return "", "", err
	}

	password = cmd.String("password")
	if password == "" {
		if password, err = r.promptSecret("Password: "); err != nil {
			return "", "", err
		}
	}
	return shared.NormalizeEmail(email), password, nil
}

func (r *Runner) prompt(label string) (string, error) {
	r.writePlain("%s", label)
	line, err := r.input.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: no input", shared.ErrMissingArgument)
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptSecret reads a line without echo when input is a terminal and
// falls back to [Runner.prompt] otherwise.
func (r *Runner) promptSecret(label string) (string, error) {
	if r.tty == nil || !term.IsTerminal(r.tty.Fd()) {
		return r.prompt(label)
	}

	r.writePlain("%s", label)
	secret, err := term.ReadPassword(r.tty.Fd())
	r.writePlain("\n")
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(secret), nil
}

func displayName(u *models.User) string {
	switch {
	case u == nil:
		return "unknown user"
	case u.Email != "":
		return u.Email
	case u.Name != "":
		return u.Name
	default:
		return u.ID.String()
	}
}
