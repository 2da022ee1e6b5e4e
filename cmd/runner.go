package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lectern/internal/dashboard"
	"github.com/desertthunder/lectern/internal/repositories"
	"github.com/desertthunder/lectern/internal/services"
	"github.com/desertthunder/lectern/internal/session"
	"github.com/desertthunder/lectern/internal/shared"
	"github.com/desertthunder/lectern/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Storage and the session are opened lazily so setup commands work before a database exists.
type Runner struct {
	configPath string
	config     *shared.Config
	db         *sql.DB
	tokens     session.TokenStore
	recordings *repositories.RecordingRepository
	session    *session.Store
	client     *services.Client
	httpClient *http.Client
	confirmer  dashboard.Confirmer
	browser    func(url string) error
	input      *bufio.Reader
	tty        *os.File
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB
	Tokens     session.TokenStore
	HTTPClient *http.Client
	Confirmer  dashboard.Confirmer
	Browser    func(url string) error
	Input      io.Reader
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Browser == nil {
		opts.Browser = shared.OpenBrowser
	}

	tty, _ := opts.Input.(*os.File)

	return &Runner{
		configPath: opts.ConfigPath,
		config:     opts.Config,
		db:         opts.DB,
		tokens:     opts.Tokens,
		httpClient: opts.HTTPClient,
		confirmer:  opts.Confirmer,
		browser:    opts.Browser,
		input:      bufio.NewReader(opts.Input),
		tty:        tty,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// Before resolves configuration from the global flags.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.config == nil {
		config, err := shared.ResolveConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	level, err := shared.ParseLogLevel(r.config.Log.Level)
	if err != nil {
		return ctx, err
	}
	if cmd.Bool("debug") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	return ctx, nil
}

// SetLogger replaces the logger, e.g. with a file logger while a TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// tokenSourceFunc adapts a function to [oauth2.TokenSource].
type tokenSourceFunc func() (*oauth2.Token, error)

func (f tokenSourceFunc) Token() (*oauth2.Token, error) { return f() }

// init opens storage and builds the session and API client on first use.
func (r *Runner) init() error {
	if r.session != nil {
		return nil
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	if r.tokens == nil {
		r.tokens = repositories.NewTokenRepository(db)
	}
	r.recordings = repositories.NewRecordingRepository(db)

	// The client reads the token through the store built right after it.
	r.client = services.New(r.config.API, r.httpClient, tokenSourceFunc(func() (*oauth2.Token, error) {
		return r.session.TokenSource().Token()
	}))

	store, err := session.New(r.tokens, r.client.Auth, r.logger)
	if err != nil {
		return err
	}
	r.session = store
	return nil
}

// database opens and migrates local storage once.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}

	db, err := shared.OpenStorage(r.config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	r.db = db
	return db, nil
}

// Close releases the database.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// navigator reports redirects as CLI hints.
func (r *Runner) navigator() session.Navigator {
	return session.NavigatorFunc(func(route string) {
		if route == r.config.Server.LoginRoute {
			r.logger.Warn("sign-in required", "hint", "run 'lectern auth login'")
			return
		}
		r.logger.Debug("navigate", "route", route)
	})
}

// dashboard builds a controller over the current session. assumeYes skips delete prompts.
func (r *Runner) dashboard(assumeYes bool) *dashboard.Controller {
	confirmer := r.confirmer
	if confirmer == nil || assumeYes {
		confirmer = &ui.LineConfirmer{In: r.input, Out: r.output, AssumeYes: assumeYes}
	}

	return dashboard.New(dashboard.Options{
		Session:    r.session,
		Files:      r.client.Files,
		Confirmer:  confirmer,
		Navigator:  r.navigator(),
		Viewer:     &dashboard.BrowserViewer{Delay: dashboard.DefaultViewDelay, Open: r.browser, Logger: r.logger},
		LoginRoute: r.config.Server.LoginRoute,
		Logger:     r.logger,
	})
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, foldersCommand, filesCommand, recordCommand, recordingsCommand,
		summarizeCommand, demoCommand, apiCommand, dashboardCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
