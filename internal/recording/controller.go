package recording

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lectern/internal/services"
	"github.com/desertthunder/lectern/internal/shared"
)

const (
	DefaultLanguage    = "ur-PK"
	DefaultAltLanguage = "en-US"
)

// Uploader sends a finished recording to the backend.
type Uploader interface {
	UploadAudio(ctx context.Context, upload *services.Upload) (*services.AudioResult, error)
}

// Options configures a [Controller].
type Options struct {
	Capturer    Capturer
	Recognizer  Recognizer
	Uploader    Uploader
	Language    string
	AltLanguage string
	// OnResult, when set, runs after each recognition event is merged.
	OnResult func(Result)
	Logger   *log.Logger
}

// Controller couples audio capture with speech recognition. Recognition runs
// only while the state is [Recording].
type Controller struct {
	mu          sync.Mutex
	state       State
	lang        string
	primary     string
	alt         string
	recognizing bool
	artifact    *Artifact

	transcript Transcript
	capturer   Capturer
	recognizer Recognizer
	uploader   Uploader
	onResult   func(Result)
	logger     *log.Logger
}

// New creates an idle [Controller].
func New(opts Options) *Controller {
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.AltLanguage == "" {
		opts.AltLanguage = DefaultAltLanguage
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Controller{
		state:      Idle,
		lang:       opts.Language,
		primary:    opts.Language,
		alt:        opts.AltLanguage,
		capturer:   opts.Capturer,
		recognizer: opts.Recognizer,
		uploader:   opts.Uploader,
		onResult:   opts.OnResult,
		logger:     shared.WithLogger(opts.Logger, "component", "recording"),
	}
}

// Start acquires capture and begins recognition. Audio from an earlier take is discarded;
// the transcript carries over.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := Next(c.state, ActionStart)
	if err != nil {
		return err
	}
	if err := c.capturer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start capture: %w", err)
	}

	c.artifact = nil
	c.state = next
	c.startRecognition()
	c.logger.Info("recording started", "language", c.lang)
	return nil
}

func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := Next(c.state, ActionPause)
	if err != nil {
		return err
	}
	c.capturer.Pause()
	c.stopRecognition()
	c.state = next
	c.logger.Debug("recording paused")
	return nil
}

func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := Next(c.state, ActionResume)
	if err != nil {
		return err
	}
	c.capturer.Resume()
	c.state = next
	c.startRecognition()
	c.logger.Debug("recording resumed")
	return nil
}

// Stop finalizes the artifact. The session is stopped even when finalizing fails.
func (c *Controller) Stop() (*Artifact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := Next(c.state, ActionStop)
	if err != nil {
		return nil, err
	}

	c.stopRecognition()
	c.state = next

	artifact, err := c.capturer.Stop()
	if err != nil {
		return nil, err
	}
	c.artifact = artifact
	c.logger.Info("recording stopped", "bytes", len(artifact.Data))
	return artifact, nil
}

// SetLanguage switches the recognition language, restarting recognition when it is running.
func (c *Controller) SetLanguage(lang string) error {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return fmt.Errorf("%w: language", shared.ErrInvalidArgument)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lang = lang
	if c.recognizing {
		c.stopRecognition()
		c.startRecognition()
	}
	c.logger.Debug("language set", "language", lang)
	return nil
}

// ToggleLanguage flips between the primary and alternate language and returns the new one.
func (c *Controller) ToggleLanguage() (string, error) {
	next := c.primary
	if c.Language() == c.primary {
		next = c.alt
	}
	return next, c.SetLanguage(next)
}

// Save uploads the stopped artifact. Without one it does nothing.
func (c *Controller) Save(ctx context.Context) (*services.AudioResult, error) {
	c.mu.Lock()
	artifact := c.artifact
	c.mu.Unlock()

	if artifact == nil || len(artifact.Data) == 0 {
		c.logger.Debug("nothing to save")
		return nil, nil
	}

	result, err := c.uploader.UploadAudio(ctx, &services.Upload{
		Name:        artifact.Name,
		ContentType: artifact.MIME,
		Data:        artifact.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload recording: %w", err)
	}
	c.logger.Info("recording uploaded", "bytes", len(artifact.Data))
	return result, nil
}

func (c *Controller) startRecognition() {
	if c.recognizer == nil {
		return
	}
	if err := c.recognizer.Start(c.lang, c.apply); err != nil {
		c.logger.Error("failed to start recognition", "language", c.lang, "error", err)
		return
	}
	c.recognizing = true
}

func (c *Controller) stopRecognition() {
	if c.recognizer == nil || !c.recognizing {
		return
	}
	c.recognizer.Stop()
	c.recognizing = false
}

func (c *Controller) apply(r Result) {
	c.transcript.Apply(r)
	if c.onResult != nil {
		c.onResult(r)
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Language() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lang
}

// Recognizing reports whether speech recognition is active.
func (c *Controller) Recognizing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recognizing
}

// Transcript returns the live transcript.
func (c *Controller) Transcript() *Transcript {
	return &c.transcript
}

// Artifact returns the audio of the last stopped take, or nil.
func (c *Controller) Artifact() *Artifact {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.artifact
}
