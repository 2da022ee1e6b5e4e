package dashboard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lectern/internal/services"
	"github.com/desertthunder/lectern/internal/shared"
	"github.com/gabriel-vasile/mimetype"
)

// DefaultViewDelay is how long a viewed file stays on disk after opening.
const DefaultViewDelay = 5 * time.Second

// BrowserViewer writes content to a temporary file, opens it with the
// system browser and removes it after Delay.
type BrowserViewer struct {
	Dir    string
	Delay  time.Duration
	Open   func(path string) error
	Logger *log.Logger
}

// NewBrowserViewer creates a [BrowserViewer] using [shared.OpenBrowser].
func NewBrowserViewer(logger *log.Logger) *BrowserViewer {
	return &BrowserViewer{Delay: DefaultViewDelay, Open: shared.OpenBrowser, Logger: logger}
}

// View implements [Viewer].
func (v *BrowserViewer) View(ctx context.Context, name string, content *services.FileContent) error {
	if content == nil || len(content.Data) == 0 {
		return shared.ErrEmptyFile
	}

	f, err := os.CreateTemp(v.Dir, "lectern-view-*"+Extension(name, content))
	if err != nil {
		return fmt.Errorf("failed to create view file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(content.Data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write view file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write view file: %w", err)
	}

	if err := v.Open(path); err != nil {
		os.Remove(path)
		return err
	}

	time.AfterFunc(v.Delay, func() {
		if err := os.Remove(path); err != nil && v.Logger != nil {
			v.Logger.Warn("failed to remove view file", "path", path, "error", err)
		}
	})
	return nil
}

// Extension picks a file extension from name, then the declared content type, then the bytes.
func Extension(name string, content *services.FileContent) string {
	if ext := filepath.Ext(name); ext != "" {
		return ext
	}
	if content.ContentType != "" {
		if mt := mimetype.Lookup(content.ContentType); mt != nil && mt.Extension() != "" {
			return mt.Extension()
		}
	}
	if ext := mimetype.Detect(content.Data).Extension(); ext != "" {
		return ext
	}
	return ".bin"
}

// TempFilePath reports whether path is a viewer temp file; used in tests and cleanup.
func TempFilePath(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "lectern-view-")
}
