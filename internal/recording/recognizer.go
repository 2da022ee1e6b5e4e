package recording

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Recognizer turns speech into [Result] events for a language tag such as "ur-PK".
type Recognizer interface {
	Start(lang string, emit func(Result)) error
	Stop()
}

// LineRecognizer reads recognition events as JSON lines ({"text","final"})
// from an external engine's output. Lines read while stopped are dropped.
type LineRecognizer struct {
	r      io.Reader
	logger *log.Logger

	once sync.Once
	mu   sync.Mutex
	lang string
	emit func(Result)
}

// NewLineRecognizer creates a [LineRecognizer] over r.
func NewLineRecognizer(r io.Reader, logger *log.Logger) *LineRecognizer {
	return &LineRecognizer{r: r, logger: logger}
}

// Start routes events to emit until [LineRecognizer.Stop].
func (l *LineRecognizer) Start(lang string, emit func(Result)) error {
	l.mu.Lock()
	l.lang = lang
	l.emit = emit
	l.mu.Unlock()

	l.once.Do(func() { go l.scan() })
	return nil
}

func (l *LineRecognizer) Stop() {
	l.mu.Lock()
	l.emit = nil
	l.mu.Unlock()
}

// Language returns the tag of the active recognition, empty when stopped.
func (l *LineRecognizer) Language() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.emit == nil {
		return ""
	}
	return l.lang
}

func (l *LineRecognizer) scan() {
	scanner := bufio.NewScanner(l.r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var r Result
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			if l.logger != nil {
				l.logger.Warn("skipping malformed recognition line", "error", err)
			}
			continue
		}

		l.mu.Lock()
		emit := l.emit
		l.mu.Unlock()
		if emit != nil {
			emit(r)
		}
	}
	if err := scanner.Err(); err != nil && l.logger != nil {
		l.logger.Error("recognition stream failed", "error", err)
	}
}
