package recording

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

const interimSuffix = "..."

// Result is one recognition event.
type Result struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// Transcript accumulates recognition results. Finals are kept, interim text
// is replaced by each newer event.
type Transcript struct {
	mu      sync.Mutex
	final   strings.Builder
	interim string
}

// Apply merges r into the transcript.
func (t *Transcript) Apply(r Result) {
	text := strings.TrimSpace(r.Text)

	t.mu.Lock()
	defer t.mu.Unlock()

	if !r.Final {
		t.interim = text
		return
	}

	t.interim = ""
	if text == "" {
		return
	}
	t.final.WriteString(capitalize(text))
	t.final.WriteString(".\n")
}

// Text is the display form: finals, then the pending interim with a trailing "...".
func (t *Transcript) Text() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.interim == "" {
		return t.final.String()
	}
	return t.final.String() + t.interim + interimSuffix
}

// Final returns only finalized text.
func (t *Transcript) Final() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.final.String()
}

// Reset empties the transcript.
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.final.Reset()
	t.interim = ""
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
