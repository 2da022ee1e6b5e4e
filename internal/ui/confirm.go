package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/desertthunder/lectern/internal/shared"
)

type confirmRequest struct {
	message string
	reply   chan bool
}

// Prompter hands confirmation requests to a running [Model] and blocks until it answers.
type Prompter struct {
	requests chan confirmRequest
	done     chan struct{}
	once     sync.Once
}

func NewPrompter() *Prompter {
	return &Prompter{requests: make(chan confirmRequest), done: make(chan struct{})}
}

// Confirm implements the dashboard confirmer. It fails with [shared.ErrCancelled] once closed.
func (p *Prompter) Confirm(message string) (bool, error) {
	req := confirmRequest{message: message, reply: make(chan bool, 1)}

	select {
	case p.requests <- req:
	case <-p.done:
		return false, shared.ErrCancelled
	}

	select {
	case ok := <-req.reply:
		return ok, nil
	case <-p.done:
		return false, shared.ErrCancelled
	}
}

// Close releases any pending or future Confirm calls.
func (p *Prompter) Close() {
	p.once.Do(func() { close(p.done) })
}

// LineConfirmer asks on Out and reads a y/N answer from In.
type LineConfirmer struct {
	In  io.Reader
	Out io.Writer
	// AssumeYes skips the prompt.
	AssumeYes bool

	scanner *bufio.Scanner
}

func (c *LineConfirmer) Confirm(message string) (bool, error) {
	if c.AssumeYes {
		return true, nil
	}
	if c.scanner == nil {
		c.scanner = bufio.NewScanner(c.In)
	}

	fmt.Fprintf(c.Out, "%s [y/N]: ", message)
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return false, fmt.Errorf("failed to read answer: %w", err)
		}
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(c.scanner.Text())) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
