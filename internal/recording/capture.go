package recording

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const (
	ArtifactName = "recording.wav"
	ArtifactMIME = "audio/wav"

	DefaultChunkSize = 4096

	// PCM layout assumed for raw input without a container.
	pcmSampleRate    = 16000
	pcmChannels      = 1
	pcmBitsPerSample = 16
)

// Artifact is the finalized audio of a stopped session.
type Artifact struct {
	Data []byte
	MIME string
	Name string
}

// Capturer acquires audio. Pause drops input until Resume.
type Capturer interface {
	Start(ctx context.Context) error
	Pause()
	Resume()
	Stop() (*Artifact, error)
}

// ReaderCapturer captures audio from an io.Reader such as stdin or a file.
type ReaderCapturer struct {
	r         io.Reader
	chunkSize int
	wait      time.Duration

	mu      sync.Mutex
	buf     bytes.Buffer
	paused  bool
	running bool
	err     error
	done    chan struct{}
}

// NewReaderCapturer creates a [ReaderCapturer]. A non-positive chunkSize uses [DefaultChunkSize].
func NewReaderCapturer(r io.Reader, chunkSize int) *ReaderCapturer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ReaderCapturer{r: r, chunkSize: chunkSize, wait: 2 * time.Second}
}

// Start begins reading in the background and discards audio from any previous take.
func (c *ReaderCapturer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("capture already running")
	}
	c.buf.Reset()
	c.paused = false
	c.running = true
	c.err = nil
	c.done = make(chan struct{})

	go c.pump(ctx, c.done)
	return nil
}

func (c *ReaderCapturer) pump(ctx context.Context, done chan struct{}) {
	defer close(done)

	chunk := make([]byte, c.chunkSize)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := c.r.Read(chunk)
		if n > 0 && !c.accept(chunk[:n]) {
			return
		}
		if err != nil {
			c.mu.Lock()
			if c.running && !errors.Is(err, io.EOF) {
				c.err = err
			}
			c.mu.Unlock()
			return
		}
	}
}

// accept buffers p unless paused. It reports false once capture has stopped.
func (c *ReaderCapturer) accept(p []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return false
	}
	if !c.paused {
		c.buf.Write(p)
	}
	return true
}

func (c *ReaderCapturer) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

func (c *ReaderCapturer) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
}

// Stop ends capture and finalizes the buffered audio. A reader still blocked
// after the grace period is closed when it can be.
func (c *ReaderCapturer) Stop() (*Artifact, error) {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil, fmt.Errorf("capture not running")
	}
	c.running = false
	done := c.done
	c.mu.Unlock()

	select {
	case <-done:
	case <-time.After(c.wait):
		if closer, ok := c.r.(io.Closer); ok {
			closer.Close()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", c.err)
	}
	return NewArtifact(bytes.Clone(c.buf.Bytes())), nil
}

// NewArtifact wraps data as a WAV artifact. Data already in a WAV container is kept as is;
// anything else is treated as raw 16-bit mono PCM.
func NewArtifact(data []byte) *Artifact {
	if len(data) > 0 && !mimetype.Detect(data).Is(ArtifactMIME) {
		data = wrapPCM(data)
	}
	return &Artifact{Data: data, MIME: ArtifactMIME, Name: ArtifactName}
}

func wrapPCM(pcm []byte) []byte {
	byteRate := pcmSampleRate * pcmChannels * pcmBitsPerSample / 8
	blockAlign := pcmChannels * pcmBitsPerSample / 8

	var out bytes.Buffer
	out.Grow(44 + len(pcm))
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(36+len(pcm)))
	out.WriteString("WAVEfmt ")
	binary.Write(&out, binary.LittleEndian, uint32(16))
	binary.Write(&out, binary.LittleEndian, uint16(1))
	binary.Write(&out, binary.LittleEndian, uint16(pcmChannels))
	binary.Write(&out, binary.LittleEndian, uint32(pcmSampleRate))
	binary.Write(&out, binary.LittleEndian, uint32(byteRate))
	binary.Write(&out, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&out, binary.LittleEndian, uint16(pcmBitsPerSample))
	out.WriteString("data")
	binary.Write(&out, binary.LittleEndian, uint32(len(pcm)))
	out.Write(pcm)
	return out.Bytes()
}
