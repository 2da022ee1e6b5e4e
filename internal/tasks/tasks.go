package tasks

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lectern/internal/services"
	"github.com/desertthunder/lectern/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers = 3
	maxWorkers     = 10
	defaultRate    = 2.0
)

// Summarizer produces a summary for lecture text.
type Summarizer interface {
	Summarize(ctx context.Context, req services.SummaryRequest) (string, error)
}

// Uploader sends recorded audio for transcription.
type Uploader interface {
	UploadAudio(ctx context.Context, upload *services.Upload) (*services.AudioResult, error)
}

// Marker records that a recording reached the backend.
type Marker interface {
	MarkUploaded(id string) error
}

// Engine runs batch jobs against the backend.
type Engine struct {
	summarizer Summarizer
	uploader   Uploader
	marker     Marker
	logger     *log.Logger
}

// NewEngine creates an [Engine]. Any dependency may be nil when the job using it is never run.
func NewEngine(summarizer Summarizer, uploader Uploader, marker Marker, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		summarizer: summarizer,
		uploader:   uploader,
		marker:     marker,
		logger:     shared.WithLogger(logger, "component", "tasks"),
	}
}

// PoolOpts bounds concurrency and request rate for a batch.
type PoolOpts struct {
	Workers   int     // Concurrent workers (default 3, at most 10)
	RateLimit float64 // Requests per second across all workers (default 2)
}

func (o PoolOpts) normalize() PoolOpts {
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.Workers > maxWorkers {
		o.Workers = maxWorkers
	}
	if o.RateLimit <= 0 {
		o.RateLimit = defaultRate
	}
	return o
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// runPool feeds jobs to workers and streams their results. Jobs not yet
// started when ctx ends are skipped; the channel closes once every worker exits.
func runPool[J, R any](ctx context.Context, opts PoolOpts, jobs []J, work func(context.Context, J) R) <-chan R {
	opts = opts.normalize()
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	queue := make(chan J, len(jobs))
	results := make(chan R, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				results <- work(ctx, job)
			}
		}()
	}

	for _, job := range jobs {
		queue <- job
	}
	close(queue)

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
