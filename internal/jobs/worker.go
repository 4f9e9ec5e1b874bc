package jobs

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"yt-clipper/internal/logging"
	"yt-clipper/internal/metrics"
)

// SourceFetcher resolves a remote URL to a local source file.
type SourceFetcher interface {
	ResolveAndFetch(ctx context.Context, url string) (string, error)
}

// Cutter extracts a time range from a local source into an output file.
type Cutter interface {
	Cut(ctx context.Context, input string, start, end float64, output string) error
}

// Worker is the single consumer of the job queue. It processes one job
// at a time, so at most one download and transcode is ever running and
// completion order matches submission order.
type Worker struct {
	registry *Registry
	fetcher  SourceFetcher
	cutter   Cutter
	clipsDir string
}

// NewWorker wires the worker to its collaborators. It does not start
// processing; call Run from a dedicated goroutine.
func NewWorker(registry *Registry, fetcher SourceFetcher, cutter Cutter, clipsDir string) *Worker {
	return &Worker{
		registry: registry,
		fetcher:  fetcher,
		cutter:   cutter,
		clipsDir: clipsDir,
	}
}

// Run consumes the queue until the registry is closed. A failed job is
// recorded on its own record and never stops the loop.
func (w *Worker) Run(ctx context.Context) {
	logging.Info("clip worker started")
	for {
		id, ok := w.registry.next()
		if !ok {
			logging.Info("clip worker stopped")
			return
		}
		w.process(ctx, id)
	}
}

// process drives one job through working -> downloading -> clipping ->
// done, or straight to error on the first failure.
func (w *Worker) process(ctx context.Context, id string) {
	defer func() {
		// The loop must survive anything a single job does to it.
		if r := recover(); r != nil {
			logging.Error("job %s panicked: %v", id, r)
			w.registry.fail(id, fmt.Sprintf("internal error: %v", r))
			metrics.JobsCompleted.WithLabelValues("error").Inc()
		}
	}()

	job, err := w.registry.Get(id)
	if err != nil {
		logging.Warn("dequeued unknown job %s", id)
		return
	}

	start := time.Now()
	w.registry.setState(id, StateWorking)

	w.registry.setState(id, StateDownloading)
	source, err := w.fetcher.ResolveAndFetch(ctx, job.URL)
	if err != nil {
		logging.Error("job %s download failed: %v", id, err)
		w.registry.fail(id, err.Error())
		metrics.JobsCompleted.WithLabelValues("error").Inc()
		return
	}

	w.registry.setState(id, StateClipping)
	output := filepath.Join(w.clipsDir, job.Filename)
	if err := w.cutter.Cut(ctx, source, job.Start, job.End, output); err != nil {
		logging.Error("job %s clip failed: %v", id, err)
		w.registry.fail(id, err.Error())
		metrics.JobsCompleted.WithLabelValues("error").Inc()
		return
	}

	w.registry.complete(id, "/clips/"+job.Filename)
	metrics.JobsCompleted.WithLabelValues("done").Inc()
	metrics.JobDuration.Observe(time.Since(start).Seconds())
	logging.Info("job %s done: %s in %v", id, job.Filename, time.Since(start).Round(time.Millisecond))
}
