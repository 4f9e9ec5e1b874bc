package jobs

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"yt-clipper/internal/logging"
	"yt-clipper/internal/metrics"
)

// ErrNotFound is returned when polling an unknown job id.
var ErrNotFound = errors.New("job not found")

// Registry owns every job record and the FIFO admission queue. One
// mutex guards both; the queue is unbounded so submission never blocks
// on the worker.
type Registry struct {
	mu     sync.Mutex
	cond   *sync.Cond
	jobs   map[string]*Job
	queue  []string
	closed bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{jobs: make(map[string]*Job)}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Enqueue creates a job record in state queued with the pre-reserved
// index and filename, appends it to the queue, and returns a snapshot.
func (r *Registry) Enqueue(url string, start, end float64, index int, filename string) Job {
	job := &Job{
		ID:       newJobID(),
		URL:      url,
		Start:    start,
		End:      end,
		State:    StateQueued,
		Index:    index,
		Filename: filename,
		QueuedAt: float64(time.Now().UnixNano()) / float64(time.Second),
	}

	r.mu.Lock()
	r.jobs[job.ID] = job
	r.queue = append(r.queue, job.ID)
	r.cond.Signal()
	depth := len(r.queue)
	snapshot := *job
	r.mu.Unlock()

	metrics.QueueDepth.Set(float64(depth))
	return snapshot
}

// Get returns a snapshot of the job, or ErrNotFound.
func (r *Registry) Get(id string) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return *job, nil
}

// List returns snapshots of all jobs, newest submission first.
func (r *Registry) List() []Job {
	r.mu.Lock()
	items := make([]Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		items = append(items, *job)
	}
	r.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].QueuedAt > items[j].QueuedAt
	})
	return items
}

// next blocks until a job id is available or the registry is closed.
func (r *Registry) next() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.queue) == 0 && !r.closed {
		r.cond.Wait()
	}
	if len(r.queue) == 0 {
		return "", false
	}

	id := r.queue[0]
	r.queue = r.queue[1:]
	metrics.QueueDepth.Set(float64(len(r.queue)))
	return id, true
}

// Close wakes the worker so it can drain remaining jobs and exit.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	r.cond.Broadcast()
	r.mu.Unlock()
}

// setState advances a job, refusing any backwards transition so that
// states observed by pollers are non-decreasing.
func (r *Registry) setState(id string, state State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return
	}
	if stateRank[state] < stateRank[job.State] || job.State.Terminal() {
		logging.Warn("ignoring state regression for job %s: %s -> %s", id, job.State, state)
		return
	}
	job.State = state
}

// complete marks a job done and records its result locator.
func (r *Registry) complete(id, resultURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.State.Terminal() {
		return
	}
	job.State = StateDone
	job.ResultURL = resultURL
}

// fail marks a job errored with the failure message.
func (r *Registry) fail(id, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.State.Terminal() {
		return
	}
	job.State = StateError
	job.Error = message
}

// newJobID returns a short opaque id, unique enough for an in-memory
// registry that lives for one process.
func newJobID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
