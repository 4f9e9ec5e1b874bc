package jobs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls []string
	err   error
	path  string
}

func (f *fakeFetcher) ResolveAndFetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

type fakeCutter struct {
	mu      sync.Mutex
	outputs []string
	err     error
}

func (c *fakeCutter) Cut(_ context.Context, _ string, _, _ float64, output string) error {
	c.mu.Lock()
	c.outputs = append(c.outputs, output)
	c.mu.Unlock()
	return c.err
}

// runWorker processes everything currently queued, then shuts down.
func runWorker(t *testing.T, w *Worker, r *Registry) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		w.Run(context.Background())
		close(done)
	}()

	r.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func waitTerminal(t *testing.T, r *Registry, id string) Job {
	t.Helper()
	job, err := r.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if !job.State.Terminal() {
		t.Fatalf("job %s not terminal: %s", id, job.State)
	}
	return job
}

func TestWorkerHappyPath(t *testing.T) {
	r := NewRegistry()
	fetcher := &fakeFetcher{path: "/tmp/src.mp4"}
	cutter := &fakeCutter{}
	w := NewWorker(r, fetcher, cutter, "/tmp/clips")

	job := r.Enqueue("https://example.com/v", 65, 125, 3, Filename(3, 65, 125))
	runWorker(t, w, r)

	got := waitTerminal(t, r, job.ID)
	if got.State != StateDone {
		t.Fatalf("state = %s (%s), want done", got.State, got.Error)
	}
	if got.ResultURL != "/clips/(3) 0105-0205.mp4" {
		t.Errorf("result url = %q", got.ResultURL)
	}

	wantOut := filepath.Join("/tmp/clips", "(3) 0105-0205.mp4")
	if len(cutter.outputs) != 1 || cutter.outputs[0] != wantOut {
		t.Errorf("cut outputs = %v, want [%s]", cutter.outputs, wantOut)
	}
}

func TestWorkerFetchFailure(t *testing.T) {
	r := NewRegistry()
	fetcher := &fakeFetcher{err: errors.New("fetch https://example.com/v: network down")}
	cutter := &fakeCutter{}
	w := NewWorker(r, fetcher, cutter, "/tmp/clips")

	job := r.Enqueue("https://example.com/v", 0, 5, 1, Filename(1, 0, 5))
	runWorker(t, w, r)

	got := waitTerminal(t, r, job.ID)
	if got.State != StateError {
		t.Fatalf("state = %s, want error", got.State)
	}
	if got.Error == "" {
		t.Error("error message empty")
	}
	if len(cutter.outputs) != 0 {
		t.Error("cutter invoked after failed fetch")
	}
}

func TestWorkerCutFailure(t *testing.T) {
	r := NewRegistry()
	fetcher := &fakeFetcher{path: "/tmp/src.mp4"}
	cutter := &fakeCutter{err: errors.New("ffmpeg failed: bad input")}
	w := NewWorker(r, fetcher, cutter, "/tmp/clips")

	job := r.Enqueue("https://example.com/v", 0, 5, 1, Filename(1, 0, 5))
	runWorker(t, w, r)

	got := waitTerminal(t, r, job.ID)
	if got.State != StateError || got.Error == "" {
		t.Errorf("job = %+v, want errored with message", got)
	}
}

func TestWorkerSurvivesFailures(t *testing.T) {
	r := NewRegistry()
	fetcher := &fakeFetcher{err: errors.New("always fails")}
	cutter := &fakeCutter{}
	w := NewWorker(r, fetcher, cutter, "/tmp/clips")

	var ids []string
	for i := 1; i <= 3; i++ {
		job := r.Enqueue(fmt.Sprintf("https://example.com/%d", i), 0, 5, i, Filename(i, 0, 5))
		ids = append(ids, job.ID)
	}
	runWorker(t, w, r)

	// Every job reached a terminal state; one failure never stalled the rest.
	for _, id := range ids {
		got := waitTerminal(t, r, id)
		if got.State != StateError {
			t.Errorf("job %s state = %s, want error", id, got.State)
		}
	}
	if len(fetcher.calls) != 3 {
		t.Errorf("fetch calls = %d, want 3", len(fetcher.calls))
	}
}

func TestWorkerProcessesInSubmissionOrder(t *testing.T) {
	r := NewRegistry()
	fetcher := &fakeFetcher{path: "/tmp/src.mp4"}
	cutter := &fakeCutter{}
	w := NewWorker(r, fetcher, cutter, "/tmp/clips")

	var urls []string
	for i := 1; i <= 5; i++ {
		url := fmt.Sprintf("https://example.com/%d", i)
		urls = append(urls, url)
		r.Enqueue(url, 0, 5, i, Filename(i, 0, 5))
	}
	runWorker(t, w, r)

	if len(fetcher.calls) != len(urls) {
		t.Fatalf("fetch calls = %d, want %d", len(fetcher.calls), len(urls))
	}
	for i, url := range urls {
		if fetcher.calls[i] != url {
			t.Errorf("call %d = %s, want %s (FIFO order)", i, fetcher.calls[i], url)
		}
	}
}
