package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"yt-clipper/internal/clipper"
	"yt-clipper/internal/jobs"
	"yt-clipper/internal/logging"
	"yt-clipper/internal/metrics"

	"github.com/gorilla/mux"
)

// ClipRequest is the body of both the async and sync clip endpoints.
// A negative start is allowed; the filename clamps it to zero.
type ClipRequest struct {
	URL   string  `json:"url" validate:"required"`
	Start float64 `json:"start"`
	End   float64 `json:"end" validate:"gtfield=Start"`
}

// SubmitClip accepts an async clip job. The sequence index is reserved
// before the job enters the queue, so the response can already name
// the output file.
func (h *Handlers) SubmitClip(w http.ResponseWriter, r *http.Request) {
	var req ClipRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	index := h.store.Reserve()
	filename := jobs.Filename(index, req.Start, req.End)
	job := h.registry.Enqueue(req.URL, req.Start, req.End, index, filename)
	metrics.JobsSubmitted.WithLabelValues("async").Inc()

	logging.Info("queued job %s: index=%d file=%q", job.ID, index, filename)
	writeOKStatus(w, http.StatusAccepted, map[string]interface{}{
		"job_id":   job.ID,
		"index":    index,
		"filename": filename,
	})
}

// GetJob returns one job record by id.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	job, err := h.registry.Get(id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to look up job")
		return
	}

	writeOK(w, map[string]interface{}{"job": job})
}

// ListJobs returns all known jobs, newest first.
func (h *Handlers) ListJobs(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, map[string]interface{}{"items": h.registry.List()})
}

// SyncClip performs the whole download-and-cut pipeline inside the
// request, blocking until the clip exists. Large sources make this
// slow; the async queue is the intended path, this one exists for
// scripting and debugging.
func (h *Handlers) SyncClip(w http.ResponseWriter, r *http.Request) {
	var req ClipRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics.JobsSubmitted.WithLabelValues("sync").Inc()

	start := time.Now()
	source, err := h.resolver.ResolveAndFetch(r.Context(), req.URL)
	if err != nil {
		logging.Error("sync clip download failed: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	// Reserve only once the source exists, so a failed download does
	// not burn a sequence number.
	index := h.store.Reserve()
	filename := jobs.Filename(index, req.Start, req.End)
	output := filepath.Join(h.clipsDir, filename)
	if err := h.clipper.Cut(r.Context(), source, req.Start, req.End, output); err != nil {
		if errors.Is(err, clipper.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logging.Error("sync clip transcode failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logging.Info("sync clip done: %q in %v", filename, time.Since(start).Round(time.Millisecond))
	writeOK(w, map[string]interface{}{
		"file": filename,
		"url":  "/clips/" + filename,
	})
}
