package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"yt-clipper/internal/logging"

	"github.com/gorilla/mux"
)

// ListFiles returns the clips belonging to the current batch.
func (h *Handlers) ListFiles(w http.ResponseWriter, _ *http.Request) {
	items, err := h.catalog.ListCurrentBatch()
	if err != nil {
		logging.Error("failed to list clips: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list clips")
		return
	}
	writeOK(w, map[string]interface{}{"items": items})
}

// ServeClip streams one finished clip. Only bare filenames inside the
// clips directory are served; anything with path separators or
// traversal components is rejected.
func (h *Handlers) ServeClip(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		writeError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	fullPath := filepath.Join(h.clipsDir, filename)
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		logging.Error("failed to stat clip %s: %v", filename, err)
		writeError(w, http.StatusInternalServerError, "failed to access file")
		return
	}
	if info.IsDir() {
		writeError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	// Play in the browser rather than downloading; ServeFile handles
	// Range requests for seeking.
	w.Header().Set("Content-Disposition", `inline; filename="`+filename+`"`)
	http.ServeFile(w, r, fullPath)
}
