package handlers

import (
	"net/http"

	"yt-clipper/internal/logging"
)

// ProbeRequest names the source to inspect.
type ProbeRequest struct {
	URL string `json:"url" validate:"required"`
}

// Probe returns source metadata without downloading anything.
func (h *Handlers) Probe(w http.ResponseWriter, r *http.Request) {
	var req ProbeRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	meta, err := h.resolver.Probe(r.Context(), req.URL)
	if err != nil {
		logging.Error("probe failed for %s: %v", req.URL, err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeOK(w, map[string]interface{}{
		"id":          meta.ID,
		"title":       meta.Title,
		"uploader":    meta.Uploader,
		"duration":    meta.Duration,
		"thumbnail":   meta.Thumbnail,
		"is_vertical": meta.IsVertical,
		"chapters":    meta.Chapters,
	})
}
