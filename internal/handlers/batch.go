package handlers

import (
	"net/http"
)

// BatchStatus reports the persisted batch counter state.
func (h *Handlers) BatchStatus(w http.ResponseWriter, _ *http.Request) {
	st := h.store.Status()
	writeOK(w, map[string]interface{}{
		"counter":    st.Counter,
		"last_reset": st.LastReset,
	})
}

// BatchResetRequest optionally names an archive folder for the
// outgoing batch.
type BatchResetRequest struct {
	Folder string `json:"folder"`
}

// BatchReset archives the current batch (when a folder is given),
// resets the counter to 1 and purges the source cache.
func (h *Handlers) BatchReset(w http.ResponseWriter, r *http.Request) {
	var req BatchResetRequest
	// An empty body is a plain reset; only reject bodies that exist
	// but do not parse.
	if r.Body != nil && r.ContentLength != 0 {
		if err := h.decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	result := h.catalog.ResetBatch(req.Folder)
	writeOK(w, map[string]interface{}{
		"counter":     result.Counter,
		"tmp_deleted": result.TmpDeleted,
		"archived":    result.Archived,
		"folder":      result.Folder,
	})
}
