package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"yt-clipper/internal/logging"

	"github.com/go-playground/validator/v10"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeOK writes the payload under the standard success envelope.
// The payload map is augmented with "ok": true.
func writeOK(w http.ResponseWriter, payload map[string]interface{}) {
	writeOKStatus(w, http.StatusOK, payload)
}

// writeOKStatus is writeOK with an explicit status code. Headers must
// be set before WriteHeader, so the status travels through here rather
// than a bare WriteHeader call in the handler.
func writeOKStatus(w http.ResponseWriter, statusCode int, payload map[string]interface{}) {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["ok"] = true
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, payload)
}

// writeError writes a failure envelope with the given status code.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]interface{}{"ok": false, "error": message})
}

// decodeBody parses the request body into dst and runs struct
// validation, returning a client-presentable message on failure.
func (h *Handlers) decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return errors.New(formatValidationErrors(verrs))
		}
		return err
	}
	return nil
}

// formatValidationErrors flattens validator output into one readable
// message, e.g. "url is required; end must be greater than start".
func formatValidationErrors(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "url":
			msgs = append(msgs, field+" must be a valid URL")
		case "gtfield":
			msgs = append(msgs, field+" must be greater than "+strings.ToLower(fe.Param()))
		case "gte":
			msgs = append(msgs, field+" must be at least "+fe.Param())
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
