package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/powershield/shield/internal/model"
	"github.com/powershield/shield/internal/store"
)

// writeJSON serializes v as JSON and writes it to the response with the
// given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeData writes a successful envelope with an optional message.
func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, model.Response{Success: true, Message: message, Data: data})
}

// writeError writes a failure envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.Response{Success: false, Message: message})
}

// writeValidationError writes a 400 envelope carrying per-field problems.
func writeValidationError(w http.ResponseWriter, errs map[string]string) {
	writeJSON(w, http.StatusBadRequest, model.Response{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// writeStoreError translates store sentinels into client responses and
// hides everything else behind a generic 500, logging the detail
// server-side only. Handlers that want a resource-specific conflict
// message intercept ErrDuplicate before calling this.
func writeStoreError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, store.ErrDuplicate):
		writeError(w, http.StatusConflict, "A record with the same unique value already exists")
	default:
		logger.Error("storage failure", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// readJSON decodes the request body as JSON into v. The body is closed
// after decoding regardless of success or failure.
func readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// queryInt reads an integer query parameter, falling back to defaultVal
// when the parameter is absent or not a number.
func queryInt(values url.Values, key string, defaultVal int) int {
	val := values.Get(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
