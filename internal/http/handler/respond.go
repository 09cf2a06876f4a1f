package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"flowtrack/internal/auth"
	"flowtrack/internal/logger"
	"flowtrack/internal/todo"
	"flowtrack/internal/tracker"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// writeError maps domain errors to a status. Anything unrecognized is a
// storage failure: logged in full, reported as "server error".
func writeError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, tracker.ErrInvalidInput),
		errors.Is(err, todo.ErrInvalidInput),
		errors.Is(err, auth.ErrInvalidInput):
		writeMsg(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, tracker.ErrNotFound), errors.Is(err, todo.ErrNotFound):
		writeMsg(w, http.StatusNotFound, "not found")
	case errors.Is(err, tracker.ErrConflict), errors.Is(err, auth.ErrConflict):
		writeMsg(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeMsg(w, http.StatusUnauthorized, "invalid credentials")
	default:
		if log != nil {
			log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		}
		writeMsg(w, http.StatusInternalServerError, "server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMsg(w, http.StatusBadRequest, "bad json")
		return false
	}
	return true
}

func parseID(raw string) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// urlID reads the {id} route param, writing 400 when it is malformed.
func urlID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeMsg(w, http.StatusBadRequest, "invalid id")
	}
	return id, ok
}
