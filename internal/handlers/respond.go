package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	templpkg "github.com/a-h/templ"

	"brigade/internal/costing"
	applog "brigade/internal/log"
	"brigade/internal/scheduler"
	"brigade/internal/store"
)

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" || r.Header.Get("HX-Boosted") == "true"
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func renderComponent(w http.ResponseWriter, r *http.Request, component templpkg.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render component", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrNoDatabase), errors.Is(err, scheduler.ErrNoFetcher):
		return http.StatusServiceUnavailable
	case errors.Is(err, costing.ErrInvalidYield),
		errors.Is(err, costing.ErrInvalidPortions),
		errors.Is(err, costing.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		applog.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeJSONError(w, status, "internal error")
		return
	}
	applog.Debug(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "error", err)
	writeJSONError(w, status, err.Error())
}

// resourcePath splits "/prefix/{id}/{action}" into the id and action.
func resourcePath(path, prefix string) (uint, string, bool) {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return 0, "", false
	}
	segments := strings.Split(rest, "/")
	id, err := strconv.ParseUint(segments[0], 10, 64)
	if err != nil || id == 0 {
		return 0, "", false
	}
	action := ""
	if len(segments) > 1 {
		action = strings.Join(segments[1:], "/")
	}
	return uint(id), action, true
}
