package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-rotation/internal/club"
	"github.com/mauv0809/padel-rotation/internal/rating"
	"github.com/mauv0809/padel-rotation/internal/roster"
	"github.com/mauv0809/padel-rotation/internal/scheduler"
	"github.com/mauv0809/padel-rotation/internal/session"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, roster.ErrInsufficientPlayers), errors.Is(err, scheduler.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, rating.ErrInvalidResult):
		return http.StatusConflict
	case errors.Is(err, session.ErrNotFound), errors.Is(err, club.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and responds with its mapped status. Internal errors
// are not echoed to the client.
func writeError(w http.ResponseWriter, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error(msg, "error", err)
		http.Error(w, msg, status)
		return
	}
	log.Warn(msg, "error", err, "status", status)
	http.Error(w, msg+": "+err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}
