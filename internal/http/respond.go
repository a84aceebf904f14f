package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, apiResponse{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Success: false, Error: message})
}

// respondServerError logs the cause and hides it behind a uniform message.
func respondServerError(ctx context.Context, w http.ResponseWriter, err error) {
	slog.ErrorContext(ctx, "Request failed",
		log.FieldComponent, log.ComponentHTTP,
		log.FieldError, err)
	respondError(w, http.StatusInternalServerError, "Server Error")
}

// respondDomainError maps validation and lookup failures to client statuses;
// anything unrecognized is a server error.
func respondDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyCategory):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondServerError(ctx, w, err)
	}
}
