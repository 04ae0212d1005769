// Package server implements the HTTP API over the parser, the statistics
// engine, storage and the AI layer.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/chatscope-app/chatscope/internal/ai"
	"github.com/chatscope-app/chatscope/internal/config"
	"github.com/chatscope-app/chatscope/internal/database"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	cfg     *config.Config
	store   database.Store
	session *Session
	ai      ai.Client // nil when the AI layer is not configured
	log     *slog.Logger
}

// NewHandler creates a new Handler with the given dependencies. The AI client
// may be nil; the ask endpoint then reports the feature as unavailable.
func NewHandler(cfg *config.Config, store database.Store, session *Session, aiClient ai.Client, log *slog.Logger) *Handler {
	return &Handler{
		cfg:     cfg,
		store:   store,
		session: session,
		ai:      aiClient,
		log:     log.With("component", "server"),
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}
