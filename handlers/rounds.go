// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/forkful/middleware"
	"github.com/danielhkuo/forkful/rounds"
	"github.com/danielhkuo/forkful/timer"
)

type RoundHandler struct {
	coordinator *rounds.Coordinator
	timers      *timer.Service
}

func NewRoundHandler(coordinator *rounds.Coordinator, timers *timer.Service) *RoundHandler {
	return &RoundHandler{coordinator: coordinator, timers: timers}
}

// RoundStatus handles GET /sessions/:id/round
func (h *RoundHandler) RoundStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	status, err := h.coordinator.RoundStatus(sessionID)
	if errors.Is(err, rounds.ErrSessionNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to read round status", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, status)
}

// Results handles GET /sessions/:id/results
func (h *RoundHandler) Results(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	results, err := h.coordinator.Results(sessionID)
	if errors.Is(err, rounds.ErrSessionNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to compute results", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"results":    results,
	})
}

// TransitionRound handles POST /sessions/:id/round/transition
// Host-triggered promotion into round 2, same code path the timer takes.
func (h *RoundHandler) TransitionRound(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	err := h.coordinator.TransitionToRound2(sessionID)
	if errors.Is(err, rounds.ErrSessionNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if errors.Is(err, rounds.ErrInvalidTransition) {
		middleware.ErrorResponseCode(w, http.StatusConflict, "invalid_transition", err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to transition round", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to transition round")
		return
	}

	// Arm the round-2 countdown, same as a timer-driven transition would.
	// The single-flight claim makes this safe if one is already running.
	h.timers.StartRoundTimer(sessionID, 2, 0)

	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"round":      2,
	})
}

// CompleteSession handles POST /sessions/:id/round/complete
func (h *RoundHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	err := h.coordinator.CompleteSession(sessionID)
	if errors.Is(err, rounds.ErrSessionNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if errors.Is(err, rounds.ErrInvalidTransition) {
		middleware.ErrorResponseCode(w, http.StatusConflict, "invalid_transition", err.Error())
		return
	}
	if errors.Is(err, rounds.ErrNoCandidates) {
		middleware.ErrorResponseCode(w, http.StatusConflict, "no_candidates", err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to complete session", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to complete session")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"completed":  true,
	})
}
