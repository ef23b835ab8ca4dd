// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/forkful/middleware"
	"github.com/danielhkuo/forkful/models"
	"github.com/danielhkuo/forkful/pool"
	"github.com/danielhkuo/forkful/session"
	"github.com/danielhkuo/forkful/timer"
)

type SessionHandler struct {
	db       *sql.DB
	sessions *session.Service
	timers   *timer.Service
}

func NewSessionHandler(db *sql.DB, sessions *session.Service, timers *timer.Service) *SessionHandler {
	return &SessionHandler{db: db, sessions: sessions, timers: timers}
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	sess, err := h.sessions.Create(r.Context(), req)
	if errors.Is(err, session.ErrMissingFields) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to create session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		SessionID: sess.ID,
		JoinCode:  sess.JoinCode,
	})
}

// GetSession handles GET /sessions/:id
// A user_id query parameter joins the caller as a participant.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	userID := r.URL.Query().Get("user_id")

	sess, err := h.sessions.Get(sessionID, userID)
	if errors.Is(err, session.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if errors.Is(err, session.ErrExpired) {
		middleware.ErrorResponseCode(w, http.StatusGone, "session_expired", "Session has expired")
		return
	}
	if err != nil {
		slog.Error("failed to get session", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, sess)
}

// JoinSession handles POST /sessions/join
func (h *SessionHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	var req models.JoinSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.JoinCode == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "join_code is required")
		return
	}
	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	sess, err := h.sessions.JoinByCode(req.JoinCode, req.UserID)
	if errors.Is(err, session.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Invalid join code")
		return
	}
	if errors.Is(err, session.ErrExpired) {
		middleware.ErrorResponseCode(w, http.StatusGone, "session_expired", "Session has expired")
		return
	}
	if err != nil {
		slog.Error("failed to join session", "join_code", req.JoinCode, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.JoinSessionResponse{
		SessionID: sess.ID,
		Status:    sess.Status,
		Round:     sess.Round,
	})
}

// StartSession handles POST /sessions/:id/start
// Starting flips the session into round 1 and arms the round-1 countdown.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	err := h.sessions.Start(sessionID)
	if errors.Is(err, session.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if errors.Is(err, session.ErrInvalidState) {
		middleware.ErrorResponseCode(w, http.StatusConflict, "invalid_transition", err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to start session", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	h.timers.StartRoundTimer(sessionID, 1, 0)

	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"status":     models.StatusRound1,
	})
}

// EndSession handles POST /sessions/:id/end
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	// Body is optional; an empty reason gets a default.
	var req struct {
		Reason string `json:"reason"`
	}
	_ = middleware.ParseJSONBody(r, &req)

	err := h.sessions.End(sessionID, req.Reason)
	if errors.Is(err, session.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to end session", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to end session")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"status":     models.StatusEnded,
	})
}

// Participants handles GET /sessions/:id/participants
func (h *SessionHandler) Participants(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	if !h.sessionExists(w, sessionID) {
		return
	}

	participants, err := h.sessions.Participants(sessionID)
	if err != nil {
		slog.Error("failed to list participants", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"session_id":   sessionID,
		"participants": participants,
		"count":        len(participants),
	})
}

// Restaurants handles GET /sessions/:id/restaurants
// Defaults to the session's current round; ?round=N overrides.
func (h *SessionHandler) Restaurants(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var currentRound int
	err := h.db.QueryRow(`SELECT round FROM session WHERE id = $1`, sessionID).Scan(&currentRound)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	round := currentRound
	if raw := r.URL.Query().Get("round"); raw != "" {
		round, err = strconv.Atoi(raw)
		if err != nil || round < 1 || round > 2 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "round must be 1 or 2")
			return
		}
	}

	candidates, err := pool.ForRound(h.db, sessionID, round)
	if err != nil {
		slog.Error("failed to load restaurants", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"session_id":  sessionID,
		"round":       round,
		"restaurants": candidates,
	})
}

// Winner handles GET /sessions/:id/winner
func (h *SessionHandler) Winner(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	if !h.sessionExists(w, sessionID) {
		return
	}

	winner, err := h.sessions.Winner(sessionID)
	if errors.Is(err, pool.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No restaurants in session")
		return
	}
	if err != nil {
		slog.Error("failed to compute winner", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"winner":     winner,
	})
}

func (h *SessionHandler) sessionExists(w http.ResponseWriter, sessionID string) bool {
	var exists bool
	err := h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM session WHERE id = $1)
	`, sessionID).Scan(&exists)
	if err != nil {
		slog.Error("failed to check session", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return false
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return false
	}
	return true
}
