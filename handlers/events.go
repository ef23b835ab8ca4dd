// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/forkful/middleware"
	"github.com/danielhkuo/forkful/realtime"
)

type EventsHandler struct {
	db  *sql.DB
	hub *realtime.Hub
}

func NewEventsHandler(db *sql.DB, hub *realtime.Hub) *EventsHandler {
	return &EventsHandler{db: db, hub: hub}
}

// Subscribe handles GET /sessions/:id/events
// Upgrades to a websocket subscribed to both the session topic (lifecycle,
// timer, round events) and the votes topic (live standings).
func (h *EventsHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var exists bool
	err := h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM session WHERE id = $1)
	`, sessionID).Scan(&exists)
	if err != nil {
		slog.Error("failed to check session", "session_id", sessionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}

	h.hub.ServeWS(w, r,
		realtime.SessionTopic(sessionID),
		realtime.VotesTopic(sessionID),
	)
}
