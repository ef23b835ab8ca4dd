// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/forkful/middleware"
	"github.com/danielhkuo/forkful/models"
	"github.com/danielhkuo/forkful/vote"
)

type VoteHandler struct {
	votes *vote.Processor
}

func NewVoteHandler(votes *vote.Processor) *VoteHandler {
	return &VoteHandler{votes: votes}
}

// SubmitVote handles POST /votes
//
// Conflict responses carry a machine-readable code so clients can tell quota
// exhaustion from a duplicate vote from a closed session.
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.SessionID == "" || req.UserID == "" || req.ProviderID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id, user_id and provider_id are required")
		return
	}

	err := h.votes.ProcessVote(req)
	switch {
	case err == nil:
	case errors.Is(err, vote.ErrInvalidVoteType):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, vote.ErrSessionNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	case errors.Is(err, vote.ErrCandidateNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Restaurant not found in current round")
		return
	case errors.Is(err, vote.ErrQuotaExceeded):
		middleware.ErrorResponseCode(w, http.StatusConflict, "quota_exceeded", err.Error())
		return
	case errors.Is(err, vote.ErrDuplicateVote):
		middleware.ErrorResponseCode(w, http.StatusConflict, "duplicate_vote", err.Error())
		return
	case errors.Is(err, vote.ErrSessionClosed):
		middleware.ErrorResponseCode(w, http.StatusConflict, "session_closed", err.Error())
		return
	default:
		slog.Error("failed to process vote",
			"session_id", req.SessionID, "user_id", req.UserID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to process vote")
		return
	}

	remaining, err := h.votes.RemainingVotes(req.SessionID, req.UserID)
	if err != nil {
		// The vote committed; report it even if the follow-up read failed.
		slog.Warn("failed to read remaining votes after vote",
			"session_id", req.SessionID, "user_id", req.UserID, "error", err)
		middleware.JSONResponse(w, http.StatusOK, map[string]any{"accepted": true})
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"accepted":  true,
		"remaining": remaining,
	})
}

// RemainingVotes handles GET /sessions/:id/votes/remaining
func (h *VoteHandler) RemainingVotes(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	remaining, err := h.votes.RemainingVotes(sessionID, userID)
	if errors.Is(err, vote.ErrSessionNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to read remaining votes",
			"session_id", sessionID, "user_id", userID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.RemainingVotesResponse{
		SessionID: sessionID,
		UserID:    userID,
		Remaining: remaining,
	})
}

// ResetVotes handles DELETE /sessions/:id/votes/:userId
func (h *VoteHandler) ResetVotes(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	userID := r.PathValue("userId")

	if err := h.votes.ResetUserVotes(sessionID, userID); err != nil {
		slog.Error("failed to reset votes",
			"session_id", sessionID, "user_id", userID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset votes")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"user_id":    userID,
		"reset":      true,
	})
}
