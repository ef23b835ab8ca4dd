// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/forkful/models"
	"github.com/danielhkuo/forkful/testutil"
	"github.com/danielhkuo/forkful/vote"
)

func TestSubmitVote(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewVoteHandler(vote.NewProcessor(conn, testutil.NewRecordingBroadcaster()))

	sessionID, _ := testutil.CreateTestSession(t, conn, models.StatusRound1, 1, 1)
	testutil.AddTestCandidate(t, conn, sessionID, "rest-1", "Thai Palace", 1, 0, 0)
	testutil.AddTestCandidate(t, conn, sessionID, "rest-2", "Sushi Go", 1, 0, 1)
	closedID, _ := testutil.CreateTestSession(t, conn, models.StatusCompleted, 2, 1)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "valid like",
			requestBody: models.VoteRequest{
				SessionID: sessionID, UserID: "alice", ProviderID: "rest-1", VoteType: models.VoteLike,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "duplicate vote",
			requestBody: models.VoteRequest{
				SessionID: sessionID, UserID: "alice", ProviderID: "rest-1", VoteType: models.VoteLike,
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "duplicate_vote",
		},
		{
			name: "quota exceeded",
			requestBody: models.VoteRequest{
				SessionID: sessionID, UserID: "alice", ProviderID: "rest-2", VoteType: models.VoteLike,
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "quota_exceeded",
		},
		{
			name: "dislike still allowed after quota",
			requestBody: models.VoteRequest{
				SessionID: sessionID, UserID: "alice", ProviderID: "rest-2", VoteType: models.VoteDislike,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "invalid vote type",
			requestBody: models.VoteRequest{
				SessionID: sessionID, UserID: "alice", ProviderID: "rest-1", VoteType: "MAYBE",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing fields",
			requestBody: models.VoteRequest{
				UserID: "alice", VoteType: models.VoteLike,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown session",
			requestBody: models.VoteRequest{
				SessionID: "nope", UserID: "alice", ProviderID: "rest-1", VoteType: models.VoteLike,
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "unknown restaurant",
			requestBody: models.VoteRequest{
				SessionID: sessionID, UserID: "bob", ProviderID: "rest-404", VoteType: models.VoteLike,
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "closed session",
			requestBody: models.VoteRequest{
				SessionID: closedID, UserID: "alice", ProviderID: "rest-1", VoteType: models.VoteLike,
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "session_closed",
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, _ = json.Marshal(tt.requestBody)
			}

			req := httptest.NewRequest("POST", "/votes", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.SubmitVote(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Status = %d, want %d. Body: %s", w.Code, tt.expectedStatus, w.Body.String())
			}

			if tt.expectedCode != "" {
				var resp models.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("Failed to decode error response: %v", err)
				}
				if resp.Code != tt.expectedCode {
					t.Errorf("Error code = %q, want %q", resp.Code, tt.expectedCode)
				}
			}
		})
	}
}

func TestRemainingVotes(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	processor := vote.NewProcessor(conn, testutil.NewRecordingBroadcaster())
	handler := NewVoteHandler(processor)

	sessionID, _ := testutil.CreateTestSession(t, conn, models.StatusRound1, 1, 3)
	testutil.AddTestCandidate(t, conn, sessionID, "rest-1", "Thai Palace", 1, 0, 0)

	if err := processor.ProcessVote(models.VoteRequest{
		SessionID: sessionID, UserID: "alice", ProviderID: "rest-1", VoteType: models.VoteLike,
	}); err != nil {
		t.Fatalf("Failed to seed vote: %v", err)
	}

	tests := []struct {
		name           string
		sessionID      string
		query          string
		expectedStatus int
		expectedLeft   int
	}{
		{"after one like", sessionID, "?user_id=alice", http.StatusOK, 2},
		{"fresh user", sessionID, "?user_id=bob", http.StatusOK, 3},
		{"missing user_id", sessionID, "", http.StatusBadRequest, 0},
		{"unknown session", "nope", "?user_id=alice", http.StatusNotFound, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("/sessions/%s/votes/remaining%s", tt.sessionID, tt.query)
			req := httptest.NewRequest("GET", path, nil)
			req.SetPathValue("id", tt.sessionID)
			w := httptest.NewRecorder()

			handler.RemainingVotes(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Status = %d, want %d. Body: %s", w.Code, tt.expectedStatus, w.Body.String())
			}
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp models.RemainingVotesResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Remaining != tt.expectedLeft {
				t.Errorf("Remaining = %d, want %d", resp.Remaining, tt.expectedLeft)
			}
		})
	}
}

func TestResetVotes(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	processor := vote.NewProcessor(conn, testutil.NewRecordingBroadcaster())
	handler := NewVoteHandler(processor)

	sessionID, _ := testutil.CreateTestSession(t, conn, models.StatusRound1, 1, 1)
	testutil.AddTestCandidate(t, conn, sessionID, "rest-1", "Thai Palace", 1, 0, 0)

	if err := processor.ProcessVote(models.VoteRequest{
		SessionID: sessionID, UserID: "alice", ProviderID: "rest-1", VoteType: models.VoteLike,
	}); err != nil {
		t.Fatalf("Failed to seed vote: %v", err)
	}

	req := httptest.NewRequest("DELETE", "/sessions/"+sessionID+"/votes/alice", nil)
	req.SetPathValue("id", sessionID)
	req.SetPathValue("userId", "alice")
	w := httptest.NewRecorder()
	handler.ResetVotes(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d. Body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var count int
	if err := conn.QueryRow(`
		SELECT COUNT(*) FROM session_vote_history WHERE session_id = $1 AND user_id = 'alice'
	`, sessionID).Scan(&count); err != nil {
		t.Fatalf("Failed to count history: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty vote history, got %d rows", count)
	}
}
