// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/danielhkuo/forkful/models"
	"github.com/danielhkuo/forkful/places"
	"github.com/danielhkuo/forkful/rounds"
	"github.com/danielhkuo/forkful/session"
	"github.com/danielhkuo/forkful/testutil"
	"github.com/danielhkuo/forkful/timer"
)

func newSessionHandler(t *testing.T, conn *sql.DB) (*SessionHandler, *testutil.RecordingBroadcaster, *timer.Service) {
	t.Helper()
	broadcaster := testutil.NewRecordingBroadcaster()
	sessions := session.NewService(conn, broadcaster, places.NewSeededSource(1), 1)
	coordinator := rounds.NewCoordinator(conn, broadcaster)
	timers := timer.NewService(conn, broadcaster, coordinator)
	return NewSessionHandler(conn, sessions, timers), broadcaster, timers
}

func TestCreateSession(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler, _, _ := newSessionHandler(t, conn)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.CreateSessionResponse)
	}{
		{
			name: "valid session creation",
			requestBody: models.CreateSessionRequest{
				CreatorID: "host",
				PoolSize:  6,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.CreateSessionResponse) {
				if resp.SessionID == "" {
					t.Error("Expected non-empty session_id")
				}
				if !regexp.MustCompile(`^\d{6}$`).MatchString(resp.JoinCode) {
					t.Errorf("Join code %q is not 6 digits", resp.JoinCode)
				}

				// Verify session was created in database
				var status string
				err := conn.QueryRow("SELECT status FROM session WHERE id = $1", resp.SessionID).Scan(&status)
				if err != nil {
					t.Fatalf("Failed to query session: %v", err)
				}
				if status != models.StatusOpen {
					t.Errorf("Expected status 'open', got '%s'", status)
				}

				// Verify the candidate pool was seeded
				var count int
				err = conn.QueryRow(`
					SELECT COUNT(*) FROM session_restaurant WHERE session_id = $1 AND round = 1
				`, resp.SessionID).Scan(&count)
				if err != nil {
					t.Fatalf("Failed to count restaurants: %v", err)
				}
				if count != 6 {
					t.Errorf("Expected 6 seeded restaurants, got %d", count)
				}
			},
		},
		{
			name: "missing creator_id",
			requestBody: models.CreateSessionRequest{
				PoolSize: 6,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing pool_size",
			requestBody: models.CreateSessionRequest{
				CreatorID: "host",
			},
			expectedStatus: http.StatusBadRequest,
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
			var err error

			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatalf("Failed to marshal request body: %v", err)
				}
			}

			req := httptest.NewRequest("POST", "/sessions", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.CreateSession(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Status = %d, want %d. Body: %s", w.Code, tt.expectedStatus, w.Body.String())
			}

			if tt.checkResponse != nil {
				var resp models.CreateSessionResponse
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler, _, _ := newSessionHandler(t, conn)

	sessionID, _ := testutil.CreateTestSession(t, conn, models.StatusRound1, 1, 3)

	expiredID, _ := testutil.CreateTestSession(t, conn, models.StatusRound1, 1, 3)
	_, err := conn.Exec(`
		UPDATE session SET expires_at = $1 WHERE id = $2
	`, time.Now().Add(-time.Minute), expiredID)
	if err != nil {
		t.Fatalf("Failed to backdate session: %v", err)
	}

	tests := []struct {
		name           string
		sessionID      string
		query          string
		expectedStatus int
	}{
		{"existing session", sessionID, "", http.StatusOK},
		{"auto-join via user_id", sessionID, "?user_id=friend", http.StatusOK},
		{"unknown session", "nope", "", http.StatusNotFound},
		{"expired session", expiredID, "", http.StatusGone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/sessions/"+tt.sessionID+tt.query, nil)
			req.SetPathValue("id", tt.sessionID)
			w := httptest.NewRecorder()

			handler.GetSession(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Status = %d, want %d. Body: %s", w.Code, tt.expectedStatus, w.Body.String())
			}
		})
	}

	// The user_id query parameter registered the caller as a participant.
	var joined bool
	err = conn.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM session_participant WHERE session_id = $1 AND user_id = 'friend')
	`, sessionID).Scan(&joined)
	if err != nil {
		t.Fatalf("Failed to query participant: %v", err)
	}
	if !joined {
		t.Error("Expected user to be auto-joined")
	}
}

func TestJoinSession(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler, _, _ := newSessionHandler(t, conn)

	sessionID, joinCode := testutil.CreateTestSession(t, conn, models.StatusOpen, 1, 3)

	tests := []struct {
		name           string
		requestBody    models.JoinSessionRequest
		expectedStatus int
	}{
		{
			name:           "valid join",
			requestBody:    models.JoinSessionRequest{JoinCode: joinCode, UserID: "friend"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing join_code",
			requestBody:    models.JoinSessionRequest{UserID: "friend"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing user_id",
			requestBody:    models.JoinSessionRequest{JoinCode: joinCode},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "wrong code",
			requestBody:    models.JoinSessionRequest{JoinCode: "999999", UserID: "friend"},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.requestBody)
			req := httptest.NewRequest("POST", "/sessions/join", bytes.NewReader(body))
			w := httptest.NewRecorder()

			handler.JoinSession(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Status = %d, want %d. Body: %s", w.Code, tt.expectedStatus, w.Body.String())
			}

			if tt.expectedStatus == http.StatusOK {
				var resp models.JoinSessionResponse
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if resp.SessionID != sessionID {
					t.Errorf("SessionID = %q, want %q", resp.SessionID, sessionID)
				}
			}
		})
	}
}

func TestStartSession(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler, broadcaster, timers := newSessionHandler(t, conn)
	timers.TickInterval = 10 * time.Millisecond

	sessionID, _ := testutil.CreateTestSession(t, conn, models.StatusOpen, 1, 3)

	req := httptest.NewRequest("POST", "/sessions/"+sessionID+"/start", nil)
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()
	handler.StartSession(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d. Body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var status string
	if err := conn.QueryRow("SELECT status FROM session WHERE id = $1", sessionID).Scan(&status); err != nil {
		t.Fatalf("Failed to query session: %v", err)
	}
	if status != models.StatusRound1 {
		t.Errorf("Expected status 'round1', got '%s'", status)
	}
	if timers.ActiveTimers() != 1 {
		t.Errorf("Expected 1 active timer, got %d", timers.ActiveTimers())
	}
	if len(broadcaster.EventsOfType("sessionStarted")) != 1 {
		t.Error("Expected a sessionStarted broadcast")
	}

	// Starting a running session is a conflict.
	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/sessions/"+sessionID+"/start", nil)
	req.SetPathValue("id", sessionID)
	handler.StartSession(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusConflict)
	}

	// Unknown session.
	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/sessions/nope/start", nil)
	req.SetPathValue("id", "nope")
	handler.StartSession(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestEndSession(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler, broadcaster, _ := newSessionHandler(t, conn)

	sessionID, _ := testutil.CreateTestSession(t, conn, models.StatusRound1, 1, 3)
	testutil.AddTestCandidate(t, conn, sessionID, "rest-1", "Thai Palace", 1, 2, 0)

	body := bytes.NewReader([]byte(`{"reason":"dinner plans changed"}`))
	req := httptest.NewRequest("POST", "/sessions/"+sessionID+"/end", body)
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()
	handler.EndSession(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d. Body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var status string
	if err := conn.QueryRow("SELECT status FROM session WHERE id = $1", sessionID).Scan(&status); err != nil {
		t.Fatalf("Failed to query session: %v", err)
	}
	if status != models.StatusEnded {
		t.Errorf("Expected status 'ended', got '%s'", status)
	}
	if len(broadcaster.EventsOfType("sessionEnd")) != 1 {
		t.Error("Expected a sessionEnd broadcast")
	}
}

func TestRestaurants(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler, _, _ := newSessionHandler(t, conn)

	sessionID, _ := testutil.CreateTestSession(t, conn, models.StatusRound2, 2, 3)
	testutil.AddTestCandidate(t, conn, sessionID, "rest-1", "Thai Palace", 1, 5, 0)
	testutil.AddTestCandidate(t, conn, sessionID, "rest-2", "Sushi Go", 1, 2, 1)
	testutil.AddTestCandidate(t, conn, sessionID, "rest-1", "Thai Palace", 2, 0, 0)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedCount  int
	}{
		{"current round default", "", http.StatusOK, 1},
		{"explicit round 1", "?round=1", http.StatusOK, 2},
		{"explicit round 2", "?round=2", http.StatusOK, 1},
		{"invalid round", "?round=7", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/sessions/"+sessionID+"/restaurants"+tt.query, nil)
			req.SetPathValue("id", sessionID)
			w := httptest.NewRecorder()

			handler.Restaurants(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Status = %d, want %d. Body: %s", w.Code, tt.expectedStatus, w.Body.String())
			}
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp struct {
				Restaurants []models.Candidate `json:"restaurants"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if len(resp.Restaurants) != tt.expectedCount {
				t.Errorf("Got %d restaurants, want %d", len(resp.Restaurants), tt.expectedCount)
			}
		})
	}
}

func TestParticipantsAndWinner(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler, _, _ := newSessionHandler(t, conn)

	sessionID, _ := testutil.CreateTestSession(t, conn, models.StatusRound1, 1, 3)
	testutil.AddTestParticipant(t, conn, sessionID, "alice")
	testutil.AddTestParticipant(t, conn, sessionID, "bob")
	testutil.AddTestCandidate(t, conn, sessionID, "rest-1", "Thai Palace", 1, 9, 0)
	testutil.AddTestCandidate(t, conn, sessionID, "rest-2", "Sushi Go", 1, 1, 1)

	req := httptest.NewRequest("GET", "/sessions/"+sessionID+"/participants", nil)
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()
	handler.Participants(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}
	var participantsResp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &participantsResp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if participantsResp.Count != 2 {
		t.Errorf("Count = %d, want 2", participantsResp.Count)
	}

	req = httptest.NewRequest("GET", "/sessions/"+sessionID+"/winner", nil)
	req.SetPathValue("id", sessionID)
	w = httptest.NewRecorder()
	handler.Winner(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}
	var winnerResp struct {
		Winner models.Candidate `json:"winner"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &winnerResp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if winnerResp.Winner.ProviderID != "rest-1" {
		t.Errorf("Winner = %q, want rest-1", winnerResp.Winner.ProviderID)
	}
}
