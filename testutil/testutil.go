// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/forkful/cliparse"
	"github.com/danielhkuo/forkful/db"
	"github.com/danielhkuo/forkful/ident"
	"github.com/danielhkuo/forkful/realtime"
)

// SetupTestDB creates a fresh sqlite database in a per-test temp directory
// with the full schema. A single connection serializes concurrent test
// writers the same way the production postgres deployment serializes via
// row locks, without tripping sqlite's busy errors.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", filepath.Join(t.TempDir(), "forkful_test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                   3414,
		DatabaseType:           "sqlite",
		CleanupIntervalMinutes: 30,
		InactiveTimeoutMinutes: 30,
		MaxDurationHours:       1,
	}
}

// CreateTestSession inserts a session row and returns its ID and join code.
// status should be one of the models.Status* constants.
func CreateTestSession(t *testing.T, conn *sql.DB, status string, round, likesPerUser int) (sessionID, joinCode string) {
	t.Helper()

	sessionID = ident.NewID()
	joinCode, err := ident.NewJoinCode()
	if err != nil {
		t.Fatalf("Failed to generate join code: %v", err)
	}

	now := time.Now()
	_, err = conn.Exec(`
		INSERT INTO session (id, join_code, creator_id, pool_size, round_time, likes_per_user,
		                     round, status, created_at, last_activity_at, expires_at)
		VALUES ($1, $2, 'test-creator', 10, 5, $3, $4, $5, $6, $7, $8)
	`, sessionID, joinCode, likesPerUser, round, status, now, now, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return sessionID, joinCode
}

// AddTestCandidate inserts a restaurant row for a round and returns its ID.
func AddTestCandidate(t *testing.T, conn *sql.DB, sessionID, providerID, name string, round, likeCount, order int) string {
	t.Helper()

	id := ident.NewID()
	_, err := conn.Exec(`
		INSERT INTO session_restaurant (id, session_id, provider_id, name, round, like_count, pool_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, sessionID, providerID, name, round, likeCount, order)
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return id
}

// AddTestParticipant registers a user in a session.
func AddTestParticipant(t *testing.T, conn *sql.DB, sessionID, userID string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO session_participant (id, session_id, user_id, joined_at)
		VALUES ($1, $2, $3, $4)
	`, ident.NewID(), sessionID, userID, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test participant: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks the response status code
func AssertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("Status = %d, want %d. Body: %s", rec.Code, want, rec.Body.String())
	}
}

// DecodeJSON unmarshals the response body into v
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response JSON: %v. Body: %s", err, rec.Body.String())
	}
}

// PublishedEvent is one captured broadcast.
type PublishedEvent struct {
	Topic string
	Event realtime.Event
}

// RecordingBroadcaster implements realtime.Broadcaster by capturing events
// for assertions. Safe for concurrent publishers.
type RecordingBroadcaster struct {
	mu     sync.Mutex
	events []PublishedEvent
}

func NewRecordingBroadcaster() *RecordingBroadcaster {
	return &RecordingBroadcaster{}
}

func (b *RecordingBroadcaster) Publish(topic string, event realtime.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, PublishedEvent{Topic: topic, Event: event})
}

// Events returns a snapshot of everything published so far.
func (b *RecordingBroadcaster) Events() []PublishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]PublishedEvent, len(b.events))
	copy(out, b.events)
	return out
}

// EventsOfType filters the captured events by type.
func (b *RecordingBroadcaster) EventsOfType(eventType string) []PublishedEvent {
	var out []PublishedEvent
	for _, e := range b.Events() {
		if e.Event.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
