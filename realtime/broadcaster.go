// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

// Event is the envelope published to session topics.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Broadcaster fans events out to topic subscribers. Delivery is
// fire-and-forget: publishers never block on, retry for, or learn about
// delivery failures.
type Broadcaster interface {
	Publish(topic string, event Event)
}

// SessionTopic is the channel for lifecycle events of one session
// (sessionStarted, timerUpdate, roundTransition, sessionComplete, sessionEnd).
func SessionTopic(sessionID string) string {
	return "session/" + sessionID
}

// VotesTopic carries the raw updated-candidate list after each processed vote.
func VotesTopic(sessionID string) string {
	return SessionTopic(sessionID) + "/votes"
}
