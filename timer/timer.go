// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package timer

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/forkful/models"
	"github.com/danielhkuo/forkful/realtime"
	"github.com/danielhkuo/forkful/rounds"
)

// DefaultTickInterval is how often timerUpdate events are published.
const DefaultTickInterval = time.Second

// RoundAdvancer is what the timer invokes on expiry. Satisfied by
// *rounds.Coordinator; tests substitute a fake.
type RoundAdvancer interface {
	TransitionToRound2(sessionID string) error
	CompleteSession(sessionID string) error
}

// Service runs one countdown goroutine per active (session, round). The
// active-set claim is the single-flight guarantee: a second start for the
// same key is dropped, not queued, so a host double-click or reconnect
// resend can never spawn parallel timers racing to fire the transition.
type Service struct {
	db          *sql.DB
	broadcaster realtime.Broadcaster
	advancer    RoundAdvancer

	// TickInterval is overridable so tests can run countdowns at
	// millisecond speed.
	TickInterval time.Duration

	mu     sync.Mutex
	active map[string]struct{}
}

func NewService(db *sql.DB, broadcaster realtime.Broadcaster, advancer RoundAdvancer) *Service {
	return &Service{
		db:           db,
		broadcaster:  broadcaster,
		advancer:     advancer,
		TickInterval: DefaultTickInterval,
		active:       make(map[string]struct{}),
	}
}

// StartRoundTimer begins the countdown for (sessionID, round) in the
// background and reports whether a new timer was started. A timer already
// running for the key makes this a no-op. overrideMillis, when positive,
// replaces the session's configured round duration.
func (s *Service) StartRoundTimer(sessionID string, round int, overrideMillis int64) bool {
	key := timerKey(sessionID, round)
	if !s.claim(key) {
		slog.Warn("timer already running, skipping duplicate",
			"session_id", sessionID, "round", round)
		return false
	}

	go s.run(key, sessionID, round, overrideMillis)
	return true
}

// ActiveTimers reports how many countdowns are currently running.
func (s *Service) ActiveTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

func (s *Service) run(key, sessionID string, round int, overrideMillis int64) {
	// Release in a defer so a panic or early return mid-loop can never leave
	// a stale claim blocking future restarts.
	defer s.release(key)

	durationMillis := overrideMillis
	if durationMillis <= 0 {
		var roundTime int
		err := s.db.QueryRow(`SELECT round_time FROM session WHERE id = $1`, sessionID).Scan(&roundTime)
		if err == sql.ErrNoRows {
			slog.Error("session not found for timer", "session_id", sessionID)
			return
		}
		if err != nil {
			slog.Error("failed to load session for timer", "session_id", sessionID, "error", err)
			return
		}
		if roundTime <= 0 {
			roundTime = models.DefaultRoundTimeMinutes
		}
		durationMillis = int64(roundTime) * 60_000
	}

	slog.Info("round timer started",
		"session_id", sessionID, "round", round, "duration_ms", durationMillis)

	tickMillis := s.TickInterval.Milliseconds()
	millisLeft := durationMillis
	for millisLeft > 0 {
		s.publishTick(sessionID, millisLeft)
		time.Sleep(s.TickInterval)
		millisLeft -= tickMillis
	}
	s.publishTick(sessionID, 0)

	s.expire(sessionID, round)
}

// expire hands the round boundary to the coordinator. The timer owns no
// ranking logic of its own: the coordinator's transition is the single code
// path for top-K promotion, whether triggered by timer or host.
func (s *Service) expire(sessionID string, round int) {
	var err error
	switch round {
	case 1:
		err = s.advancer.TransitionToRound2(sessionID)
		if err == nil {
			// Unattended sessions run to completion: round 2 gets its own
			// countdown using the session's configured duration.
			s.StartRoundTimer(sessionID, 2, 0)
		}
	case 2:
		err = s.advancer.CompleteSession(sessionID)
	default:
		slog.Error("timer expired for unknown round", "session_id", sessionID, "round", round)
		return
	}

	switch {
	case err == nil:
	case errors.Is(err, rounds.ErrInvalidTransition):
		// The host advanced the round manually while we were counting down.
		slog.Debug("round already advanced before timer expiry",
			"session_id", sessionID, "round", round)
	case errors.Is(err, rounds.ErrSessionNotFound):
		slog.Warn("session vanished before timer expiry", "session_id", sessionID)
	default:
		slog.Error("round transition at timer expiry failed",
			"session_id", sessionID, "round", round, "error", err)
	}
}

func (s *Service) publishTick(sessionID string, millisLeft int64) {
	s.broadcaster.Publish(realtime.SessionTopic(sessionID), realtime.Event{
		Type: "timerUpdate",
		Payload: map[string]any{
			"sessionId":  sessionID,
			"millisLeft": millisLeft,
		},
	})
}

// claim atomically inserts the key into the active set, failing if present.
func (s *Service) claim(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, running := s.active[key]; running {
		return false
	}
	s.active[key] = struct{}{}
	return true
}

func (s *Service) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, key)
}

func timerKey(sessionID string, round int) string {
	return fmt.Sprintf("%s_round_%d", sessionID, round)
}
