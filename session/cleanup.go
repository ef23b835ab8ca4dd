// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"

	"github.com/danielhkuo/forkful/models"
	"github.com/danielhkuo/forkful/realtime"
)

// Cleanup periodically expires abandoned sessions: anything inactive past
// the idle threshold or alive past the absolute maximum. Sessions that
// already reached a terminal status are left alone.
type Cleanup struct {
	db          *sql.DB
	broadcaster realtime.Broadcaster

	interval    time.Duration
	idleTimeout time.Duration
	maxDuration time.Duration

	cron *cron.Cron
}

func NewCleanup(db *sql.DB, broadcaster realtime.Broadcaster, intervalMinutes, inactiveMinutes, maxHours int) *Cleanup {
	if intervalMinutes <= 0 {
		intervalMinutes = 30
	}
	if inactiveMinutes <= 0 {
		inactiveMinutes = 30
	}
	if maxHours <= 0 {
		maxHours = 1
	}
	return &Cleanup{
		db:          db,
		broadcaster: broadcaster,
		interval:    time.Duration(intervalMinutes) * time.Minute,
		idleTimeout: time.Duration(inactiveMinutes) * time.Minute,
		maxDuration: time.Duration(maxHours) * time.Hour,
	}
}

// Start schedules the sweep on a background cron. Call Stop on shutdown.
func (c *Cleanup) Start() error {
	c.cron = cron.New()
	spec := fmt.Sprintf("@every %dm", int(c.interval.Minutes()))
	if _, err := c.cron.AddFunc(spec, c.Run); err != nil {
		return fmt.Errorf("failed to schedule session cleanup: %w", err)
	}
	c.cron.Start()
	slog.Info("session cleanup scheduled",
		"interval", c.interval, "idle_timeout", c.idleTimeout, "max_duration", c.maxDuration)
	return nil
}

func (c *Cleanup) Stop() {
	if c.cron != nil {
		c.cron.Stop()
	}
}

// Run performs one sweep. Exported so tests and operators can trigger it
// directly without waiting for the schedule.
func (c *Cleanup) Run() {
	now := time.Now()
	idleCutoff := now.Add(-c.idleTimeout)
	ageCutoff := now.Add(-c.maxDuration)

	rows, err := c.db.Query(`
		SELECT id, last_activity_at, created_at
		FROM session
		WHERE status IN ($1, $2, $3)
		  AND (last_activity_at < $4 OR created_at < $5)
	`, models.StatusOpen, models.StatusRound1, models.StatusRound2, idleCutoff, ageCutoff)
	if err != nil {
		slog.Error("session cleanup query failed", "error", err)
		return
	}
	defer rows.Close()

	type stale struct {
		id           string
		lastActivity time.Time
		createdAt    time.Time
	}
	var found []stale
	for rows.Next() {
		var s stale
		if err := rows.Scan(&s.id, &s.lastActivity, &s.createdAt); err != nil {
			slog.Error("session cleanup scan failed", "error", err)
			return
		}
		found = append(found, s)
	}
	if err := rows.Err(); err != nil {
		slog.Error("session cleanup rows failed", "error", err)
		return
	}
	if len(found) == 0 {
		return
	}

	expired := 0
	for _, s := range found {
		reason := "Session expired due to inactivity"
		if s.createdAt.Before(ageCutoff) {
			reason = "Session reached maximum duration"
		}
		if _, err := c.db.Exec(`
			UPDATE session SET status = $1 WHERE id = $2
		`, models.StatusExpired, s.id); err != nil {
			slog.Error("failed to expire session", "session_id", s.id, "error", err)
			continue
		}
		expired++
		slog.Info("expired stale session",
			"session_id", s.id, "last_activity", humanize.Time(s.lastActivity))

		c.broadcaster.Publish(realtime.SessionTopic(s.id), realtime.Event{
			Type: "sessionEnd",
			Payload: map[string]any{
				"sessionId": s.id,
				"endTime":   now.UTC().Format(time.RFC3339),
				"reason":    reason,
			},
		})
	}

	slog.Info("session cleanup sweep complete", "expired", expired)
}
