// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/danielhkuo/forkful/ident"
	"github.com/danielhkuo/forkful/models"
	"github.com/danielhkuo/forkful/places"
	"github.com/danielhkuo/forkful/pool"
	"github.com/danielhkuo/forkful/realtime"
)

var (
	ErrNotFound      = errors.New("session not found")
	ErrExpired       = errors.New("session has expired")
	ErrMissingFields = errors.New("missing required fields: creator_id, pool_size")
	ErrInvalidState  = errors.New("session is not in a state that allows this")
)

// Service owns the session lifecycle: creation with candidate seeding,
// joining, starting, ending, and summary reads.
type Service struct {
	db          *sql.DB
	broadcaster realtime.Broadcaster
	source      places.Source
	maxDuration time.Duration
}

func NewService(db *sql.DB, broadcaster realtime.Broadcaster, source places.Source, maxDurationHours int) *Service {
	if maxDurationHours <= 0 {
		maxDurationHours = 1
	}
	return &Service{
		db:          db,
		broadcaster: broadcaster,
		source:      source,
		maxDuration: time.Duration(maxDurationHours) * time.Hour,
	}
}

// Create builds a session: unique 6-digit join code, round-1 candidate pool
// seeded from the places source, and the creator as first participant.
func (s *Service) Create(ctx context.Context, req models.CreateSessionRequest) (models.Session, error) {
	if req.CreatorID == "" || req.PoolSize <= 0 {
		return models.Session{}, ErrMissingFields
	}
	if req.RoundTime <= 0 {
		req.RoundTime = models.DefaultRoundTimeMinutes
	}
	if req.LikesPerUser <= 0 {
		req.LikesPerUser = models.DefaultLikesPerUser
	}

	code, err := s.uniqueJoinCode()
	if err != nil {
		return models.Session{}, err
	}

	seeds, err := s.source.Restaurants(ctx, req.PoolSize)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to fetch restaurant pool: %w", err)
	}

	now := time.Now()
	sess := models.Session{
		ID:             ident.NewID(),
		JoinCode:       code,
		CreatorID:      req.CreatorID,
		PoolSize:       req.PoolSize,
		RoundTime:      req.RoundTime,
		LikesPerUser:   req.LikesPerUser,
		Round:          1,
		Status:         models.StatusOpen,
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(s.maxDuration),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO session (id, join_code, creator_id, pool_size, round_time, likes_per_user,
		                     round, status, created_at, last_activity_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, sess.ID, sess.JoinCode, sess.CreatorID, sess.PoolSize, sess.RoundTime, sess.LikesPerUser,
		sess.Round, sess.Status, sess.CreatedAt, sess.LastActivityAt, sess.ExpiresAt)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to insert session: %w", err)
	}

	for i, seed := range seeds {
		priceRange := seed.PriceRange
		if priceRange == "" {
			priceRange = places.PriceRangeFor(seed.PriceLevel)
		}
		c := models.Candidate{
			ID:                  ident.NewID(),
			SessionID:           sess.ID,
			ProviderID:          seed.ProviderID,
			Name:                seed.Name,
			Address:             seed.Address,
			Category:            seed.Category,
			PriceLevel:          seed.PriceLevel,
			PriceRange:          priceRange,
			Rating:              seed.Rating,
			UserRatingCount:     seed.UserRatingCount,
			CurrentOpeningHours: seed.CurrentOpeningHours,
			GenerativeSummary:   seed.GenerativeSummary,
			ReviewSummary:       seed.ReviewSummary,
			WebsiteURI:          seed.WebsiteURI,
			Round:               1,
			LikeCount:           0,
			PoolOrder:           i,
		}
		if err := pool.Insert(tx, c); err != nil {
			return models.Session{}, err
		}
	}

	_, err = tx.Exec(`
		INSERT INTO session_participant (id, session_id, user_id, joined_at)
		VALUES ($1, $2, $3, $4)
	`, ident.NewID(), sess.ID, sess.CreatorID, now)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to add creator participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Session{}, fmt.Errorf("failed to commit session: %w", err)
	}

	slog.Info("session created",
		"session_id", sess.ID, "join_code", sess.JoinCode,
		"pool_size", len(seeds), "likes_per_user", sess.LikesPerUser)
	return sess, nil
}

// Get loads a session, expiring it if past its deadline, and auto-joins the
// requesting user as a participant.
func (s *Service) Get(sessionID, userID string) (models.Session, error) {
	sess, err := s.bySessionID(sessionID)
	if err != nil {
		return models.Session{}, err
	}

	if sess.Expired(time.Now()) {
		if _, err := s.db.Exec(`
			UPDATE session SET status = $1 WHERE id = $2
		`, models.StatusExpired, sessionID); err != nil {
			return models.Session{}, fmt.Errorf("failed to expire session: %w", err)
		}
		return models.Session{}, ErrExpired
	}

	s.touchActivity(sess)

	if userID != "" {
		if err := s.addParticipant(sessionID, userID); err != nil {
			return models.Session{}, err
		}
	}
	return sess, nil
}

// JoinByCode resolves a join code and registers the user as a participant.
func (s *Service) JoinByCode(joinCode, userID string) (models.Session, error) {
	var sessionID string
	err := s.db.QueryRow(`SELECT id FROM session WHERE join_code = $1`, joinCode).Scan(&sessionID)
	if err == sql.ErrNoRows {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to resolve join code: %w", err)
	}
	return s.Get(sessionID, userID)
}

// Start flips an open session into round 1 and broadcasts sessionStarted.
// The caller is responsible for kicking off the round timer.
func (s *Service) Start(sessionID string) error {
	sess, err := s.bySessionID(sessionID)
	if err != nil {
		return err
	}
	if sess.Status != models.StatusOpen {
		return fmt.Errorf("%w: session is %s, not open", ErrInvalidState, sess.Status)
	}

	now := time.Now()
	_, err = s.db.Exec(`
		UPDATE session SET status = $1, last_activity_at = $2 WHERE id = $3
	`, models.StatusRound1, now, sessionID)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	slog.Info("session started", "session_id", sessionID)
	s.broadcaster.Publish(realtime.SessionTopic(sessionID), realtime.Event{
		Type: "sessionStarted",
		Payload: map[string]any{
			"sessionId": sessionID,
			"startTime": now.UTC().Format(time.RFC3339),
		},
	})
	return nil
}

// End terminates the session early, broadcasting final standings as they are.
func (s *Service) End(sessionID, reason string) error {
	if _, err := s.bySessionID(sessionID); err != nil {
		return err
	}

	rankings, err := s.FinalRankings(sessionID)
	if err != nil {
		return err
	}
	participants, err := s.Participants(sessionID)
	if err != nil {
		return err
	}
	totalVotes := 0
	for _, c := range rankings {
		totalVotes += c.LikeCount
	}
	var winner any
	if len(rankings) > 0 {
		winner = rankings[0]
	}

	_, err = s.db.Exec(`
		UPDATE session SET status = $1 WHERE id = $2
	`, models.StatusEnded, sessionID)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	if reason == "" {
		reason = "Manual termination"
	}
	slog.Info("session ended", "session_id", sessionID, "reason", reason)

	s.broadcaster.Publish(realtime.SessionTopic(sessionID), realtime.Event{
		Type: "sessionEnd",
		Payload: map[string]any{
			"sessionId":         sessionID,
			"endTime":           time.Now().UTC().Format(time.RFC3339),
			"reason":            reason,
			"winner":            winner,
			"finalRankings":     rankings,
			"totalParticipants": len(participants),
			"totalVotes":        totalVotes,
		},
	})
	return nil
}

// Participants lists the session's members in join order.
func (s *Service) Participants(sessionID string) ([]models.Participant, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, user_id, joined_at
		FROM session_participant
		WHERE session_id = $1
		ORDER BY joined_at ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.SessionID, &p.UserID, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// FinalRankings returns every candidate across both rounds sorted by like
// count. Used for the early-end summary; completed sessions get the
// aggregated scoring from the round coordinator instead.
func (s *Service) FinalRankings(sessionID string) ([]models.Candidate, error) {
	round1, err := pool.ForRound(s.db, sessionID, 1)
	if err != nil {
		return nil, err
	}
	round2, err := pool.ForRound(s.db, sessionID, 2)
	if err != nil {
		return nil, err
	}
	all := append(round1, round2...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].LikeCount > all[j].LikeCount
	})
	return all, nil
}

// Winner returns the current front-runner, or ErrNotFound for an empty pool.
func (s *Service) Winner(sessionID string) (models.Candidate, error) {
	rankings, err := s.FinalRankings(sessionID)
	if err != nil {
		return models.Candidate{}, err
	}
	if len(rankings) == 0 {
		return models.Candidate{}, pool.ErrNotFound
	}
	return rankings[0], nil
}

func (s *Service) bySessionID(sessionID string) (models.Session, error) {
	var sess models.Session
	err := s.db.QueryRow(`
		SELECT id, join_code, creator_id, pool_size, round_time, likes_per_user,
		       round, status, created_at, last_activity_at, expires_at
		FROM session WHERE id = $1
	`, sessionID).Scan(
		&sess.ID, &sess.JoinCode, &sess.CreatorID, &sess.PoolSize, &sess.RoundTime,
		&sess.LikesPerUser, &sess.Round, &sess.Status, &sess.CreatedAt,
		&sess.LastActivityAt, &sess.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to query session: %w", err)
	}
	return sess, nil
}

func (s *Service) addParticipant(sessionID, userID string) error {
	_, err := s.db.Exec(`
		INSERT INTO session_participant (id, session_id, user_id, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, user_id) DO NOTHING
	`, ident.NewID(), sessionID, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

func (s *Service) touchActivity(sess models.Session) {
	if !sess.Active() {
		return
	}
	if _, err := s.db.Exec(`
		UPDATE session SET last_activity_at = $1 WHERE id = $2
	`, time.Now(), sess.ID); err != nil {
		slog.Warn("failed to touch session activity", "session_id", sess.ID, "error", err)
	}
}

// uniqueJoinCode generates codes until one misses the unique index.
func (s *Service) uniqueJoinCode() (string, error) {
	for attempt := 0; attempt < 20; attempt++ {
		code, err := ident.NewJoinCode()
		if err != nil {
			return "", err
		}
		var exists bool
		err = s.db.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM session WHERE join_code = $1)
		`, code).Scan(&exists)
		if err != nil {
			return "", fmt.Errorf("failed to check join code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("failed to find a free join code")
}
