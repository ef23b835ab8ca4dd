// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/danielhkuo/forkful/ident"
	"github.com/danielhkuo/forkful/models"
	"github.com/danielhkuo/forkful/pool"
	"github.com/danielhkuo/forkful/realtime"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrCandidateNotFound = errors.New("restaurant not found in current round")
	ErrQuotaExceeded     = errors.New("vote quota exceeded for this round")
	ErrDuplicateVote     = errors.New("already voted for this restaurant in this round")
	ErrInvalidVoteType   = errors.New("vote type must be LIKE or DISLIKE")
	ErrSessionClosed     = errors.New("session is not accepting votes")
)

// Processor applies vote requests against the quota ledger, history log, and
// candidate pool as one atomic unit, then broadcasts the updated standings.
type Processor struct {
	db          *sql.DB
	broadcaster realtime.Broadcaster
	locks       *keyedMutex
}

func NewProcessor(db *sql.DB, broadcaster realtime.Broadcaster) *Processor {
	return &Processor{
		db:          db,
		broadcaster: broadcaster,
		locks:       newKeyedMutex(),
	}
}

// ProcessVote records one vote. Rules:
//
//   - the quota row for (session, user, current round) is created lazily:
//     round 1 gets the session's likes-per-user, round 2 exactly one
//   - LIKE votes consume quota; DISLIKE votes never do
//   - either vote type occupies the one-vote-per-restaurant slot for the
//     round, so a DISLIKE followed by a LIKE for the same restaurant is a
//     duplicate
//   - quota increment, like-count increment, and the history entry commit
//     in the same transaction
//
// The broadcast afterwards is best-effort and never rolls the vote back.
func (p *Processor) ProcessVote(req models.VoteRequest) error {
	if req.VoteType != models.VoteLike && req.VoteType != models.VoteDislike {
		return ErrInvalidVoteType
	}

	// Serialize per (session, user): two in-flight votes from the same voter
	// must not both pass the quota check before either commits.
	key := req.SessionID + "|" + req.UserID
	p.locks.Lock(key)
	defer p.locks.Unlock(key)

	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		round        int
		status       string
		likesPerUser int
	)
	err = tx.QueryRow(`
		SELECT round, status, likes_per_user FROM session WHERE id = $1
	`, req.SessionID).Scan(&round, &status, &likesPerUser)
	if err == sql.ErrNoRows {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query session: %w", err)
	}

	switch status {
	case models.StatusCompleted, models.StatusEnded, models.StatusExpired:
		return ErrSessionClosed
	}

	now := time.Now()

	// Auto-join: a vote from a user we have not seen makes them a participant.
	_, err = tx.Exec(`
		INSERT INTO session_participant (id, session_id, user_id, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, user_id) DO NOTHING
	`, ident.NewID(), req.SessionID, req.UserID, now)
	if err != nil {
		return fmt.Errorf("failed to auto-join participant: %w", err)
	}

	quota, err := ensureQuota(tx, req.SessionID, req.UserID, round, likesPerUser, now)
	if err != nil {
		return err
	}

	if req.VoteType == models.VoteLike && !quota.CanVote() {
		slog.Debug("vote rejected, quota exhausted",
			"session_id", req.SessionID, "user_id", req.UserID,
			"votes_used", quota.VotesUsed, "total_allowed", quota.TotalAllowed)
		return ErrQuotaExceeded
	}

	var alreadyVoted bool
	err = tx.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM session_vote_history
			WHERE session_id = $1 AND user_id = $2 AND provider_id = $3 AND round = $4
		)
	`, req.SessionID, req.UserID, req.ProviderID, round).Scan(&alreadyVoted)
	if err != nil {
		return fmt.Errorf("failed to check vote history: %w", err)
	}
	if alreadyVoted {
		return ErrDuplicateVote
	}

	candidate, err := pool.Find(tx, req.SessionID, req.ProviderID, round)
	if err == pool.ErrNotFound {
		return ErrCandidateNotFound
	}
	if err != nil {
		return err
	}

	if req.VoteType == models.VoteLike {
		_, err = tx.Exec(`
			UPDATE user_vote_quota SET votes_used = votes_used + 1, updated_at = $1
			WHERE session_id = $2 AND user_id = $3 AND round = $4
		`, now, req.SessionID, req.UserID, round)
		if err != nil {
			return fmt.Errorf("failed to update quota: %w", err)
		}

		_, err = tx.Exec(`
			UPDATE session_restaurant SET like_count = like_count + 1 WHERE id = $1
		`, candidate.ID)
		if err != nil {
			return fmt.Errorf("failed to update like count: %w", err)
		}
	}

	// History is written for both vote types; the primary key is the
	// cross-process duplicate guard backing up the check above.
	_, err = tx.Exec(`
		INSERT INTO session_vote_history (session_id, user_id, provider_id, round, vote_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, req.SessionID, req.UserID, req.ProviderID, round, req.VoteType, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateVote
		}
		return fmt.Errorf("failed to insert vote history: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE session SET last_activity_at = $1 WHERE id = $2
	`, now, req.SessionID)
	if err != nil {
		return fmt.Errorf("failed to touch session activity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit vote: %w", err)
	}

	slog.Info("vote accepted",
		"session_id", req.SessionID, "user_id", req.UserID,
		"provider_id", req.ProviderID, "vote_type", req.VoteType, "round", round)

	p.publishStandings(req.SessionID, round)
	return nil
}

// RemainingVotes reports the unused LIKE allotment for the session's current
// round, creating the quota row if it does not exist yet.
func (p *Processor) RemainingVotes(sessionID, userID string) (int, error) {
	key := sessionID + "|" + userID
	p.locks.Lock(key)
	defer p.locks.Unlock(key)

	tx, err := p.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var round, likesPerUser int
	var status string
	err = tx.QueryRow(`
		SELECT round, status, likes_per_user FROM session WHERE id = $1
	`, sessionID).Scan(&round, &status, &likesPerUser)
	if err == sql.ErrNoRows {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query session: %w", err)
	}

	quota, err := ensureQuota(tx, sessionID, userID, round, likesPerUser, time.Now())
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return quota.Remaining(), nil
}

// ResetUserVotes deletes all quota and history rows for (session, user)
// across every round. Debugging aid; not routed for ordinary users.
// Like counts already tallied are not unwound.
func (p *Processor) ResetUserVotes(sessionID, userID string) error {
	key := sessionID + "|" + userID
	p.locks.Lock(key)
	defer p.locks.Unlock(key)

	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		DELETE FROM user_vote_quota WHERE session_id = $1 AND user_id = $2
	`, sessionID, userID); err != nil {
		return fmt.Errorf("failed to delete quotas: %w", err)
	}
	if _, err := tx.Exec(`
		DELETE FROM session_vote_history WHERE session_id = $1 AND user_id = $2
	`, sessionID, userID); err != nil {
		return fmt.Errorf("failed to delete vote history: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}

	slog.Warn("user votes reset", "session_id", sessionID, "user_id", userID)
	return nil
}

// ensureQuota lazily creates the quota row for (session, user, round). The
// insert races safely across processes via ON CONFLICT DO NOTHING.
func ensureQuota(q pool.Querier, sessionID, userID string, round, likesPerUser int, now time.Time) (models.VoteQuota, error) {
	total := likesPerUser
	if total <= 0 {
		total = models.DefaultLikesPerUser
	}
	if round == 2 {
		total = models.Round2LikesPerUser
	}

	_, err := q.Exec(`
		INSERT INTO user_vote_quota (session_id, user_id, round, total_allowed, votes_used, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6)
		ON CONFLICT (session_id, user_id, round) DO NOTHING
	`, sessionID, userID, round, total, now, now)
	if err != nil {
		return models.VoteQuota{}, fmt.Errorf("failed to ensure quota: %w", err)
	}

	var quota models.VoteQuota
	quota.SessionID, quota.UserID, quota.Round = sessionID, userID, round
	err = q.QueryRow(`
		SELECT total_allowed, votes_used FROM user_vote_quota
		WHERE session_id = $1 AND user_id = $2 AND round = $3
	`, sessionID, userID, round).Scan(&quota.TotalAllowed, &quota.VotesUsed)
	if err != nil {
		return models.VoteQuota{}, fmt.Errorf("failed to read quota: %w", err)
	}
	return quota, nil
}

// publishStandings pushes the full current-round candidate list to the
// session's votes topic. Best-effort: failures are logged, never surfaced.
func (p *Processor) publishStandings(sessionID string, round int) {
	candidates, err := pool.ForRound(p.db, sessionID, round)
	if err != nil {
		slog.Error("failed to load standings for broadcast", "session_id", sessionID, "error", err)
		return
	}
	p.broadcaster.Publish(realtime.VotesTopic(sessionID), realtime.Event{
		Type: "updatedRestaurants",
		Payload: map[string]any{
			"sessionId":   sessionID,
			"round":       round,
			"restaurants": candidates,
		},
	})
}

// isUniqueViolation recognizes unique-constraint errors from both drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
