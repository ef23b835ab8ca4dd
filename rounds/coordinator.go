// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package rounds

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/danielhkuo/forkful/ident"
	"github.com/danielhkuo/forkful/models"
	"github.com/danielhkuo/forkful/pool"
	"github.com/danielhkuo/forkful/realtime"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidTransition = errors.New("invalid round transition for session state")
	ErrNoCandidates      = errors.New("no restaurants found for round 2")
)

// MaxFinalists caps the round-2 field so the final vote stays decisive.
const MaxFinalists = 5

// TopK returns how many round-1 candidates advance: min(5, groupSize+2).
// The +2 floor guarantees at least 3 finalists even for a solo session.
func TopK(groupSize int) int {
	k := groupSize + 2
	if k > MaxFinalists {
		return MaxFinalists
	}
	return k
}

// Coordinator drives the session round state machine:
// open → round1 → round2 → completed.
type Coordinator struct {
	db          *sql.DB
	broadcaster realtime.Broadcaster
}

func NewCoordinator(db *sql.DB, broadcaster realtime.Broadcaster) *Coordinator {
	return &Coordinator{db: db, broadcaster: broadcaster}
}

// TransitionToRound2 promotes the top-K round-1 candidates into round 2 with
// fresh like counts and flips the session to round 2. Only valid while the
// session is in round 1.
func (c *Coordinator) TransitionToRound2(sessionID string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var round int
	err = tx.QueryRow(`SELECT round FROM session WHERE id = $1`, sessionID).Scan(&round)
	if err == sql.ErrNoRows {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query session: %w", err)
	}
	if round != 1 {
		return fmt.Errorf("%w: can only transition to round 2 from round 1", ErrInvalidTransition)
	}

	var groupSize int
	err = tx.QueryRow(`
		SELECT COUNT(*) FROM session_participant WHERE session_id = $1
	`, sessionID).Scan(&groupSize)
	if err != nil {
		return fmt.Errorf("failed to count participants: %w", err)
	}
	k := TopK(groupSize)

	// pool.ForRound orders by like_count DESC with insertion order breaking
	// ties, so the promoted set is deterministic for identical inputs.
	candidates, err := pool.ForRound(tx, sessionID, 1)
	if err != nil {
		return err
	}
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	for i, r1 := range candidates {
		r2 := r1
		r2.ID = ident.NewID()
		r2.Round = 2
		r2.LikeCount = 0
		r2.PoolOrder = i
		if err := pool.Insert(tx, r2); err != nil {
			return err
		}
	}

	now := time.Now()
	_, err = tx.Exec(`
		UPDATE session SET round = 2, status = $1, last_activity_at = $2 WHERE id = $3
	`, models.StatusRound2, now, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit round transition: %w", err)
	}

	slog.Info("transitioned to round 2",
		"session_id", sessionID, "group_size", groupSize, "promoted", len(candidates))

	c.broadcaster.Publish(realtime.SessionTopic(sessionID), realtime.Event{
		Type: "roundTransition",
		Payload: map[string]any{
			"sessionId":       sessionID,
			"newRound":        2,
			"topKRestaurants": len(candidates),
			"message":         fmt.Sprintf("Round 1 complete! Top %d restaurants selected for final round.", k),
		},
	})
	return nil
}

// CompleteSession ranks the round-2 field by cumulative round1+round2 like
// counts, marks the session completed, and broadcasts the winner. Candidates
// that performed well in round 1 keep that credit; this is deliberate
// scoring, not double counting.
func (c *Coordinator) CompleteSession(sessionID string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var round int
	err = tx.QueryRow(`SELECT round FROM session WHERE id = $1`, sessionID).Scan(&round)
	if err == sql.ErrNoRows {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query session: %w", err)
	}
	if round != 2 {
		return fmt.Errorf("%w: can only complete session from round 2", ErrInvalidTransition)
	}

	round2, err := pool.ForRound(tx, sessionID, 2)
	if err != nil {
		return err
	}
	if len(round2) == 0 {
		return ErrNoCandidates
	}
	round1, err := pool.ForRound(tx, sessionID, 1)
	if err != nil {
		return err
	}

	results := Aggregate(round2, round1)

	_, err = tx.Exec(`
		UPDATE session SET status = $1, last_activity_at = $2 WHERE id = $3
	`, models.StatusCompleted, time.Now(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit completion: %w", err)
	}

	winner := results[0]
	slog.Info("session completed",
		"session_id", sessionID, "winner", winner.Name, "vote_count", winner.VoteCount)

	c.broadcaster.Publish(realtime.SessionTopic(sessionID), realtime.Event{
		Type: "sessionComplete",
		Payload: map[string]any{
			"sessionId":    sessionID,
			"winner":       winner,
			"finalResults": results,
		},
	})
	return nil
}

// Aggregate merges round-2 standings with round-1 like counts and sorts by
// the cumulative total. The sort is stable over the round-2 ordering, so
// ties go to whichever candidate appears first in the round-2 descending
// sort - the documented tie-break.
func Aggregate(round2, round1 []models.Candidate) []models.AggregatedResult {
	round1Likes := make(map[string]int, len(round1))
	for _, r1 := range round1 {
		round1Likes[r1.ProviderID] = r1.LikeCount
	}

	results := make([]models.AggregatedResult, 0, len(round2))
	for _, r2 := range round2 {
		r1Votes := round1Likes[r2.ProviderID]
		results = append(results, models.AggregatedResult{
			ProviderID:      r2.ProviderID,
			Name:            r2.Name,
			Address:         r2.Address,
			Category:        r2.Category,
			Rating:          r2.Rating,
			UserRatingCount: r2.UserRatingCount,
			PriceRange:      r2.PriceRange,
			WebsiteURI:      r2.WebsiteURI,
			VoteCount:       r2.LikeCount + r1Votes,
			Round1Votes:     r1Votes,
			Round2Votes:     r2.LikeCount,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].VoteCount > results[j].VoteCount
	})
	return results
}

// Results returns the current standings without changing any state:
// cumulative round1+round2 scoring once round 2 exists, plain round-1
// standings before that.
func (c *Coordinator) Results(sessionID string) ([]models.AggregatedResult, error) {
	var round int
	err := c.db.QueryRow(`SELECT round FROM session WHERE id = $1`, sessionID).Scan(&round)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	round1, err := pool.ForRound(c.db, sessionID, 1)
	if err != nil {
		return nil, err
	}

	if round >= 2 {
		round2, err := pool.ForRound(c.db, sessionID, 2)
		if err != nil {
			return nil, err
		}
		return Aggregate(round2, round1), nil
	}

	// pool.ForRound already sorts; round 1 standings map straight across.
	results := make([]models.AggregatedResult, 0, len(round1))
	for _, r1 := range round1 {
		results = append(results, models.AggregatedResult{
			ProviderID:      r1.ProviderID,
			Name:            r1.Name,
			Address:         r1.Address,
			Category:        r1.Category,
			Rating:          r1.Rating,
			UserRatingCount: r1.UserRatingCount,
			PriceRange:      r1.PriceRange,
			WebsiteURI:      r1.WebsiteURI,
			VoteCount:       r1.LikeCount,
			Round1Votes:     r1.LikeCount,
		})
	}
	return results, nil
}

// RoundStatus is the pure read behind the round-status polling endpoint.
func (c *Coordinator) RoundStatus(sessionID string) (models.RoundStatusResponse, error) {
	var resp models.RoundStatusResponse
	err := c.db.QueryRow(`
		SELECT round, status, likes_per_user FROM session WHERE id = $1
	`, sessionID).Scan(&resp.CurrentRound, &resp.Status, &resp.LikesPerUser)
	if err == sql.ErrNoRows {
		return models.RoundStatusResponse{}, ErrSessionNotFound
	}
	if err != nil {
		return models.RoundStatusResponse{}, fmt.Errorf("failed to query session: %w", err)
	}
	return resp, nil
}
