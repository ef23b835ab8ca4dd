// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package pool is the round-scoped candidate data access layer. It returns
// deterministic views (like_count DESC, insertion order ASC) and carries no
// business logic.
package pool

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/forkful/models"
)

// ErrNotFound is returned when a candidate lookup matches no row.
var ErrNotFound = errors.New("candidate not found")

// Querier is satisfied by both *sql.DB and *sql.Tx so callers can run pool
// reads inside their own transactions.
type Querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

const candidateColumns = `id, session_id, provider_id, name, address, category,
       price_level, price_range, rating, user_rating_count,
       current_opening_hours, generative_summary, review_summary, website_uri,
       round, like_count, pool_order`

// ForRound returns all candidates for (session, round) ordered by like count
// descending, with insertion order as the stable tie-break.
func ForRound(q Querier, sessionID string, round int) ([]models.Candidate, error) {
	rows, err := q.Query(`
		SELECT `+candidateColumns+`
		FROM session_restaurant
		WHERE session_id = $1 AND round = $2
		ORDER BY like_count DESC, pool_order ASC
	`, sessionID, round)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// Find looks up the single candidate for (session, provider, round).
func Find(q Querier, sessionID, providerID string, round int) (models.Candidate, error) {
	row := q.QueryRow(`
		SELECT `+candidateColumns+`
		FROM session_restaurant
		WHERE session_id = $1 AND provider_id = $2 AND round = $3
	`, sessionID, providerID, round)

	var c models.Candidate
	err := row.Scan(
		&c.ID, &c.SessionID, &c.ProviderID, &c.Name, &c.Address, &c.Category,
		&c.PriceLevel, &c.PriceRange, &c.Rating, &c.UserRatingCount,
		&c.CurrentOpeningHours, &c.GenerativeSummary, &c.ReviewSummary, &c.WebsiteURI,
		&c.Round, &c.LikeCount, &c.PoolOrder,
	)
	if err == sql.ErrNoRows {
		return models.Candidate{}, ErrNotFound
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to scan candidate: %w", err)
	}
	return c, nil
}

// Insert persists a candidate row.
func Insert(q Querier, c models.Candidate) error {
	_, err := q.Exec(`
		INSERT INTO session_restaurant (
			id, session_id, provider_id, name, address, category,
			price_level, price_range, rating, user_rating_count,
			current_opening_hours, generative_summary, review_summary, website_uri,
			round, like_count, pool_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, c.ID, c.SessionID, c.ProviderID, c.Name, c.Address, c.Category,
		c.PriceLevel, c.PriceRange, c.Rating, c.UserRatingCount,
		c.CurrentOpeningHours, c.GenerativeSummary, c.ReviewSummary, c.WebsiteURI,
		c.Round, c.LikeCount, c.PoolOrder)
	if err != nil {
		return fmt.Errorf("failed to insert candidate: %w", err)
	}
	return nil
}

func scanCandidate(rows *sql.Rows) (models.Candidate, error) {
	var c models.Candidate
	err := rows.Scan(
		&c.ID, &c.SessionID, &c.ProviderID, &c.Name, &c.Address, &c.Category,
		&c.PriceLevel, &c.PriceRange, &c.Rating, &c.UserRatingCount,
		&c.CurrentOpeningHours, &c.GenerativeSummary, &c.ReviewSummary, &c.WebsiteURI,
		&c.Round, &c.LikeCount, &c.PoolOrder,
	)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to scan candidate: %w", err)
	}
	return c, nil
}
