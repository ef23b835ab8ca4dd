// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Session status constants
const (
	StatusOpen      = "open"
	StatusRound1    = "round1"
	StatusRound2    = "round2"
	StatusCompleted = "completed"
	StatusEnded     = "ended"
	StatusExpired   = "expired"
)

// Vote type constants
const (
	VoteLike    = "LIKE"
	VoteDislike = "DISLIKE"
)

// Round defaults
const (
	DefaultRoundTimeMinutes = 5
	DefaultLikesPerUser     = 3
	Round2LikesPerUser      = 1
)

// Request types

type CreateSessionRequest struct {
	CreatorID    string `json:"creator_id"`
	PoolSize     int    `json:"pool_size"`
	RoundTime    int    `json:"round_time"`
	LikesPerUser int    `json:"likes_per_user"`
}

type JoinSessionRequest struct {
	JoinCode string `json:"join_code"`
	UserID   string `json:"user_id"`
}

type VoteRequest struct {
	SessionID  string `json:"session_id"`
	UserID     string `json:"user_id"`
	ProviderID string `json:"provider_id"`
	VoteType   string `json:"vote_type"`
}

// Response types

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	JoinCode  string `json:"join_code"`
}

type JoinSessionResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Round     int    `json:"round"`
}

type RemainingVotesResponse struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Remaining int    `json:"remaining"`
}

type RoundStatusResponse struct {
	CurrentRound int    `json:"currentRound"`
	Status       string `json:"status"`
	LikesPerUser int    `json:"likesPerUser"`
}

// Domain types

type Session struct {
	ID             string    `json:"id"`
	JoinCode       string    `json:"join_code"`
	CreatorID      string    `json:"creator_id"`
	PoolSize       int       `json:"pool_size"`
	RoundTime      int       `json:"round_time"` // minutes
	LikesPerUser   int       `json:"likes_per_user"`
	Round          int       `json:"round"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Active reports whether the session is still in a votable state.
func (s Session) Active() bool {
	switch s.Status {
	case StatusOpen, StatusRound1, StatusRound2:
		return true
	}
	return false
}

// Expired reports whether an active session has passed its hard deadline.
func (s Session) Expired(now time.Time) bool {
	return s.Active() && now.After(s.ExpiresAt)
}

type Participant struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

// Candidate is a restaurant entry scoped to one round of one session.
// (session_id, provider_id, round) uniquely identifies a row; PoolOrder is
// the insertion order within the round and breaks like-count ties.
type Candidate struct {
	ID                  string  `json:"id"`
	SessionID           string  `json:"session_id"`
	ProviderID          string  `json:"provider_id"`
	Name                string  `json:"name"`
	Address             string  `json:"address"`
	Category            string  `json:"category"`
	PriceLevel          string  `json:"price_level"`
	PriceRange          string  `json:"price_range"`
	Rating              float64 `json:"rating"`
	UserRatingCount     int     `json:"user_rating_count"`
	CurrentOpeningHours string  `json:"current_opening_hours"`
	GenerativeSummary   string  `json:"generative_summary"`
	ReviewSummary       string  `json:"review_summary"`
	WebsiteURI          string  `json:"website_uri"`
	Round               int     `json:"round"`
	LikeCount           int     `json:"like_count"`
	PoolOrder           int     `json:"-"`
}

type VoteQuota struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	Round        int       `json:"round"`
	TotalAllowed int       `json:"total_allowed"`
	VotesUsed    int       `json:"votes_used"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Remaining returns the unused LIKE allotment, floored at zero.
func (q VoteQuota) Remaining() int {
	if r := q.TotalAllowed - q.VotesUsed; r > 0 {
		return r
	}
	return 0
}

func (q VoteQuota) CanVote() bool {
	return q.VotesUsed < q.TotalAllowed
}

type VoteHistoryEntry struct {
	SessionID  string    `json:"session_id"`
	UserID     string    `json:"user_id"`
	ProviderID string    `json:"provider_id"`
	Round      int       `json:"round"`
	VoteType   string    `json:"vote_type"`
	CreatedAt  time.Time `json:"created_at"`
}

// AggregatedResult is a round-2 candidate with cumulative vote totals.
// VoteCount = Round1Votes + Round2Votes; candidates that did well in round 1
// carry that credit into the final ranking by design.
type AggregatedResult struct {
	ProviderID      string  `json:"providerId"`
	Name            string  `json:"name"`
	Address         string  `json:"address"`
	Category        string  `json:"category"`
	Rating          float64 `json:"rating"`
	UserRatingCount int     `json:"userRatingCount"`
	PriceRange      string  `json:"priceRange"`
	WebsiteURI      string  `json:"websiteUri"`
	VoteCount       int     `json:"voteCount"`
	Round1Votes     int     `json:"round1Votes"`
	Round2Votes     int     `json:"round2Votes"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
