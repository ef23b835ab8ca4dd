// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the configured database. databaseType is "sqlite" or
// "postgres"; an empty value defaults to sqlite.
func Open(databaseType, url string) (*sql.DB, error) {
	switch databaseType {
	case "postgres":
		return sql.Open("postgres", url)
	case "sqlite", "":
		return sql.Open("sqlite", url)
	}
	return nil, fmt.Errorf("unknown database type %q (want sqlite or postgres)", databaseType)
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The schema sticks to the subset both sqlite and postgres accept:
// TEXT/INTEGER/REAL columns, CURRENT_TIMESTAMP defaults, composite UNIQUE
// constraints. Row IDs are generated in the application.
const schema = `
-- Sessions
CREATE TABLE IF NOT EXISTS session (
    id TEXT PRIMARY KEY,
    join_code TEXT NOT NULL UNIQUE,
    creator_id TEXT NOT NULL,
    pool_size INTEGER NOT NULL,
    round_time INTEGER NOT NULL DEFAULT 5,
    likes_per_user INTEGER NOT NULL DEFAULT 3,
    round INTEGER NOT NULL DEFAULT 1,
    status TEXT NOT NULL DEFAULT 'open'
        CHECK (status IN ('open', 'round1', 'round2', 'completed', 'ended', 'expired')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    last_activity_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    expires_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_status ON session(status);

-- Participants
CREATE TABLE IF NOT EXISTS session_participant (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    joined_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (session_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_participant_session ON session_participant(session_id);

-- Candidates, partitioned by round. pool_order preserves insertion order so
-- like-count ties break deterministically.
CREATE TABLE IF NOT EXISTS session_restaurant (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    provider_id TEXT NOT NULL,
    name TEXT NOT NULL,
    address TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT 'Restaurant',
    price_level TEXT NOT NULL DEFAULT '',
    price_range TEXT NOT NULL DEFAULT '',
    rating REAL NOT NULL DEFAULT 0,
    user_rating_count INTEGER NOT NULL DEFAULT 0,
    current_opening_hours TEXT NOT NULL DEFAULT '',
    generative_summary TEXT NOT NULL DEFAULT '',
    review_summary TEXT NOT NULL DEFAULT '',
    website_uri TEXT NOT NULL DEFAULT '',
    round INTEGER NOT NULL DEFAULT 1,
    like_count INTEGER NOT NULL DEFAULT 0 CHECK (like_count >= 0),
    pool_order INTEGER NOT NULL DEFAULT 0,
    UNIQUE (session_id, provider_id, round)
);

CREATE INDEX IF NOT EXISTS idx_restaurant_session_round ON session_restaurant(session_id, round);

-- Vote quotas, one row per (session, user, round), created lazily on first
-- vote attempt.
CREATE TABLE IF NOT EXISTS user_vote_quota (
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    round INTEGER NOT NULL,
    total_allowed INTEGER NOT NULL,
    votes_used INTEGER NOT NULL DEFAULT 0 CHECK (votes_used >= 0),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (session_id, user_id, round)
);

-- Vote history. The primary key is the duplicate-vote guard: at most one
-- entry per (session, user, provider, round), LIKE or DISLIKE.
CREATE TABLE IF NOT EXISTS session_vote_history (
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    provider_id TEXT NOT NULL,
    round INTEGER NOT NULL,
    vote_type TEXT NOT NULL CHECK (vote_type IN ('LIKE', 'DISLIKE')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (session_id, user_id, provider_id, round)
);

CREATE INDEX IF NOT EXISTS idx_history_session_user ON session_vote_history(session_id, user_id);
`
