// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connection and schema creation.

# Drivers

Open selects the driver from configuration:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

Supported types are "sqlite" (modernc.org/sqlite, no cgo) and "postgres"
(lib/pq). Queries elsewhere use $n placeholders in order of first appearance,
which both drivers bind positionally.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - session: session metadata, join code, round/status lifecycle
  - session_participant: (session, user) membership
  - session_restaurant: candidates, partitioned by round
  - user_vote_quota: per-(session, user, round) LIKE allotment
  - session_vote_history: one vote per (session, user, provider, round)

# Relationships

	session 1──* session_participant
	session 1──* session_restaurant   (partitioned by round)
	session 1──* user_vote_quota      (one per user per round)
	session 1──* session_vote_history

The uniqueness constraints are load-bearing: session_vote_history's primary
key is the duplicate-vote guard, and user_vote_quota's primary key makes lazy
quota creation race-safe under ON CONFLICT DO NOTHING.
*/
package db
