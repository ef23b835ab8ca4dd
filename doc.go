// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Forkful API server.

Forkful is a group restaurant-decision service: a host creates a session with
a pool of candidate restaurants, friends join with a 6-digit code, and two
rounds of like/dislike voting narrow the pool to a single winner.

# Starting the Server

The server requires a database URL via environment variable or CLI flag:

	DATABASE_URL=forkful.db go run main.go

Or with flags:

	go run main.go -p 3414 -d "postgres://..." -t postgres

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite file path or PostgreSQL connection string

Optional settings:

  - PORT (-p): Server port (default: 3414)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - ALLOWED_ORIGIN (--origin): CORS origin (default: echo request origin)
  - SESSION_CLEANUP_INTERVAL_MINUTES (--cleanup-interval): sweep cadence (default: 30)
  - SESSION_INACTIVE_TIMEOUT_MINUTES (--inactive-timeout): idle expiry (default: 30)
  - SESSION_MAX_DURATION_HOURS (--max-duration): absolute expiry (default: 1)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (sessions, votes, rounds, events)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response and domain types
  - session: Lifecycle, join codes, candidate seeding, cleanup sweep
  - vote: Atomic vote processing with per-round quotas
  - rounds: Top-K round transition and winner aggregation
  - timer: Round countdowns with single-flight expiry
  - realtime: Websocket hub for live session events
  - places: Candidate restaurant source
  - db: Schema creation, dual sqlite/postgres support
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
