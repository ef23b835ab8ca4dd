// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles server configuration from CLI flags and environment.

Precedence is flag, then environment variable, then default:

	DATABASE_URL=forkful.db go run main.go
	go run main.go -p 3414 -d forkful.db -t sqlite

Required settings:

  - DATABASE_URL (-d): sqlite file path or postgres connection string

Optional settings:

  - PORT (-p): server port (default 3414)
  - DATABASE_TYPE (-t): sqlite or postgres (default sqlite)
  - ALLOWED_ORIGIN (-origin): CORS allow-list origin
  - SESSION_CLEANUP_INTERVAL_MINUTES (-cleanup-interval): default 30
  - SESSION_INACTIVE_TIMEOUT_MINUTES (-inactive-timeout): default 30
  - SESSION_MAX_DURATION_HOURS (-max-duration): default 1
*/
package cliparse
