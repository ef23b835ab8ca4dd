// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and response helpers.

  - WithLogging: request start/completion logging with duration
  - JSONResponse / ErrorResponse / ErrorResponseCode: JSON writers
  - ParseJSONBody: request body decoding
  - CORS: cross-origin support with an optional allow-list origin
  - GetClientIP: client IP extraction behind proxies

ErrorResponseCode carries a machine-readable code field for the conflict
taxonomy (quota_exceeded, duplicate_vote, invalid_transition) so the frontend
can show "you're out of votes" vs "you already voted for this".
*/
package middleware
