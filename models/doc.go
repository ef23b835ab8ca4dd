// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Session: one group decision event, identified by a 6-digit join code
  - Participant: (session, user) membership row
  - Candidate: a restaurant attached to one round of one session
  - VoteQuota: per-(session, user, round) LIKE allotment
  - VoteHistoryEntry: one row per (session, user, provider, round) vote
  - AggregatedResult: round-2 candidate with cumulative round1+round2 totals

# Constants

Session lifecycle:

	open → round1 → round2 → completed

with ended/expired reachable from any non-terminal state.

Vote types:

	VoteLike    = "LIKE"
	VoteDislike = "DISLIKE"

Only LIKE votes consume quota; both types occupy the one-vote-per-restaurant
slot for the round.
*/
package models
