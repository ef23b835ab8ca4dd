// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package vote is the vote processor: quota enforcement, duplicate rejection,
and atomic application of a vote against the candidate pool.

# Contract

	err := processor.ProcessVote(models.VoteRequest{...})

returns nil on success or one of the sentinel errors: ErrSessionNotFound,
ErrQuotaExceeded, ErrDuplicateVote, ErrCandidateNotFound, ErrInvalidVoteType,
ErrSessionClosed. Callers distinguish them with errors.Is.

# Atomicity

Quota increment, like-count increment, and the history append commit in one
transaction. Concurrent requests from the same (session, user) additionally
serialize on an in-process keyed mutex so the quota check-then-increment can
never interleave; the vote-history primary key backs this up across
processes, so the worst cross-instance outcome is a clean DuplicateVote.

# Quota rules

Rows are created lazily per (session, user, round): round 1 gets the
session's likes-per-user allotment, round 2 exactly one. DISLIKE votes never
consume quota but do occupy the one-vote-per-restaurant slot.
*/
package vote
