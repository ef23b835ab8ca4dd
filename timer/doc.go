// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package timer drives rounds toward automatic expiry.

One background goroutine per active (session, round) publishes a timerUpdate
event every second, finishes with a zero tick, then invokes the round
coordinator: round 1 expiry promotes into round 2 and chains the round-2
countdown, round 2 expiry completes the session.

# Single flight

At most one timer may run per (session, round). StartRoundTimer claims the
key atomically and drops duplicates; the claim is released in a defer so no
failure path can strand a stale entry.

# Failure semantics

Expiry-time failures never crash the subsystem: a vanished session or an
already-advanced round (host beat the timer) is logged and the goroutine
exits cleanly. Timers are single-process and die with the process; for
multi-instance deployment the active-set claim would need to become a
storage-backed lease keyed by (session, round) with the deadline persisted
as an expires_at timestamp.
*/
package timer
