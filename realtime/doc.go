// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package realtime is the broadcast gateway: a websocket pub/sub hub that fans
session events out to connected participants.

# Topics

	session/{id}        - sessionStarted, timerUpdate, roundTransition,
	                      sessionComplete, sessionEnd
	session/{id}/votes  - updatedRestaurants after each processed vote

# Delivery contract

At-least-once, last-value-wins, fire-and-forget. Publish failures are logged
and swallowed; a committed vote or round transition is never rolled back
because a websocket write failed. Dead connections are evicted on the first
failed write.

Voting and round logic depend only on the Broadcaster interface, so tests
substitute a recording fake.
*/
package realtime
