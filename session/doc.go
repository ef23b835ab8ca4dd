// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session manages session lifecycle: creation with a unique 6-digit
join code and a seeded candidate pool, participant joins, start/end
transitions, and the periodic cleanup sweep that expires abandoned sessions.
*/
package session
