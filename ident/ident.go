// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ident generates row identifiers and session join codes.
package ident

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// NewID returns a random UUID string for database row identity.
func NewID() string {
	return uuid.NewString()
}

// NewJoinCode generates a 6-digit session join code, leading zeros included.
// Uniqueness is the caller's problem; codes collide at 1-in-a-million and the
// session service retries against the unique constraint.
func NewJoinCode() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("failed to generate join code: %w", err)
	}
	n := binary.BigEndian.Uint32(b[:]) % 1_000_000
	return fmt.Sprintf("%06d", n), nil
}
