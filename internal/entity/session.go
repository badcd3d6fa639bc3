package entity

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionEventType string

const (
	SignedIn  SessionEventType = "SIGNED_IN"
	SignedOut SessionEventType = "SIGNED_OUT"
)

type SessionEvent struct {
	Type      SessionEventType `json:"type"`
	SessionID uuid.UUID        `json:"session_id"`
	Email     string           `json:"email"`
	At        time.Time        `json:"at"`
}
