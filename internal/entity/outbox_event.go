package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	ListingCreated EventType = "listing.created"
	ListingUpdated EventType = "listing.updated"
	ListingDeleted EventType = "listing.deleted"
)

// OutboxEvent is a listing change waiting to be relayed to Kafka.
type OutboxEvent struct {
	ID          uuid.UUID  `json:"id"`
	AggregateID uuid.UUID  `json:"aggregate_id"`
	Type        EventType  `json:"type"`
	Payload     []byte     `json:"payload"`
	Status      Status     `json:"status"` // pending, processing, processed, failed
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	RetryCount  int        `json:"retry_count"`
}
