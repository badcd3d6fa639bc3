package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/google/uuid"
)

// writeEvent stores a change event in the outbox. Must run inside the
// transaction of the change itself.
func (uc *ListingUseCase) writeEvent(ctx context.Context, t entity.EventType, listing *entity.Listing) error {
	event, err := uc.createOutboxEvent(t, listing)
	if err != nil {
		return fmt.Errorf("ListingUseCase - writeEvent - uc.createOutboxEvent: %w", err)
	}

	if err = uc.outboxRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("ListingUseCase - writeEvent - uc.outboxRepo.Create: %w", err)
	}

	return nil
}

func (uc *ListingUseCase) createOutboxEvent(t entity.EventType, listing *entity.Listing) (*entity.OutboxEvent, error) {
	payload := map[string]interface{}{
		"type": t,
		"id":   listing.ID,
	}

	// удаление несет только id
	if t != entity.ListingDeleted {
		payload["listing"] = listing
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ListingUseCase - createOutboxEvent - json.Marshal: %w", err)
	}

	return &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: listing.ID,
		Type:        t,
		Payload:     b,
		Status:      entity.Pending,
		CreatedAt:   time.Now(),
		RetryCount:  0,
	}, nil
}
