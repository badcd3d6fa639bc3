package kafka

import (
	"testing"

	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestToMessage(t *testing.T) {
	event := &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: uuid.New(),
		Type:        entity.ListingDeleted,
		Payload:     []byte(`{"id":"x"}`),
	}

	msg := toMessage("listing-events", event)

	assert.Equal(t, "listing-events", msg.Topic)
	assert.Equal(t, event.AggregateID.String(), string(msg.Key))
	assert.Equal(t, event.Payload, msg.Value)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_type", msg.Headers[1].Key)
	assert.Equal(t, "listing.deleted", string(msg.Headers[1].Value))
}
