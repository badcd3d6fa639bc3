package kafka

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/andreyxaxa/listing-admin/pkg/kafka/producer"
	"github.com/segmentio/kafka-go"
)

type EventProducer struct {
	*producer.Producer
	topic string
}

func NewEventProducer(producer *producer.Producer, topic string) *EventProducer {
	return &EventProducer{
		producer,
		topic,
	}
}

// SendEvents writes listing change events keyed by listing ID, so changes
// to one listing stay ordered within a partition.
func (ep *EventProducer) SendEvents(ctx context.Context, events []*entity.OutboxEvent) error {
	msgsToSend := make([]kafka.Message, 0, len(events))

	for _, event := range events {
		msgsToSend = append(msgsToSend, toMessage(ep.topic, event))
	}

	if len(msgsToSend) == 0 {
		return nil
	}

	err := ep.Writer.WriteMessages(ctx, msgsToSend...)
	if err != nil {
		return fmt.Errorf("EventProducer - SendEvents - ep.Writer.WriteMessages: %w", err)
	}

	return nil
}

func toMessage(topic string, event *entity.OutboxEvent) kafka.Message {
	return kafka.Message{
		Topic: topic,
		Key:   []byte(event.AggregateID.String()),
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID.String())},
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
}

func (ep *EventProducer) Close() error {
	err := ep.Producer.Close()
	if err != nil {
		return fmt.Errorf("EventProducer - Close: %w", err)
	}

	return nil
}
