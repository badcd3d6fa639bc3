package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/andreyxaxa/listing-admin/pkg/kafka/consumer"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
	"github.com/segmentio/kafka-go"
)

// DownloadConsumer reads storefront download events. Offsets are
// committed one message at a time by the caller.
type DownloadConsumer struct {
	*consumer.Consumer
}

func NewDownloadConsumer(c *consumer.Consumer) *DownloadConsumer {
	return &DownloadConsumer{c}
}

// ReadEvent blocks until the next message. It returns errs.ErrConsumerClosed
// once the reader has been closed.
func (dc *DownloadConsumer) ReadEvent(ctx context.Context) (kafka.Message, error) {
	msg, err := dc.Reader.FetchMessage(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return kafka.Message{}, errs.ErrConsumerClosed
		}

		return kafka.Message{}, fmt.Errorf("DownloadConsumer - ReadEvent - dc.Reader.FetchMessage: %w", err)
	}

	return msg, nil
}

func (dc *DownloadConsumer) CommitEvent(ctx context.Context, event kafka.Message) error {
	if err := dc.Reader.CommitMessages(ctx, event); err != nil {
		return fmt.Errorf("DownloadConsumer - CommitEvent - dc.Reader.CommitMessages(offset %d): %w", event.Offset, err)
	}

	return nil
}

func (dc *DownloadConsumer) Close() error {
	if err := dc.Consumer.Close(); err != nil {
		return fmt.Errorf("DownloadConsumer - Close: %w", err)
	}

	return nil
}
