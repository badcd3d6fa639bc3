package kafka

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/andreyxaxa/listing-admin/internal/dto"
	"github.com/andreyxaxa/listing-admin/internal/repo/repotest"
	"github.com/andreyxaxa/listing-admin/internal/usecase/listing"
	"github.com/andreyxaxa/listing-admin/pkg/logger"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConsumer struct {
	msgs chan kafka.Message

	mu        sync.Mutex
	committed []kafka.Message
	closed    bool
}

func (f *fakeConsumer) ReadEvent(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-f.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (f *fakeConsumer) CommitEvent(_ context.Context, m kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.committed = append(f.committed, m)

	return nil
}

func (f *fakeConsumer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true

	return nil
}

func (f *fakeConsumer) commits() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.committed)
}

func TestKafkaController_CountsDownloads(t *testing.T) {
	listings := repotest.NewListings()
	uc := listing.New(listings, &repotest.Outbox{}, repotest.Transactor{}, nil, nil, logger.Nop{})

	price := 5.0
	l, err := uc.Insert(context.Background(), dto.ListingInput{
		Title: "A", Description: "a", Category: "c", Orientation: "square", License: "free", Price: &price,
	}, dto.ListingAssets{ThumbnailURL: "https://cdn.example.com/t.png", FileURL: "https://cdn.example.com/f.pdf"})
	require.NoError(t, err)

	ec := &fakeConsumer{msgs: make(chan kafka.Message, 8)}
	ec.msgs <- kafka.Message{Value: []byte(`{"listing_id":"` + l.ID.String() + `"}`)}
	ec.msgs <- kafka.Message{Value: []byte(`{"listing_id":"` + l.ID.String() + `","count":4}`)}
	ec.msgs <- kafka.Message{Value: []byte(`{"listing_id":"` + uuid.NewString() + `"}`)}
	ec.msgs <- kafka.Message{Value: []byte(`not json`)}

	c := New(uc, ec, logger.Nop{}, time.Second, time.Second, 2)
	require.NoError(t, c.Start(context.Background()))

	// every message is committed: two counted, one unknown listing, one broken
	require.Eventually(t, func() bool { return ec.commits() == 4 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))
	assert.True(t, ec.closed)

	got, err := uc.Get(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Downloads)
}

type closedConsumer struct {
	fakeConsumer
	reads int
}

func (c *closedConsumer) ReadEvent(context.Context) (kafka.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reads++

	return kafka.Message{}, errs.ErrConsumerClosed
}

func (c *closedConsumer) readCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.reads
}

func TestKafkaController_StopsOnClosedConsumer(t *testing.T) {
	ec := &closedConsumer{}

	c := New(nil, ec, logger.Nop{}, time.Second, time.Second, 1)
	require.NoError(t, c.Start(context.Background()))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, ec.readCount())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))
}
