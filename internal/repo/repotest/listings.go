package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/andreyxaxa/listing-admin/internal/dto"
	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/andreyxaxa/listing-admin/internal/repo"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
	"github.com/google/uuid"
)

var (
	_ repo.ListingRepo = (*Listings)(nil)
	_ repo.OutboxRepo  = (*Outbox)(nil)
	_ repo.Transactor  = Transactor{}
)

// Listings is an in-memory listings table.
type Listings struct {
	mu   sync.Mutex
	rows map[uuid.UUID]entity.Listing
	seq  int

	CreateErr error
	// CreateErrAt fails the n-th Create call (1-based), 0 disables.
	CreateErrAt int
	creates     int
}

func NewListings() *Listings {
	return &Listings{rows: make(map[uuid.UUID]entity.Listing)}
}

func (l *Listings) Create(_ context.Context, listing *entity.Listing) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.creates++
	if l.CreateErr != nil && (l.CreateErrAt == 0 || l.CreateErrAt == l.creates) {
		return l.CreateErr
	}

	l.seq++
	listing.ID = uuid.New()
	listing.Downloads = 0
	// strictly increasing so newest-first ordering is deterministic
	listing.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(l.seq) * time.Second)
	l.rows[listing.ID] = clone(*listing)

	return nil
}

func (l *Listings) GetByID(_ context.Context, id uuid.UUID) (*entity.Listing, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	row, ok := l.rows[id]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	c := clone(row)

	return &c, nil
}

func (l *Listings) List(_ context.Context, opts dto.ListOptions) ([]entity.Listing, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]entity.Listing, 0, len(l.rows))
	for _, row := range l.rows {
		out = append(out, clone(row))
	}

	less := func(a, b entity.Listing) bool {
		if opts.OrderBy == dto.SortDownloads && a.Downloads != b.Downloads {
			return a.Downloads < b.Downloads
		}

		return a.CreatedAt.Before(b.CreatedAt)
	}
	sort.Slice(out, func(i, j int) bool {
		if opts.Desc {
			return less(out[j], out[i])
		}

		return less(out[i], out[j])
	})

	if opts.Limit > 0 && uint64(len(out)) > opts.Limit {
		out = out[:opts.Limit]
	}

	return out, nil
}

func (l *Listings) Totals(context.Context) (dto.Totals, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var t dto.Totals
	for _, row := range l.rows {
		t.Count++
		switch row.License {
		case entity.Free:
			t.Free++
		case entity.Premium:
			t.Premium++
		}
		t.Downloads += row.Downloads
		t.PriceSum += row.Price
	}

	return t, nil
}

func (l *Listings) Update(_ context.Context, listing *entity.Listing) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	old, ok := l.rows[listing.ID]
	if !ok {
		return errs.ErrRecordNotFound
	}
	listing.Downloads = old.Downloads
	listing.CreatedAt = old.CreatedAt
	l.rows[listing.ID] = clone(*listing)

	return nil
}

func (l *Listings) Delete(_ context.Context, id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.rows[id]; !ok {
		return errs.ErrRecordNotFound
	}
	delete(l.rows, id)

	return nil
}

func (l *Listings) IncrementDownloads(_ context.Context, id uuid.UUID, by int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	row, ok := l.rows[id]
	if !ok {
		return errs.ErrRecordNotFound
	}
	row.Downloads += by
	l.rows[id] = row

	return nil
}

// Len is the number of rows.
func (l *Listings) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.rows)
}

func clone(l entity.Listing) entity.Listing {
	if l.Tags != nil {
		l.Tags = append([]string(nil), l.Tags...)
	}
	if l.OldPrice != nil {
		p := *l.OldPrice
		l.OldPrice = &p
	}

	return l
}

// Outbox records events in memory.
type Outbox struct {
	mu     sync.Mutex
	Events []*entity.OutboxEvent

	CreateErr error
}

func (o *Outbox) Create(_ context.Context, event *entity.OutboxEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.CreateErr != nil {
		return o.CreateErr
	}

	if event.Type == entity.ListingUpdated {
		for _, e := range o.Events {
			if e.Type == event.Type && e.AggregateID == event.AggregateID && e.Status == entity.Pending && e.RetryCount == 0 {
				e.Payload = event.Payload
				event.ID = e.ID

				return nil
			}
		}
	}
	o.Events = append(o.Events, event)

	return nil
}

func (o *Outbox) GetPendingEvents(_ context.Context, limit int, maxRetries int) ([]*entity.OutboxEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []*entity.OutboxEvent
	for _, e := range o.Events {
		if e.Status == entity.Pending && e.RetryCount < maxRetries && len(out) < limit {
			out = append(out, e)
		}
	}

	return out, nil
}

func (o *Outbox) MarkAsProcessingBatch(_ context.Context, IDs uuid.UUIDs) error {
	return o.set(IDs, func(e *entity.OutboxEvent) { e.Status = entity.Processing })
}

func (o *Outbox) MarkAsProcessedBatch(_ context.Context, IDs uuid.UUIDs) error {
	now := time.Now()

	return o.set(IDs, func(e *entity.OutboxEvent) {
		e.Status = entity.Processed
		e.ProcessedAt = &now
	})
}

func (o *Outbox) IncrementRetryCountBatch(_ context.Context, IDs uuid.UUIDs) error {
	return o.set(IDs, func(e *entity.OutboxEvent) {
		e.RetryCount++
		e.Status = entity.Pending
	})
}

func (o *Outbox) MarkMaxRetriesAsFailed(_ context.Context, maxRetries int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, e := range o.Events {
		if e.Status == entity.Pending && e.RetryCount >= maxRetries {
			e.Status = entity.Failed
		}
	}

	return nil
}

func (o *Outbox) DeleteOldProcessedAndFailed(_ context.Context, olderThan time.Time) (int64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var (
		kept []*entity.OutboxEvent
		n    int64
	)
	for _, e := range o.Events {
		if (e.Status == entity.Processed || e.Status == entity.Failed) && e.CreatedAt.Before(olderThan) {
			n++

			continue
		}
		kept = append(kept, e)
	}
	o.Events = kept

	return n, nil
}

func (o *Outbox) set(IDs uuid.UUIDs, f func(e *entity.OutboxEvent)) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	found := false
	for _, e := range o.Events {
		for _, id := range IDs {
			if e.ID == id {
				f(e)
				found = true
			}
		}
	}
	if !found {
		return errs.ErrRecordNotFound
	}

	return nil
}

// Transactor runs f without a transaction.
type Transactor struct{}

func (Transactor) WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error {
	return f(ctx)
}
