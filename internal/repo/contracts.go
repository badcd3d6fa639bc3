package repo

import (
	"context"
	"time"

	"github.com/andreyxaxa/listing-admin/internal/dto"
	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/google/uuid"
)

type (
	// ObjectRepo is the blob store.
	ObjectRepo interface {
		Upload(ctx context.Context, key string, data []byte, contentType string) error
		Delete(ctx context.Context, key string) error
		PublicURL(key string) string
		KeyFromURL(publicURL string) (string, bool)
		BucketExists(ctx context.Context) (bool, error)
		CreateBucket(ctx context.Context) error
	}

	ListingRepo interface {
		Create(ctx context.Context, listing *entity.Listing) error
		GetByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error)
		List(ctx context.Context, opts dto.ListOptions) ([]entity.Listing, error)
		Totals(ctx context.Context) (dto.Totals, error)
		Update(ctx context.Context, listing *entity.Listing) error
		Delete(ctx context.Context, id uuid.UUID) error
		IncrementDownloads(ctx context.Context, id uuid.UUID, by int64) error
	}

	OutboxRepo interface {
		Create(ctx context.Context, event *entity.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int, maxRetries int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkAsProcessedBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		IncrementRetryCountBatch(ctx context.Context, IDs uuid.UUIDs) error
		DeleteOldProcessedAndFailed(ctx context.Context, olderThan time.Time) (int64, error)
	}

	SessionRepo interface {
		Save(ctx context.Context, session *entity.Session) error
		Get(ctx context.Context, id uuid.UUID) (*entity.Session, error)
		Delete(ctx context.Context, id uuid.UUID) (bool, error)
		Publish(ctx context.Context, event entity.SessionEvent) error
		Subscribe(ctx context.Context) (<-chan entity.SessionEvent, func() error, error)
	}

	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)
