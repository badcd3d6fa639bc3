package usecase

import (
	"context"
	"time"

	"github.com/andreyxaxa/listing-admin/internal/dto"
	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/google/uuid"
)

type (
	ListingUseCase interface {
		Upload(ctx context.Context, in dto.ListingInput, thumbnail, file *dto.File) (*entity.Listing, error)
		Insert(ctx context.Context, in dto.ListingInput, assets dto.ListingAssets) (*entity.Listing, error)
		Get(ctx context.Context, id uuid.UUID) (*entity.Listing, error)
		List(ctx context.Context, filter dto.ListingFilter) ([]entity.Listing, error)
		Categories(ctx context.Context) ([]string, error)
		Update(ctx context.Context, id uuid.UUID, in dto.ListingInput, assets dto.ListingAssets) (*entity.Listing, error)
		Delete(ctx context.Context, id uuid.UUID) error
		Stats(ctx context.Context) (dto.Stats, error)
		RegisterDownloads(ctx context.Context, id uuid.UUID, n int64) error
	}

	OutboxUseCase interface {
		GetPendingEvents(ctx context.Context, limit, maxRetries int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error
		IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		CleanupOutbox(ctx context.Context, retention time.Duration) error
	}

	ImportUseCase interface {
		Start(ctx context.Context, data []byte, startedBy string) (entity.ImportJob, error)
		Get(id uuid.UUID) (entity.ImportJob, error)
	}

	AuthUseCase interface {
		SignIn(ctx context.Context, email, password string) (string, *entity.Session, error)
		SignOut(ctx context.Context, token string) error
		Current(ctx context.Context, token string) (*entity.Session, error)
		Subscribe(ctx context.Context) (<-chan entity.SessionEvent, func() error, error)
	}
)
