package listing

import (
	"context"
	"errors"
	"fmt"

	"github.com/andreyxaxa/listing-admin/internal/dto"
	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/andreyxaxa/listing-admin/internal/infrastructure"
	"github.com/andreyxaxa/listing-admin/internal/repo"
	"github.com/andreyxaxa/listing-admin/internal/usecase/asset"
	"github.com/andreyxaxa/listing-admin/pkg/logger"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MaxThumbnailSize is the largest thumbnail the upload form accepts.
const MaxThumbnailSize = 5 << 20

type AssetStore interface {
	Upload(ctx context.Context, data []byte, folder, originalName string) (string, error)
	Remove(ctx context.Context, publicURL string) error
}

type ListingUseCase struct {
	listingRepo repo.ListingRepo
	outboxRepo  repo.OutboxRepo
	transactor  repo.Transactor
	assets      AssetStore
	inspector   infrastructure.ThumbnailInspector
	validate    *validator.Validate

	logger logger.Interface
}

func New(
	listingRepo repo.ListingRepo,
	outboxRepo repo.OutboxRepo,
	transactor repo.Transactor,
	assets AssetStore,
	inspector infrastructure.ThumbnailInspector,
	l logger.Interface,
) *ListingUseCase {
	return &ListingUseCase{
		listingRepo: listingRepo,
		outboxRepo:  outboxRepo,
		transactor:  transactor,
		assets:      assets,
		inspector:   inspector,
		validate:    newValidator(),
		logger:      l,
	}
}

// Upload creates a listing from the upload form. Every field and both
// files are checked before anything is sent to storage.
func (uc *ListingUseCase) Upload(ctx context.Context, in dto.ListingInput, thumbnail, file *dto.File) (*entity.Listing, error) {
	// 1. проверяем поля и файлы до любых сетевых вызовов
	if err := uc.validateStruct(in); err != nil {
		return nil, err
	}

	if thumbnail.Empty() {
		return nil, errs.ErrThumbnailRequired
	}

	if file.Empty() {
		return nil, errs.ErrFileRequired
	}

	if len(thumbnail.Data) > MaxThumbnailSize {
		return nil, errs.ErrThumbnailTooLarge
	}

	if _, err := uc.inspector.Inspect(thumbnail.Data); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidThumbnail, err)
	}

	// 2. загружаем превью и файл
	thumbnailURL, err := uc.assets.Upload(ctx, thumbnail.Data, asset.ThumbnailsFolder, thumbnail.Name)
	if err != nil {
		return nil, fmt.Errorf("ListingUseCase - Upload - uc.assets.Upload(thumbnail): %w", err)
	}

	fileURL, err := uc.assets.Upload(ctx, file.Data, asset.FilesFolder, file.Name)
	if err != nil {
		uc.removeAssets(thumbnailURL)

		return nil, fmt.Errorf("ListingUseCase - Upload - uc.assets.Upload(file): %w", err)
	}

	// 3. пишем строку
	listing, err := uc.Insert(ctx, in, dto.ListingAssets{
		ThumbnailURL: thumbnailURL,
		FileURL:      fileURL,
	})
	if err != nil {
		uc.removeAssets(thumbnailURL, fileURL)

		return nil, fmt.Errorf("ListingUseCase - Upload - uc.Insert: %w", err)
	}

	return listing, nil
}

// Insert writes a listing whose blobs are already stored, together with
// its change event.
func (uc *ListingUseCase) Insert(ctx context.Context, in dto.ListingInput, assets dto.ListingAssets) (*entity.Listing, error) {
	if err := uc.validateStruct(in); err != nil {
		return nil, err
	}

	if err := uc.validateStruct(assets); err != nil {
		return nil, err
	}

	listing := newListing(in, assets)

	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		// 1. основная таблица
		if err := uc.listingRepo.Create(ctx, listing); err != nil {
			return fmt.Errorf("ListingUseCase - Insert - uc.listingRepo.Create: %w", err)
		}

		// 2. аутбокс
		return uc.writeEvent(ctx, entity.ListingCreated, listing)
	})
	if err != nil {
		return nil, fmt.Errorf("ListingUseCase - Insert - uc.transactor.WithinTransaction: %w", err)
	}

	return listing, nil
}

func (uc *ListingUseCase) Get(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ListingUseCase - Get - uc.listingRepo.GetByID: %w", err)
	}

	return listing, nil
}

// List returns the listings matching filter, newest first.
func (uc *ListingUseCase) List(ctx context.Context, filter dto.ListingFilter) ([]entity.Listing, error) {
	listings, err := uc.listingRepo.List(ctx, dto.ListOptions{OrderBy: dto.SortCreatedAt, Desc: true})
	if err != nil {
		return nil, fmt.Errorf("ListingUseCase - List - uc.listingRepo.List: %w", err)
	}

	return Filter(listings, filter), nil
}

func (uc *ListingUseCase) Categories(ctx context.Context) ([]string, error) {
	listings, err := uc.listingRepo.List(ctx, dto.ListOptions{OrderBy: dto.SortCreatedAt, Desc: true})
	if err != nil {
		return nil, fmt.Errorf("ListingUseCase - Categories - uc.listingRepo.List: %w", err)
	}

	return Categories(listings), nil
}

// Update replaces the editable fields of a listing. The last write wins.
func (uc *ListingUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	in dto.ListingInput,
	assets dto.ListingAssets,
) (*entity.Listing, error) {
	if err := uc.validateStruct(in); err != nil {
		return nil, err
	}

	if err := uc.validateStruct(assets); err != nil {
		return nil, err
	}

	listing := newListing(in, assets)
	listing.ID = id

	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.listingRepo.Update(ctx, listing); err != nil {
			return fmt.Errorf("ListingUseCase - Update - uc.listingRepo.Update: %w", err)
		}

		return uc.writeEvent(ctx, entity.ListingUpdated, listing)
	})
	if err != nil {
		return nil, fmt.Errorf("ListingUseCase - Update - uc.transactor.WithinTransaction: %w", err)
	}

	return listing, nil
}

// Delete removes the row only. Its blobs stay in storage.
func (uc *ListingUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.listingRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("ListingUseCase - Delete - uc.listingRepo.Delete: %w", err)
		}

		return uc.writeEvent(ctx, entity.ListingDeleted, &entity.Listing{ID: id})
	})
	if err != nil {
		return fmt.Errorf("ListingUseCase - Delete - uc.transactor.WithinTransaction: %w", err)
	}

	return nil
}

// RegisterDownloads adds n to the download counter of a listing.
func (uc *ListingUseCase) RegisterDownloads(ctx context.Context, id uuid.UUID, n int64) error {
	if n <= 0 {
		return nil
	}

	if err := uc.listingRepo.IncrementDownloads(ctx, id, n); err != nil {
		return fmt.Errorf("ListingUseCase - RegisterDownloads - uc.listingRepo.IncrementDownloads: %w", err)
	}

	return nil
}

func (uc *ListingUseCase) removeAssets(urls ...string) {
	ctx := context.Background()

	for _, url := range urls {
		if err := uc.assets.Remove(ctx, url); err != nil {
			uc.logger.Warn("failed to remove blob url=%s, error=%v", url, err)
		}
	}
}

func newListing(in dto.ListingInput, assets dto.ListingAssets) *entity.Listing {
	l := &entity.Listing{
		Title:        in.Title,
		Description:  in.Description,
		Category:     in.Category,
		Orientation:  entity.Orientation(in.Orientation),
		License:      entity.License(in.License),
		OldPrice:     in.OldPrice,
		Tags:         in.Tags,
		ThumbnailURL: assets.ThumbnailURL,
		FileURL:      assets.FileURL,
	}

	if in.Price != nil {
		l.Price = *in.Price
	}

	// пустая старая цена не хранится
	if l.OldPrice != nil && *l.OldPrice == 0 {
		l.OldPrice = nil
	}

	return l
}

// IsValidation reports whether err was caused by the submitted input.
func IsValidation(err error) bool {
	return errors.Is(err, errs.ErrInvalidInput) ||
		errors.Is(err, errs.ErrThumbnailRequired) ||
		errors.Is(err, errs.ErrFileRequired) ||
		errors.Is(err, errs.ErrThumbnailTooLarge) ||
		errors.Is(err, errs.ErrInvalidThumbnail)
}
