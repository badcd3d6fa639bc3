package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/andreyxaxa/listing-admin/internal/dto"
	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/andreyxaxa/listing-admin/internal/usecase/asset"
	"github.com/andreyxaxa/listing-admin/pkg/logger"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
)

type (
	AssetStore interface {
		Upload(ctx context.Context, data []byte, folder, originalName string) (string, error)
		Remove(ctx context.Context, publicURL string) error
	}

	ListingWriter interface {
		Insert(ctx context.Context, in dto.ListingInput, assets dto.ListingAssets) (*entity.Listing, error)
	}
)

// Hooks observe a running import. Both are optional.
type Hooks struct {
	// OnState is called on every state change, index is 1-based or 0.
	OnState func(state entity.ImportState, index int)
	// OnProgress is called after each record is fully committed.
	OnProgress func(completed, total int)
}

func (h Hooks) state(s entity.ImportState, index int) {
	if h.OnState != nil {
		h.OnState(s, index)
	}
}

func (h Hooks) progress(completed, total int) {
	if h.OnProgress != nil {
		h.OnProgress(completed, total)
	}
}

// RecordError is the failure of one manifest record.
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("Error in product %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

type AssetNotFoundError struct {
	Kind string
	Name string
}

func (e *AssetNotFoundError) Error() string {
	return fmt.Sprintf("%s file not found: %s", e.Kind, e.Name)
}

func (e *AssetNotFoundError) Unwrap() error {
	return errs.ErrAssetNotFound
}

// EntryReadError is an archive entry that exists but cannot be read:
// corrupt data or a decompressed size above the limit.
type EntryReadError struct {
	Kind string
	Name string
	Err  error
}

func (e *EntryReadError) Error() string {
	return fmt.Sprintf("%s file %s could not be read: %v", e.Kind, e.Name, e.Err)
}

func (e *EntryReadError) Unwrap() error {
	return e.Err
}

// Importer creates listings from an archive, one record at a time, and
// stops at the first record that fails. Records before it stay imported.
type Importer struct {
	assets   AssetStore
	listings ListingWriter
	logger   logger.Interface

	maxArchiveSize int64
}

func New(assets AssetStore, listings ListingWriter, maxArchiveSize int64, l logger.Interface) *Importer {
	return &Importer{
		assets:         assets,
		listings:       listings,
		logger:         l,
		maxArchiveSize: maxArchiveSize,
	}
}

func (i *Importer) Open(data []byte) (*Archive, error) {
	a, err := OpenArchive(data, i.maxArchiveSize)
	if err != nil {
		return nil, fmt.Errorf("Importer - Open - OpenArchive: %w", err)
	}

	return a, nil
}

// Import opens the archive and runs it.
func (i *Importer) Import(ctx context.Context, data []byte, hooks Hooks) (dto.ImportReport, error) {
	hooks.state(entity.ImportReadingArchive, 0)

	a, err := i.Open(data)
	if err != nil {
		hooks.state(entity.ImportFailed, 0)

		return dto.ImportReport{Reason: reason(err)}, err
	}

	return i.Run(ctx, a, hooks)
}

// Run imports the records of an opened archive. A failed record yields a
// *RecordError and a report naming it.
func (i *Importer) Run(ctx context.Context, a *Archive, hooks Hooks) (dto.ImportReport, error) {
	records := a.Manifest()
	report := dto.ImportReport{Total: len(records)}

	for idx, raw := range records {
		n := idx + 1

		if err := ctx.Err(); err != nil {
			return i.fail(report, hooks, n, err)
		}

		if err := i.importRecord(ctx, a, raw, n, hooks); err != nil {
			return i.fail(report, hooks, n, err)
		}

		report.Imported = n
		hooks.progress(n, report.Total)
	}

	hooks.state(entity.ImportDone, 0)

	return report, nil
}

func (i *Importer) fail(report dto.ImportReport, hooks Hooks, index int, err error) (dto.ImportReport, error) {
	report.FailedIndex = index
	report.Reason = reason(err)
	hooks.state(entity.ImportFailed, index)

	return report, &RecordError{Index: index, Err: err}
}

func (i *Importer) importRecord(ctx context.Context, a *Archive, raw RawRecord, n int, hooks Hooks) (err error) {
	// 1. валидируем запись
	hooks.state(entity.ImportValidatingRecord, n)

	rec, err := ParseRecord(raw)
	if err != nil {
		return err
	}

	// загруженные файлы записи удаляем, если запись не дошла до бд
	var uploaded []string
	defer func() {
		if err != nil {
			i.removeUploaded(uploaded)
		}
	}()

	// 2. загружаем превью
	hooks.state(entity.ImportUploadingThumbnail, n)

	thumbnailURL, err := i.uploadEntry(ctx, a, "Thumbnail", rec.ThumbnailFile, asset.ThumbnailsFolder)
	if err != nil {
		return err
	}
	uploaded = append(uploaded, thumbnailURL)

	// 3. загружаем сам файл
	hooks.state(entity.ImportUploadingAsset, n)

	fileURL, err := i.uploadEntry(ctx, a, "Product", rec.ProductFile, asset.FilesFolder)
	if err != nil {
		return err
	}
	uploaded = append(uploaded, fileURL)

	// 4. пишем строку
	hooks.state(entity.ImportInsertingRow, n)

	_, err = i.listings.Insert(ctx, rec.input(), dto.ListingAssets{
		ThumbnailURL: thumbnailURL,
		FileURL:      fileURL,
	})
	if err != nil {
		return fmt.Errorf("Importer - importRecord - i.listings.Insert: %w", err)
	}

	return nil
}

func (i *Importer) uploadEntry(ctx context.Context, a *Archive, kind, name, folder string) (string, error) {
	data, err := a.File(name)
	if err != nil {
		if errors.Is(err, errs.ErrAssetNotFound) {
			return "", &AssetNotFoundError{Kind: kind, Name: name}
		}

		return "", &EntryReadError{Kind: kind, Name: name, Err: err}
	}

	url, err := i.assets.Upload(ctx, data, folder, name)
	if err != nil {
		return "", fmt.Errorf("Importer - uploadEntry - i.assets.Upload: %w", err)
	}

	return url, nil
}

func (i *Importer) removeUploaded(urls []string) {
	// сам импорт уже упал, чистим независимо от его контекста
	ctx := context.Background()

	for _, url := range urls {
		if err := i.assets.Remove(ctx, url); err != nil {
			i.logger.Warn("failed to remove orphaned blob url=%s, error=%v", url, err)
		}
	}
}

func (r Record) input() dto.ListingInput {
	price := r.Price

	return dto.ListingInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Orientation: string(r.Orientation),
		License:     string(r.License),
		Price:       &price,
		OldPrice:    r.OldPrice,
		Tags:        r.Tags,
	}
}

// reason is the message shown to the operator: the innermost typed error
// when there is one, otherwise the whole chain.
func reason(err error) string {
	var (
		missing  *MissingFieldsError
		invalid  *InvalidFieldError
		notFound *AssetNotFoundError
		unread   *EntryReadError
	)

	switch {
	case errors.As(err, &missing):
		return missing.Error()
	case errors.As(err, &invalid):
		return invalid.Error()
	case errors.As(err, &notFound):
		return notFound.Error()
	case errors.As(err, &unread):
		return unread.Error()
	case errors.Is(err, errs.ErrMissingManifest):
		return errs.ErrMissingManifest.Error()
	case errors.Is(err, errs.ErrInvalidManifestFormat):
		return errs.ErrInvalidManifestFormat.Error()
	case errors.Is(err, errs.ErrArchiveTooLarge):
		return errs.ErrArchiveTooLarge.Error()
	}

	return err.Error()
}
