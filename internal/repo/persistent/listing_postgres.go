package persistent

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/listing-admin/internal/dto"
	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/andreyxaxa/listing-admin/pkg/postgres"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	// Table
	listingsTable = "listings"

	// Columns
	idColumn           = "id"
	titleColumn        = "title"
	descriptionColumn  = "description"
	categoryColumn     = "category"
	orientationColumn  = "orientation"
	licenseColumn      = "license"
	newPriceColumn     = "new_price"
	oldPriceColumn     = "old_price"
	tagsColumn         = "tags"
	thumbnailURLColumn = "thumbnail_url"
	fileURLColumn      = "file_url"
	downloadsColumn    = "download_count"
	createdAtColumn    = "created_at"
)

var listingColumns = []string{
	idColumn,
	titleColumn,
	descriptionColumn,
	categoryColumn,
	orientationColumn,
	licenseColumn,
	newPriceColumn,
	oldPriceColumn,
	tagsColumn,
	thumbnailURLColumn,
	fileURLColumn,
	downloadsColumn,
	createdAtColumn,
}

type ListingRepo struct {
	*postgres.Postgres
}

func NewListingRepo(pg *postgres.Postgres) *ListingRepo {
	return &ListingRepo{pg}
}

// Create inserts the listing and fills in the ID, download count and
// creation time assigned by the database.
func (r *ListingRepo) Create(ctx context.Context, listing *entity.Listing) error {
	sql, args, err := r.Builder.
		Insert(listingsTable).
		Columns(
			titleColumn,
			descriptionColumn,
			categoryColumn,
			orientationColumn,
			licenseColumn,
			newPriceColumn,
			oldPriceColumn,
			tagsColumn,
			thumbnailURLColumn,
			fileURLColumn,
		).
		Values(
			listing.Title,
			listing.Description,
			listing.Category,
			string(listing.Orientation),
			string(listing.License),
			listing.Price,
			listing.OldPrice,
			nonNilTags(listing.Tags),
			listing.ThumbnailURL,
			listing.FileURL,
		).
		Suffix("RETURNING " + idColumn + ", " + downloadsColumn + ", " + createdAtColumn).
		ToSql()
	if err != nil {
		return fmt.Errorf("ListingRepo - Create - r.Builder.ToSql: %w", err)
	}

	// Pool / Tx
	executor := r.GetExecutor(ctx)

	err = executor.QueryRow(ctx, sql, args...).Scan(&listing.ID, &listing.Downloads, &listing.CreatedAt)
	if err != nil {
		return fmt.Errorf("ListingRepo - Create - executor.QueryRow: %w", err)
	}

	return nil
}

func (r *ListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	sql, args, err := r.Builder.
		Select(listingColumns...).
		From(listingsTable).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ListingRepo - GetByID - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	listing, err := scanListing(executor.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ListingRepo - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("ListingRepo - GetByID - executor.QueryRow: %w", err)
	}

	return listing, nil
}

func (r *ListingRepo) List(ctx context.Context, opts dto.ListOptions) ([]entity.Listing, error) {
	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = dto.SortCreatedAt
	}

	direction := " ASC"
	if opts.Desc {
		direction = " DESC"
	}

	builder := r.Builder.
		Select(listingColumns...).
		From(listingsTable).
		OrderBy(string(orderBy)+direction, idColumn+direction)

	if opts.Limit > 0 {
		builder = builder.Limit(opts.Limit)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ListingRepo - List - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("ListingRepo - List - executor.Query: %w", err)
	}
	defer rows.Close()

	listings := make([]entity.Listing, 0, opts.Limit)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("ListingRepo - List - rows.Scan: %w", err)
		}
		listings = append(listings, *listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListingRepo - List - rows.Err: %w", err)
	}

	return listings, nil
}

// totalsQuery aggregates the whole table in one pass. The license split
// uses FILTER so both counts come from the same scan.
func totalsQuery(b squirrel.StatementBuilderType) squirrel.SelectBuilder {
	return b.
		Select("COUNT(*)").
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE "+licenseColumn+" = ?)", string(entity.Free))).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE "+licenseColumn+" = ?)", string(entity.Premium))).
		Columns(
			"COALESCE(SUM("+downloadsColumn+"), 0)",
			"COALESCE(SUM("+newPriceColumn+"), 0)",
		).
		From(listingsTable)
}

func (r *ListingRepo) Totals(ctx context.Context) (dto.Totals, error) {
	sql, args, err := totalsQuery(r.Builder).ToSql()
	if err != nil {
		return dto.Totals{}, fmt.Errorf("ListingRepo - Totals - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var totals dto.Totals
	err = executor.QueryRow(ctx, sql, args...).Scan(
		&totals.Count,
		&totals.Free,
		&totals.Premium,
		&totals.Downloads,
		&totals.PriceSum,
	)
	if err != nil {
		return dto.Totals{}, fmt.Errorf("ListingRepo - Totals - executor.QueryRow: %w", err)
	}

	return totals, nil
}

// Update replaces every editable column. The download count and creation
// time are left alone.
func (r *ListingRepo) Update(ctx context.Context, listing *entity.Listing) error {
	sql, args, err := r.Builder.
		Update(listingsTable).
		Set(titleColumn, listing.Title).
		Set(descriptionColumn, listing.Description).
		Set(categoryColumn, listing.Category).
		Set(orientationColumn, string(listing.Orientation)).
		Set(licenseColumn, string(listing.License)).
		Set(newPriceColumn, listing.Price).
		Set(oldPriceColumn, listing.OldPrice).
		Set(tagsColumn, nonNilTags(listing.Tags)).
		Set(thumbnailURLColumn, listing.ThumbnailURL).
		Set(fileURLColumn, listing.FileURL).
		Where(squirrel.Eq{idColumn: listing.ID}).
		Suffix("RETURNING " + downloadsColumn + ", " + createdAtColumn).
		ToSql()
	if err != nil {
		return fmt.Errorf("ListingRepo - Update - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	err = executor.QueryRow(ctx, sql, args...).Scan(&listing.Downloads, &listing.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("ListingRepo - Update: %w", errs.ErrRecordNotFound)
		}
		return fmt.Errorf("ListingRepo - Update - executor.QueryRow: %w", err)
	}

	return nil
}

func (r *ListingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.Builder.
		Delete(listingsTable).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ListingRepo - Delete - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ListingRepo - Delete - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ListingRepo - Delete: %w", errs.ErrRecordNotFound)
	}

	return nil
}

func (r *ListingRepo) IncrementDownloads(ctx context.Context, id uuid.UUID, by int64) error {
	sql, args, err := r.Builder.
		Update(listingsTable).
		Set(downloadsColumn, squirrel.Expr(downloadsColumn+" + ?", by)).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ListingRepo - IncrementDownloads - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ListingRepo - IncrementDownloads - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ListingRepo - IncrementDownloads: %w", errs.ErrRecordNotFound)
	}

	return nil
}

func scanListing(row pgx.Row) (*entity.Listing, error) {
	var (
		listing     entity.Listing
		orientation string
		license     string
	)

	err := row.Scan(
		&listing.ID,
		&listing.Title,
		&listing.Description,
		&listing.Category,
		&orientation,
		&license,
		&listing.Price,
		&listing.OldPrice,
		&listing.Tags,
		&listing.ThumbnailURL,
		&listing.FileURL,
		&listing.Downloads,
		&listing.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	listing.Orientation = entity.Orientation(orientation)
	listing.License = entity.License(license)

	return &listing, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}

	return tags
}
