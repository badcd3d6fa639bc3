package listing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/andreyxaxa/listing-admin/internal/dto"
	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/andreyxaxa/listing-admin/internal/infrastructure"
	"github.com/andreyxaxa/listing-admin/internal/repo/repotest"
	"github.com/andreyxaxa/listing-admin/internal/usecase/asset"
	"github.com/andreyxaxa/listing-admin/pkg/logger"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInspector struct {
	err error
}

func (f fakeInspector) Inspect([]byte) (infrastructure.ThumbnailInfo, error) {
	if f.err != nil {
		return infrastructure.ThumbnailInfo{}, f.err
	}

	return infrastructure.ThumbnailInfo{Width: 10, Height: 10, Format: "png"}, nil
}

type fixture struct {
	uc       *ListingUseCase
	listings *repotest.Listings
	outbox   *repotest.Outbox
	objects  *repotest.Objects
}

func newFixture(inspectErr error) fixture {
	f := fixture{
		listings: repotest.NewListings(),
		outbox:   &repotest.Outbox{},
		objects:  repotest.NewObjects(),
	}

	uploader := asset.New(f.objects, 50<<20, []string{"image/png", "image/jpeg", "application/pdf"})
	f.uc = New(f.listings, f.outbox, repotest.Transactor{}, uploader, fakeInspector{err: inspectErr}, logger.Nop{})

	return f
}

func price(p float64) *float64 {
	return &p
}

func sunset() dto.ListingInput {
	return dto.ListingInput{
		Title:       "Sunset",
		Description: "Golden hour over the sea",
		Category:    "Nature",
		Orientation: "landscape",
		License:     "free",
		Price:       price(12.50),
		OldPrice:    price(20),
		Tags:        []string{"sun", "sea"},
	}
}

func files() (*dto.File, *dto.File) {
	return &dto.File{Name: "sunset.png", Data: []byte("png")}, &dto.File{Name: "sunset.pdf", Data: []byte("pdf")}
}

func TestUpload_CreatesOneRow(t *testing.T) {
	f := newFixture(nil)
	thumb, file := files()

	l, err := f.uc.Upload(context.Background(), sunset(), thumb, file)
	require.NoError(t, err)

	assert.Equal(t, 1, f.listings.Len())
	assert.NotEqual(t, uuid.Nil, l.ID)
	assert.Zero(t, l.Downloads)
	assert.False(t, l.CreatedAt.IsZero())
	assert.Equal(t, 2, f.objects.Len())

	require.Len(t, f.outbox.Events, 1)
	assert.Equal(t, entity.ListingCreated, f.outbox.Events[0].Type)
	assert.Equal(t, l.ID, f.outbox.Events[0].AggregateID)
}

func TestUpload_RoundTrip(t *testing.T) {
	f := newFixture(nil)
	thumb, file := files()

	created, err := f.uc.Upload(context.Background(), sunset(), thumb, file)
	require.NoError(t, err)

	got, err := f.uc.Get(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, "Sunset", got.Title)
	assert.Equal(t, 12.5, got.Price)
	require.NotNil(t, got.OldPrice)
	assert.Equal(t, 20.0, *got.OldPrice)
	assert.Equal(t, "Nature", got.Category)
	assert.Equal(t, []string{"sun", "sea"}, got.Tags)
	assert.Equal(t, created.ThumbnailURL, got.ThumbnailURL)
	assert.Equal(t, created.FileURL, got.FileURL)

	key, ok := f.objects.KeyFromURL(got.ThumbnailURL)
	require.True(t, ok)
	assert.Regexp(t, `^thumbnails/`, key)

	key, ok = f.objects.KeyFromURL(got.FileURL)
	require.True(t, ok)
	assert.Regexp(t, `^files/`, key)
}

func TestUpload_RejectedBeforeNetwork(t *testing.T) {
	thumb, file := files()

	noDescription := sunset()
	noDescription.Description = ""

	noPrice := sunset()
	noPrice.Price = nil

	badOrientation := sunset()
	badOrientation.Orientation = "diagonal"

	tests := []struct {
		name      string
		in        dto.ListingInput
		thumbnail *dto.File
		file      *dto.File
		inspect   error
		want      error
		msg       string
	}{
		{"missing description", noDescription, thumb, file, nil, errs.ErrInvalidInput, "description is required"},
		{"missing price", noPrice, thumb, file, nil, errs.ErrInvalidInput, "new_price is required"},
		{"bad orientation", badOrientation, thumb, file, nil, errs.ErrInvalidInput, "orientation must be one of"},
		{"missing thumbnail", sunset(), nil, file, nil, errs.ErrThumbnailRequired, ""},
		{"empty thumbnail", sunset(), &dto.File{Name: "a.png"}, file, nil, errs.ErrThumbnailRequired, ""},
		{"missing file", sunset(), thumb, nil, nil, errs.ErrFileRequired, ""},
		{"thumbnail too large", sunset(), &dto.File{Name: "a.png", Data: make([]byte, MaxThumbnailSize+1)}, file, nil, errs.ErrThumbnailTooLarge, ""},
		{"thumbnail not an image", sunset(), thumb, file, errors.New("unknown format"), errs.ErrInvalidThumbnail, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.inspect)

			_, err := f.uc.Upload(context.Background(), tt.in, tt.thumbnail, tt.file)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, IsValidation(err))
			if tt.msg != "" {
				assert.ErrorContains(t, err, tt.msg)
			}

			assert.Zero(t, f.objects.Uploads)
			assert.Zero(t, f.listings.Len())
		})
	}
}

func TestUpload_InsertFailureRemovesBlobs(t *testing.T) {
	f := newFixture(nil)
	f.listings.CreateErr = errors.New("db is down")
	thumb, file := files()

	_, err := f.uc.Upload(context.Background(), sunset(), thumb, file)
	require.Error(t, err)

	assert.Equal(t, 2, f.objects.Uploads)
	assert.Zero(t, f.objects.Len())
}

func TestUpload_FileRejectedRemovesThumbnail(t *testing.T) {
	f := newFixture(nil)
	thumb, _ := files()

	_, err := f.uc.Upload(context.Background(), sunset(), thumb, &dto.File{Name: "notes.txt", Data: []byte("hello")})
	require.ErrorIs(t, err, errs.ErrUploadRejected)

	assert.Zero(t, f.objects.Len())
	assert.Zero(t, f.listings.Len())
}

func TestUpdate(t *testing.T) {
	f := newFixture(nil)
	thumb, file := files()

	created, err := f.uc.Upload(context.Background(), sunset(), thumb, file)
	require.NoError(t, err)
	require.NoError(t, f.listings.IncrementDownloads(context.Background(), created.ID, 3))

	in := sunset()
	in.Title = "Sunrise"
	in.Orientation = "portrait"
	in.Tags = []string{"dawn"}
	in.OldPrice = nil

	updated, err := f.uc.Update(context.Background(), created.ID, in, dto.ListingAssets{
		ThumbnailURL: "https://cdn.example.com/t.png",
		FileURL:      "https://cdn.example.com/f.pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, "Sunrise", updated.Title)
	assert.Equal(t, int64(3), updated.Downloads)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	got, err := f.uc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.Portrait, got.Orientation)
	assert.Equal(t, []string{"dawn"}, got.Tags)
	assert.Nil(t, got.OldPrice)
	assert.Equal(t, "https://cdn.example.com/f.pdf", got.FileURL)

	require.Len(t, f.outbox.Events, 2)
	assert.Equal(t, entity.ListingUpdated, f.outbox.Events[1].Type)
}

func TestUpdate_MergesPendingUpdateEvents(t *testing.T) {
	f := newFixture(nil)
	thumb, file := files()
	assets := dto.ListingAssets{ThumbnailURL: "https://cdn.example.com/t.png", FileURL: "https://cdn.example.com/f.pdf"}

	created, err := f.uc.Upload(context.Background(), sunset(), thumb, file)
	require.NoError(t, err)

	for _, title := range []string{"Dawn", "Noon", "Dusk"} {
		in := sunset()
		in.Title = title
		_, err = f.uc.Update(context.Background(), created.ID, in, assets)
		require.NoError(t, err)
	}

	require.Len(t, f.outbox.Events, 2)
	assert.Equal(t, entity.ListingUpdated, f.outbox.Events[1].Type)
	assert.Contains(t, string(f.outbox.Events[1].Payload), `"title":"Dusk"`)

	// a retried update is not overwritten, the next one gets its own row
	f.outbox.Events[1].RetryCount = 1

	in := sunset()
	in.Title = "Night"
	_, err = f.uc.Update(context.Background(), created.ID, in, assets)
	require.NoError(t, err)

	require.Len(t, f.outbox.Events, 3)
	assert.Contains(t, string(f.outbox.Events[1].Payload), `"title":"Dusk"`)
	assert.Contains(t, string(f.outbox.Events[2].Payload), `"title":"Night"`)
}

func TestUpdate_Errors(t *testing.T) {
	f := newFixture(nil)
	assets := dto.ListingAssets{ThumbnailURL: "https://cdn.example.com/t.png", FileURL: "https://cdn.example.com/f.pdf"}

	_, err := f.uc.Update(context.Background(), uuid.New(), sunset(), assets)
	assert.ErrorIs(t, err, errs.ErrRecordNotFound)

	_, err = f.uc.Update(context.Background(), uuid.New(), sunset(), dto.ListingAssets{ThumbnailURL: "not a url"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestDelete(t *testing.T) {
	f := newFixture(nil)
	thumb, file := files()

	created, err := f.uc.Upload(context.Background(), sunset(), thumb, file)
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete(context.Background(), created.ID))
	assert.Zero(t, f.listings.Len())
	// blobs are not cleaned up on delete
	assert.Equal(t, 2, f.objects.Len())

	require.Len(t, f.outbox.Events, 2)
	deleted := f.outbox.Events[1]
	assert.Equal(t, entity.ListingDeleted, deleted.Type)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(deleted.Payload, &payload))
	assert.Equal(t, created.ID.String(), payload["id"])
	assert.NotContains(t, payload, "listing")

	_, err = f.uc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, errs.ErrRecordNotFound)
}

func TestDelete_Unknown(t *testing.T) {
	f := newFixture(nil)
	thumb, file := files()

	_, err := f.uc.Upload(context.Background(), sunset(), thumb, file)
	require.NoError(t, err)

	err = f.uc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, errs.ErrRecordNotFound)
	assert.Equal(t, 1, f.listings.Len())
	assert.Len(t, f.outbox.Events, 1)
}

func TestList_NewestFirstAndFiltered(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	insert := func(title, category, license string, tags ...string) {
		in := sunset()
		in.Title = title
		in.Category = category
		in.License = license
		in.Tags = tags

		_, err := f.uc.Insert(ctx, in, dto.ListingAssets{
			ThumbnailURL: "https://cdn.example.com/t.png",
			FileURL:      "https://cdn.example.com/f.pdf",
		})
		require.NoError(t, err)
	}

	insert("Forest", "Nature", "free", "trees")
	insert("City", "Urban", "premium", "night")
	insert("Lake", "Nature", "premium", "water")

	all, err := f.uc.List(ctx, dto.ListingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Lake", "City", "Forest"}, titles(all))

	got, err := f.uc.List(ctx, dto.ListingFilter{Category: "Nature", License: "premium"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Lake"}, titles(got))

	got, err = f.uc.List(ctx, dto.ListingFilter{Search: "NIGHT"})
	require.NoError(t, err)
	assert.Equal(t, []string{"City"}, titles(got))

	cats, err := f.uc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nature", "Urban"}, cats)
}

func TestStats(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	stats, err := f.uc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.AveragePrice)
	assert.Zero(t, stats.FreeListings)
	assert.Empty(t, stats.Recent)

	var ids []uuid.UUID
	for i, p := range []float64{10, 20, 30, 40, 50, 60} {
		in := sunset()
		in.Title = string(rune('A' + i))
		in.Price = price(p)
		if i%3 == 0 {
			in.License = "premium"
		}

		l, err := f.uc.Insert(ctx, in, dto.ListingAssets{
			ThumbnailURL: "https://cdn.example.com/t.png",
			FileURL:      "https://cdn.example.com/f.pdf",
		})
		require.NoError(t, err)
		ids = append(ids, l.ID)
	}

	require.NoError(t, f.uc.RegisterDownloads(ctx, ids[0], 7))
	require.NoError(t, f.uc.RegisterDownloads(ctx, ids[2], 3))

	stats, err = f.uc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(6), stats.TotalListings)
	assert.Equal(t, int64(4), stats.FreeListings)
	assert.Equal(t, int64(2), stats.PremiumListings)
	assert.Equal(t, int64(10), stats.TotalDownloads)
	assert.Equal(t, 210.0, stats.TotalValue)
	assert.Equal(t, 35.0, stats.AveragePrice)

	assert.Equal(t, []string{"F", "E", "D", "C", "B"}, titles(stats.Recent))
	require.Len(t, stats.TopDownloads, 5)
	assert.Equal(t, []string{"A", "C"}, titles(stats.TopDownloads[:2]))
}

func TestRegisterDownloads_Unknown(t *testing.T) {
	f := newFixture(nil)

	err := f.uc.RegisterDownloads(context.Background(), uuid.New(), 1)
	assert.ErrorIs(t, err, errs.ErrRecordNotFound)
}

func titles(ls []entity.Listing) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.Title)
	}

	return out
}
