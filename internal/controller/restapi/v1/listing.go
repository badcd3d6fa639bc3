package v1

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/andreyxaxa/listing-admin/internal/controller/restapi/v1/request"
	"github.com/andreyxaxa/listing-admin/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/listing-admin/internal/controller/restapi/v1/validate"
	"github.com/andreyxaxa/listing-admin/internal/dto"
	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/andreyxaxa/listing-admin/internal/usecase/listing"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// @Summary  	Upload listing
// @Description Stores the thumbnail and the product file, then writes the listing row
// @Tags 		listings
// @Accept 		mpfd
// @Produce 	json
// @Param 		title 		formData string true  "Title"
// @Param 		description formData string true  "Description"
// @Param 		category 	formData string true  "Category"
// @Param 		orientation formData string true  "Orientation" Enums(landscape, portrait, square)
// @Param 		license 	formData string true  "License" Enums(free, premium)
// @Param 		new_price 	formData number true  "Price"
// @Param 		old_price 	formData number false "Price before discount"
// @Param 		tags 		formData string false "Comma separated tags"
// @Param 		thumbnail 	formData file   true  "Thumbnail image, 5MB at most"
// @Param 		file 		formData file   true  "Product file"
// @Success 	201 {object} entity.Listing
// @Failure 	400 {object} response.Error "Missing or invalid fields"
// @Failure 	413 {object} response.Error "File too large"
// @Failure 	502 {object} response.Error "Object store refused the upload"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/listings [post]
func (r *V1) uploadListing(ctx *fiber.Ctx) error {
	// 1. поля формы
	in, err := request.Form{
		Title:       ctx.FormValue("title"),
		Description: ctx.FormValue("description"),
		Category:    ctx.FormValue("category"),
		Orientation: ctx.FormValue("orientation"),
		License:     ctx.FormValue("license"),
		Price:       ctx.FormValue("new_price"),
		OldPrice:    ctx.FormValue("old_price"),
		Tags:        ctx.FormValue("tags"),
	}.Input()
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, err.Error())
	}

	// 2. файлы; отсутствие файла проверяет use case
	thumbnail, err := formFile(ctx, "thumbnail", validate.MaxThumbnailSize)
	if err != nil {
		return r.formFileError(ctx, err, "thumbnail")
	}

	file, err := formFile(ctx, "file", validate.MaxFileSize)
	if err != nil {
		return r.formFileError(ctx, err, "file")
	}

	// 3. создаём
	l, err := r.lst.Upload(ctx.UserContext(), in, thumbnail, file)
	if err != nil {
		return r.listingError(ctx, err, "uploadListing")
	}

	return ctx.Status(http.StatusCreated).JSON(l)
}

// @Summary 	List listings
// @Description Newest first, narrowed by search text, category and license
// @Tags 		listings
// @Produce 	json
// @Param 		q 		 query string false "Case-insensitive text in title, description or tags"
// @Param 		category query string false "Exact category"
// @Param 		license  query string false "Exact license" Enums(free, premium)
// @Success 	200 {object} response.Listings
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/listings [get]
func (r *V1) listListings(ctx *fiber.Ctx) error {
	listings, err := r.lst.List(ctx.UserContext(), dto.ListingFilter{
		Search:   ctx.Query("q"),
		Category: ctx.Query("category"),
		License:  ctx.Query("license"),
	})
	if err != nil {
		return r.listingError(ctx, err, "listListings")
	}

	if listings == nil {
		listings = []entity.Listing{}
	}

	return ctx.JSON(response.Listings{
		Listings: listings,
		Total:    len(listings),
	})
}

// @Summary 	List categories
// @Tags 		listings
// @Produce 	json
// @Success 	200 {object} response.Categories
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/listings/categories [get]
func (r *V1) listCategories(ctx *fiber.Ctx) error {
	categories, err := r.lst.Categories(ctx.UserContext())
	if err != nil {
		return r.listingError(ctx, err, "listCategories")
	}

	if categories == nil {
		categories = []string{}
	}

	return ctx.JSON(response.Categories{Categories: categories})
}

// @Summary 	Get listing
// @Tags 		listings
// @Produce 	json
// @Param 		id path string true "Listing ID(uuid)"
// @Success 	200 {object} entity.Listing
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	404 {object} response.Error "Listing not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/listings/{id} [get]
func (r *V1) getListing(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	l, err := r.lst.Get(ctx.UserContext(), id)
	if err != nil {
		return r.listingError(ctx, err, "getListing")
	}

	return ctx.JSON(l)
}

// @Summary 	Edit listing
// @Description Replaces every editable field; the last write wins
// @Tags 		listings
// @Accept 		json
// @Produce 	json
// @Param 		id 		path string 		true "Listing ID(uuid)"
// @Param 		request body request.Update true "Listing fields"
// @Success 	200 {object} entity.Listing
// @Failure 	400 {object} response.Error "Invalid ID or fields"
// @Failure 	404 {object} response.Error "Listing not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/listings/{id} [put]
func (r *V1) updateListing(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	var body request.Update
	if err = ctx.BodyParser(&body); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
	}

	in, assets := body.Input()

	l, err := r.lst.Update(ctx.UserContext(), id, in, assets)
	if err != nil {
		return r.listingError(ctx, err, "updateListing")
	}

	return ctx.JSON(l)
}

// @Summary 	Delete listing
// @Description Deletes the row only, stored blobs are kept
// @Tags 		listings
// @Param		id 	path	 string true "Listing ID(uuid)"
// @Success		204 "Deleted"
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	404 {object} response.Error "Listing not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/listings/{id} [delete]
func (r *V1) deleteListing(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	if err = r.lst.Delete(ctx.UserContext(), id); err != nil {
		return r.listingError(ctx, err, "deleteListing")
	}

	return ctx.SendStatus(http.StatusNoContent)
}

func (r *V1) listingError(ctx *fiber.Ctx, err error, handler string) error {
	switch {
	case errors.Is(err, errs.ErrThumbnailTooLarge):
		return errorResponse(ctx, http.StatusRequestEntityTooLarge, errs.ErrThumbnailTooLarge.Error())
	case listing.IsValidation(err):
		return errorResponse(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrRecordNotFound):
		return errorResponse(ctx, http.StatusNotFound, "listing not found")
	case errors.Is(err, errs.ErrUploadRejected):
		r.logger.Error(err, "restapi - v1 - "+handler)

		return errorResponse(ctx, http.StatusBadGateway, errs.ErrUploadRejected.Error())
	}

	r.logger.Error(err, "restapi - v1 - "+handler)

	return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
}

var errFileTooLarge = errors.New("file too large")

// formFile reads an optional multipart file. A missing part is nil.
func formFile(ctx *fiber.Ctx, field string, maxSize int64) (*dto.File, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return nil, nil
		}

		return nil, err
	}

	if fh.Size > maxSize {
		return nil, fmt.Errorf("%w: %s is more than %d bytes", errFileTooLarge, field, maxSize)
	}

	data, err := readFileHeader(fh)
	if err != nil {
		return nil, err
	}

	return &dto.File{Name: fh.Filename, Data: data}, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("readFileHeader - fh.Open: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("readFileHeader - io.ReadAll: %w", err)
	}

	return data, nil
}

func (r *V1) formFileError(ctx *fiber.Ctx, err error, field string) error {
	if errors.Is(err, errFileTooLarge) {
		if field == "thumbnail" {
			return errorResponse(ctx, http.StatusRequestEntityTooLarge, errs.ErrThumbnailTooLarge.Error())
		}

		return errorResponse(ctx, http.StatusRequestEntityTooLarge, err.Error())
	}

	r.logger.Error(err, "restapi - v1 - formFile")

	return errorResponse(ctx, http.StatusBadRequest, "problems with reading the "+field)
}
