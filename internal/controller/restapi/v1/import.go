package v1

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/andreyxaxa/listing-admin/internal/controller/restapi/v1/validate"
	"github.com/andreyxaxa/listing-admin/internal/usecase/auth"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// @Summary  	Start bulk import
// @Description Opens a zip archive with products.json and imports its records in the background
// @Tags 		imports
// @Accept 		mpfd
// @Produce 	json
// @Param 		archive formData file true "Zip archive"
// @Success 	202 {object} entity.ImportJob
// @Failure 	400 {object} response.Error "Missing or malformed archive"
// @Failure 	413 {object} response.Error "Archive too large"
// @Failure 	415 {object} response.Error "Not a zip archive"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/imports [post]
func (r *V1) startImport(ctx *fiber.Ctx) error {
	fh, err := ctx.FormFile("archive")
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "archive is required")
	}

	// 1. валидация расширения и размера
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !validate.AllowedArchiveExtensions[ext] {
		return errorResponse(ctx, http.StatusUnsupportedMediaType, "unsupported archive type. Allowed: .zip")
	}

	if fh.Size > r.maxArchiveSize {
		return errorResponse(ctx, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("%s, limit is %d bytes", errs.ErrArchiveTooLarge, r.maxArchiveSize))
	}

	// 2. читаем
	data, err := readFileHeader(fh)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - startImport")

		return errorResponse(ctx, http.StatusInternalServerError, "problems with reading the archive")
	}

	var startedBy string
	if s, ok := auth.FromContext(ctx.UserContext()); ok {
		startedBy = s.Email
	}

	// 3. запускаем
	job, err := r.imp.Start(ctx.UserContext(), data, startedBy)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrArchiveTooLarge):
			return errorResponse(ctx, http.StatusRequestEntityTooLarge, errs.ErrArchiveTooLarge.Error())
		case errors.Is(err, errs.ErrMissingManifest):
			return errorResponse(ctx, http.StatusBadRequest, errs.ErrMissingManifest.Error())
		case errors.Is(err, errs.ErrInvalidManifestFormat):
			return errorResponse(ctx, http.StatusBadRequest, errs.ErrInvalidManifestFormat.Error())
		}
		r.logger.Error(err, "restapi - v1 - startImport")

		return errorResponse(ctx, http.StatusBadRequest, "archive could not be read")
	}

	return ctx.Status(http.StatusAccepted).JSON(job)
}

// @Summary 	Import progress
// @Tags 		imports
// @Produce 	json
// @Param 		id path string true "Import job ID(uuid)"
// @Success 	200 {object} entity.ImportJob
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	404 {object} response.Error "Import job not found"
// @Router 		/v1/imports/{id} [get]
func (r *V1) getImport(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid id")
	}

	job, err := r.imp.Get(id)
	if err != nil {
		if errors.Is(err, errs.ErrJobNotFound) {
			return errorResponse(ctx, http.StatusNotFound, errs.ErrJobNotFound.Error())
		}
		r.logger.Error(err, "restapi - v1 - getImport")

		return errorResponse(ctx, http.StatusInternalServerError, "internal problems")
	}

	return ctx.JSON(job)
}
