package v1

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// @Summary 	Dashboard
// @Description Listing and download totals, catalogue value, most recent and most downloaded listings
// @Tags 		dashboard
// @Produce 	json
// @Success 	200 {object} dto.Stats
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/v1/dashboard [get]
func (r *V1) dashboard(ctx *fiber.Ctx) error {
	stats, err := r.lst.Stats(ctx.UserContext())
	if err != nil {
		r.logger.Error(err, "restapi - v1 - dashboard")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	return ctx.JSON(stats)
}
