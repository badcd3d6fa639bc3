package restapi

import (
	"time"

	"github.com/andreyxaxa/listing-admin/config"
	"github.com/andreyxaxa/listing-admin/internal/controller/restapi/middleware"
	v1 "github.com/andreyxaxa/listing-admin/internal/controller/restapi/v1"
	"github.com/andreyxaxa/listing-admin/internal/usecase"
	"github.com/andreyxaxa/listing-admin/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// @title Listing admin
// @version 1.0.0
// @host localhost:8080
// @BasePath /v1
func NewRouter(
	app *fiber.App,
	cfg *config.Config,
	lst usecase.ListingUseCase,
	imp usecase.ImportUseCase,
	auth usecase.AuthUseCase,
	l logger.Interface,
) {
	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// корень ведёт в панель
	app.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Redirect("/v1/", fiber.StatusFound)
	})

	// Routers
	apiV1Group := app.Group("/v1")
	{
		v1.NewRoutes(apiV1Group, middleware.Session(auth, l), lst, imp, auth, l, streamTTL(cfg), cfg.Import.MaxArchiveSize)
	}
}

func streamTTL(cfg *config.Config) time.Duration {
	if cfg.Session.EventsStreamTTL <= 0 {
		return time.Minute
	}

	return cfg.Session.EventsStreamTTL
}
