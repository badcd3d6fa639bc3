package v1

import (
	"time"

	"github.com/andreyxaxa/listing-admin/internal/usecase"
	"github.com/andreyxaxa/listing-admin/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// NewRoutes registers the sign-in routes on apiV1Group and everything
// else behind gate.
func NewRoutes(
	apiV1Group fiber.Router,
	gate fiber.Handler,
	lst usecase.ListingUseCase,
	imp usecase.ImportUseCase,
	auth usecase.AuthUseCase,
	l logger.Interface,
	streamTTL time.Duration,
	maxArchiveSize int64,
) {
	r := &V1{
		lst:       lst,
		imp:       imp,
		auth:      auth,
		logger:    l,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		streamTTL: streamTTL,

		maxArchiveSize: maxArchiveSize,
	}

	// публичные маршруты регистрируются до гейта
	{
		apiV1Group.Get("/login", r.showLogin)
		apiV1Group.Post("/auth/login", r.login)
	}

	private := apiV1Group.Group("", gate)
	{
		// Auth
		private.Post("/auth/logout", r.logout)
		private.Get("/auth/session", r.session)
		private.Get("/auth/events", r.sessionEvents)

		// Listings
		private.Post("/listings", r.uploadListing)
		private.Get("/listings", r.listListings)
		private.Get("/listings/categories", r.listCategories)
		private.Get("/listings/:id", r.getListing)
		private.Put("/listings/:id", r.updateListing)
		private.Delete("/listings/:id", r.deleteListing)

		// Imports
		private.Post("/imports", r.startImport)
		private.Get("/imports/:id", r.getImport)

		// Dashboard
		private.Get("/dashboard", r.dashboard)

		// UI
		private.Get("/", r.showUI)
	}
}
