package v1

import (
	"time"

	"github.com/andreyxaxa/listing-admin/internal/usecase"
	"github.com/andreyxaxa/listing-admin/pkg/logger"
	"github.com/go-playground/validator/v10"
)

type V1 struct {
	lst    usecase.ListingUseCase
	imp    usecase.ImportUseCase
	auth   usecase.AuthUseCase
	logger logger.Interface

	validate  *validator.Validate
	streamTTL time.Duration

	// largest bulk import archive, from configuration
	maxArchiveSize int64
}
