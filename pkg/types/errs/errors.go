package errs

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidInput   = errors.New("invalid input")

	ErrMissingManifest       = errors.New("archive must contain a products.json file")
	ErrInvalidManifestFormat = errors.New("products.json must contain an array of products")
	ErrArchiveTooLarge       = errors.New("archive is too large")
	ErrAssetNotFound         = errors.New("file not found in archive")

	ErrUploadRejected = errors.New("upload rejected by object store")

	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUnauthenticated    = errors.New("not authenticated")

	ErrThumbnailRequired = errors.New("please upload a thumbnail image")
	ErrFileRequired      = errors.New("please upload a product file")
	ErrThumbnailTooLarge = errors.New("thumbnail must be 5MB or smaller")
	ErrInvalidThumbnail  = errors.New("thumbnail is not a valid image")

	ErrJobNotFound = errors.New("import job not found")

	ErrConsumerClosed = errors.New("event consumer closed")
)
