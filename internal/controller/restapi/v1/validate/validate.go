package validate

const (
	// MaxFileSize is the largest product file of the upload form.
	MaxFileSize int64 = 50 * 1024 * 1024

	// MaxThumbnailSize is the largest thumbnail of the upload form.
	MaxThumbnailSize int64 = 5 * 1024 * 1024
)

var AllowedArchiveExtensions = map[string]bool{
	".zip": true,
}
