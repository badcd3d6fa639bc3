package asset

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/listing-admin/internal/repo"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
)

// Folders of the bucket.
const (
	ThumbnailsFolder = "thumbnails"
	FilesFolder      = "files"
)

type Uploader struct {
	objects repo.ObjectRepo
	keys    *KeyGen

	maxSize int64
	allowed map[string]struct{}
}

func New(objects repo.ObjectRepo, maxSize int64, allowedTypes []string) *Uploader {
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = struct{}{}
	}

	return &Uploader{
		objects: objects,
		keys:    NewKeyGen(),
		maxSize: maxSize,
		allowed: allowed,
	}
}

// Upload stores data under a fresh key in folder and returns its public URL.
// Every refusal is reported as errs.ErrUploadRejected.
func (u *Uploader) Upload(ctx context.Context, data []byte, folder, originalName string) (string, error) {
	if int64(len(data)) > u.maxSize {
		return "", fmt.Errorf("%w: %s is %d bytes, limit is %d", errs.ErrUploadRejected, originalName, len(data), u.maxSize)
	}

	ct := contentType(originalName, data)
	if _, ok := u.allowed[ct]; !ok {
		return "", fmt.Errorf("%w: mime type %s is not supported", errs.ErrUploadRejected, ct)
	}

	key := u.keys.Key(folder, originalName)

	if err := u.objects.Upload(ctx, key, data, ct); err != nil {
		return "", fmt.Errorf("Uploader - Upload - u.objects.Upload: %w: %w", errs.ErrUploadRejected, err)
	}

	return u.objects.PublicURL(key), nil
}

// Remove deletes a blob previously returned by Upload.
func (u *Uploader) Remove(ctx context.Context, publicURL string) error {
	key, ok := u.objects.KeyFromURL(publicURL)
	if !ok {
		return fmt.Errorf("Uploader - Remove: %q is not an object of this bucket", publicURL)
	}

	if err := u.objects.Delete(ctx, key); err != nil {
		return fmt.Errorf("Uploader - Remove - u.objects.Delete: %w", err)
	}

	return nil
}
