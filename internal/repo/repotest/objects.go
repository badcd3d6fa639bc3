// Package repotest has in-memory implementations of the repo contracts
// for use in tests.
package repotest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/andreyxaxa/listing-admin/internal/repo"
)

var _ repo.ObjectRepo = (*Objects)(nil)

// Objects is an in-memory bucket. Set UploadErr or FailUploadAfter to make
// uploads fail.
type Objects struct {
	mu sync.Mutex

	Base    string
	Blobs   map[string][]byte
	Types   map[string]string
	Bucket  bool
	Uploads int

	UploadErr       error
	FailUploadAfter int // fail every upload after this many successes, 0 disables
	ListErr         error
	CreateErr       error
}

func NewObjects() *Objects {
	return &Objects{
		Base:  "http://storage.local/bucket/",
		Blobs: make(map[string][]byte),
		Types: make(map[string]string),
	}
}

func (o *Objects) Upload(_ context.Context, key string, data []byte, contentType string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.UploadErr != nil {
		return o.UploadErr
	}
	if o.FailUploadAfter > 0 && o.Uploads >= o.FailUploadAfter {
		return errors.New("quota exceeded")
	}

	o.Uploads++
	o.Blobs[key] = append([]byte(nil), data...)
	o.Types[key] = contentType

	return nil
}

func (o *Objects) Delete(_ context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.Blobs, key)
	delete(o.Types, key)

	return nil
}

func (o *Objects) PublicURL(key string) string {
	return o.Base + key
}

func (o *Objects) KeyFromURL(publicURL string) (string, bool) {
	key, ok := strings.CutPrefix(publicURL, o.Base)

	return key, ok && key != ""
}

func (o *Objects) BucketExists(context.Context) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.Bucket, o.ListErr
}

func (o *Objects) CreateBucket(context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.CreateErr != nil {
		return o.CreateErr
	}
	o.Bucket = true

	return nil
}

// Len is the number of stored blobs.
func (o *Objects) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.Blobs)
}
