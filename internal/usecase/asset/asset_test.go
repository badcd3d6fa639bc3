package asset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andreyxaxa/listing-admin/internal/repo/repotest"
	"github.com/andreyxaxa/listing-admin/pkg/logger"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allowedTypes = []string{"image/jpeg", "image/png", "application/pdf"}

func fixedKeyGen() *KeyGen {
	return &KeyGen{
		now:    func() time.Time { return time.UnixMilli(1700000000123) },
		random: func() string { return "abcdef123456" },
	}
}

func TestKeyGen_Key(t *testing.T) {
	g := fixedKeyGen()

	tests := []struct {
		name, folder, file, want string
	}{
		{"jpg", "thumbnails", "sunset.jpg", "thumbnails/1700000000123_abcdef123456.jpg"},
		{"nested path", "files", "images/a.b.PNG", "files/1700000000123_abcdef123456.PNG"},
		{"no extension", "files", "README", "files/1700000000123_abcdef123456"},
		{"trailing dot", "files", "file.", "files/1700000000123_abcdef123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Key(tt.folder, tt.file))
		})
	}
}

func TestKeyGen_RandomLength(t *testing.T) {
	g := NewKeyGen()

	a := g.random()
	b := g.random()

	assert.Len(t, a, randomLen)
	assert.NotEqual(t, a, b)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", contentType("a.JPG", nil))
	assert.Equal(t, "application/x-coreldraw", contentType("logo.cdr", nil))
	assert.Equal(t, "application/pdf", contentType("noext", []byte("%PDF-1.4\n")))
	assert.Equal(t, "text/plain", contentType("notes.txt", []byte("hello")))
}

func TestUploader_Upload(t *testing.T) {
	objects := repotest.NewObjects()
	u := New(objects, 1024, allowedTypes)
	u.keys = fixedKeyGen()

	url, err := u.Upload(context.Background(), []byte("jpegdata"), ThumbnailsFolder, "sunset.jpg")
	require.NoError(t, err)

	key := "thumbnails/1700000000123_abcdef123456.jpg"
	assert.Equal(t, objects.Base+key, url)
	assert.Equal(t, []byte("jpegdata"), objects.Blobs[key])
	assert.Equal(t, "image/jpeg", objects.Types[key])
}

func TestUploader_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		file  string
		setup func(o *repotest.Objects)
	}{
		{"too large", make([]byte, 2048), "big.pdf", nil},
		{"type not allowed", []byte("hello"), "notes.txt", nil},
		{"store refuses", []byte("x"), "a.png", func(o *repotest.Objects) { o.UploadErr = errors.New("access denied") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objects := repotest.NewObjects()
			if tt.setup != nil {
				tt.setup(objects)
			}
			u := New(objects, 1024, allowedTypes)

			_, err := u.Upload(context.Background(), tt.data, FilesFolder, tt.file)
			assert.ErrorIs(t, err, errs.ErrUploadRejected)
			assert.Zero(t, objects.Len())
		})
	}
}

func TestUploader_Remove(t *testing.T) {
	objects := repotest.NewObjects()
	u := New(objects, 1024, allowedTypes)

	url, err := u.Upload(context.Background(), []byte("x"), FilesFolder, "a.pdf")
	require.NoError(t, err)
	require.Equal(t, 1, objects.Len())

	require.NoError(t, u.Remove(context.Background(), url))
	assert.Zero(t, objects.Len())

	assert.Error(t, u.Remove(context.Background(), "https://elsewhere.example/a.pdf"))
}

func TestInitializer_CreatesBucketAndChecksWrite(t *testing.T) {
	objects := repotest.NewObjects()
	i := NewInitializer(objects, 3, 0, logger.Nop{})

	assert.True(t, i.Initialize(context.Background()))
	assert.True(t, objects.Bucket)
	assert.Equal(t, 1, objects.Uploads)
	assert.Zero(t, objects.Len(), "write-check object must be removed")
}

func TestInitializer_Degraded(t *testing.T) {
	objects := repotest.NewObjects()
	objects.ListErr = errors.New("connection refused")

	i := NewInitializer(objects, 3, 0, logger.Nop{})

	var exhausted error
	onExhausted := i.policy.OnExhausted
	i.policy.OnExhausted = func(err error) {
		exhausted = err
		onExhausted(err)
	}

	attempts := 0
	onRetry := i.policy.OnRetry
	i.policy.OnRetry = func(attempt int, err error) {
		attempts = attempt
		onRetry(attempt, err)
	}

	assert.False(t, i.Initialize(context.Background()))
	assert.Equal(t, 2, attempts)
	assert.ErrorContains(t, exhausted, "connection refused")
}

func TestInitializer_WriteCheckFails(t *testing.T) {
	objects := repotest.NewObjects()
	objects.Bucket = true
	objects.UploadErr = errors.New("access denied")

	i := NewInitializer(objects, 2, 0, logger.Nop{})

	assert.False(t, i.Initialize(context.Background()))
}
