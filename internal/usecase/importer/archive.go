package importer

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
)

// ManifestName is the manifest entry expected at the archive root.
const ManifestName = "products.json"

// RawRecord is one manifest object before validation.
type RawRecord map[string]json.RawMessage

// Archive is an opened import archive.
type Archive struct {
	manifest []RawRecord
	files    map[string]*zip.File

	// ceiling for one decompressed entry, 0 means unlimited
	maxEntry int64
}

// OpenArchive checks the size ceiling, opens the zip and decodes the
// manifest.
func OpenArchive(data []byte, maxSize int64) (*Archive, error) {
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, errs.ErrArchiveTooLarge
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("OpenArchive - zip.NewReader: %w", err)
	}

	a := &Archive{
		files:    make(map[string]*zip.File, len(zr.File)),
		maxEntry: maxSize,
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		a.files[cleanName(f.Name)] = f
	}

	mf, ok := a.files[ManifestName]
	if !ok {
		return nil, errs.ErrMissingManifest
	}

	raw, err := readEntry(mf, a.maxEntry)
	if err != nil {
		return nil, fmt.Errorf("OpenArchive - readEntry: %w", err)
	}

	if err = json.Unmarshal(raw, &a.manifest); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidManifestFormat, err)
	}

	// null decodes into a nil slice without error
	if a.manifest == nil {
		return nil, errs.ErrInvalidManifestFormat
	}

	return a, nil
}

// Manifest returns the records in manifest order.
func (a *Archive) Manifest() []RawRecord {
	return a.manifest
}

// File returns the content of a named entry. An absent entry is
// errs.ErrAssetNotFound, any other error comes from reading the entry.
func (a *Archive) File(name string) ([]byte, error) {
	f, ok := a.files[cleanName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrAssetNotFound, name)
	}

	return readEntry(f, a.maxEntry)
}

func readEntry(f *zip.File, limit int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: entry is larger than %d bytes", errs.ErrArchiveTooLarge, limit)
	}

	return data, nil
}

func cleanName(name string) string {
	return strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(name, `\`, "/")), "/")
}
