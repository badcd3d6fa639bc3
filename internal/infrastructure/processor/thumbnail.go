package processor

import (
	"bytes"
	"fmt"
	"image"

	"github.com/andreyxaxa/listing-admin/internal/infrastructure"
	"github.com/disintegration/imaging"

	// webp thumbnails are accepted by the bucket, register the decoder
	_ "golang.org/x/image/webp"
)

type ThumbnailInspector struct{}

func NewThumbnailInspector() *ThumbnailInspector {
	return &ThumbnailInspector{}
}

// Inspect decodes the image and reports its size and format.
func (p *ThumbnailInspector) Inspect(data []byte) (infrastructure.ThumbnailInfo, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return infrastructure.ThumbnailInfo{}, fmt.Errorf("ThumbnailInspector - Inspect - image.DecodeConfig: %w", err)
	}

	// a valid header is not enough, the pixel data must decode too
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return infrastructure.ThumbnailInfo{}, fmt.Errorf("ThumbnailInspector - Inspect - imaging.Decode: %w", err)
	}

	b := img.Bounds()

	return infrastructure.ThumbnailInfo{
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: format,
	}, nil
}
