package infrastructure

import (
	"context"
	"time"

	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/google/uuid"
)

type (
	EventsSender interface {
		SendEvents(ctx context.Context, events []*entity.OutboxEvent) error
		Close() error
	}

	ThumbnailInspector interface {
		Inspect(data []byte) (ThumbnailInfo, error)
	}

	TokenIssuer interface {
		Issue(sessionID uuid.UUID, expiresAt time.Time) (string, error)
		Parse(token string) (uuid.UUID, error)
	}
)

// ThumbnailInfo describes a decoded thumbnail image.
type ThumbnailInfo struct {
	Width  int
	Height int
	Format string
}

// Orientation is the orientation the image dimensions suggest.
func (i ThumbnailInfo) Orientation() entity.Orientation {
	switch {
	case i.Width > i.Height:
		return entity.Landscape
	case i.Width < i.Height:
		return entity.Portrait
	default:
		return entity.Square
	}
}
