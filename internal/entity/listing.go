package entity

import (
	"time"

	"github.com/google/uuid"
)

type Orientation string

const (
	Landscape Orientation = "landscape"
	Portrait  Orientation = "portrait"
	Square    Orientation = "square"
)

type License string

const (
	Free    License = "free"
	Premium License = "premium"
)

// Listing is one digital product: metadata plus public URLs of its
// thumbnail and purchasable file. ID, Downloads and CreatedAt are owned
// by the database.
type Listing struct {
	ID uuid.UUID `json:"id"`

	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Orientation Orientation `json:"orientation"`
	License     License     `json:"license"`

	Price    float64  `json:"new_price"`
	OldPrice *float64 `json:"old_price"`
	Tags     []string `json:"tags"`

	ThumbnailURL string `json:"thumbnail"`
	FileURL      string `json:"file_url"`

	Downloads int64     `json:"downloads"`
	CreatedAt time.Time `json:"created_at"`
}
