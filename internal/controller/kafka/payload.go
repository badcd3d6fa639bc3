package kafka

import "github.com/google/uuid"

// DownloadEventPayload is published by the storefront each time a listing
// file is downloaded. Count defaults to 1.
type DownloadEventPayload struct {
	ListingID uuid.UUID `json:"listing_id"`
	Count     int64     `json:"count,omitempty"`
}
