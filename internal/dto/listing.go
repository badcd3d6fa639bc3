package dto

import "github.com/andreyxaxa/listing-admin/internal/entity"

// ListingInput is the editable part of a listing, as submitted by the
// upload and edit forms.
type ListingInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Orientation string   `json:"orientation" validate:"required,oneof=landscape portrait square"`
	License     string   `json:"license" validate:"required,oneof=free premium"`
	Price       *float64 `json:"new_price" validate:"required,gte=0"`
	OldPrice    *float64 `json:"old_price" validate:"omitempty,gte=0"`
	Tags        []string `json:"tags" validate:"omitempty,dive,required"`
}

// ListingAssets are the public URLs of a listing's two blobs.
type ListingAssets struct {
	ThumbnailURL string `json:"thumbnail" validate:"required,url"`
	FileURL      string `json:"file_url" validate:"required,url"`
}

// File is an uploaded blob that has not been stored yet.
type File struct {
	Name string
	Data []byte
}

func (f *File) Empty() bool {
	return f == nil || len(f.Data) == 0
}

// ListingFilter narrows a listing list. Empty fields match everything.
type ListingFilter struct {
	Search   string
	Category string
	License  string
}

type Stats struct {
	TotalListings   int64            `json:"total_listings"`
	FreeListings    int64            `json:"free_listings"`
	PremiumListings int64            `json:"premium_listings"`
	TotalDownloads  int64            `json:"total_downloads"`
	TotalValue      float64          `json:"total_value"`
	AveragePrice    float64          `json:"average_price"`
	Recent          []entity.Listing `json:"recent"`
	TopDownloads    []entity.Listing `json:"top_downloads"`
}

// Totals are aggregates computed by the database.
type Totals struct {
	Count     int64
	Free      int64
	Premium   int64
	Downloads int64
	PriceSum  float64
}

// ImportReport is the outcome of one bulk import. FailedIndex is 1-based
// and 0 when every record was imported.
type ImportReport struct {
	Total       int    `json:"total"`
	Imported    int    `json:"imported"`
	FailedIndex int    `json:"failed_index,omitempty"`
	Reason      string `json:"reason,omitempty"`
}
