package request

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andreyxaxa/listing-admin/internal/dto"
)

// Form is the multipart upload form, as read from the request.
type Form struct {
	Title       string
	Description string
	Category    string
	Orientation string
	License     string
	Price       string
	OldPrice    string
	Tags        string
}

// Input converts the form. Prices are parsed here, everything else is
// validated by the use case.
func (f Form) Input() (dto.ListingInput, error) {
	in := dto.ListingInput{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Category:    strings.TrimSpace(f.Category),
		Orientation: strings.TrimSpace(f.Orientation),
		License:     strings.TrimSpace(f.License),
		Tags:        SplitTags(f.Tags),
	}

	var err error
	if in.Price, err = parsePrice(f.Price, "new_price"); err != nil {
		return dto.ListingInput{}, err
	}
	if in.OldPrice, err = parsePrice(f.OldPrice, "old_price"); err != nil {
		return dto.ListingInput{}, err
	}

	return in, nil
}

// Update is the JSON body of a listing edit.
type Update struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Orientation  string   `json:"orientation"`
	License      string   `json:"license"`
	Price        *float64 `json:"new_price"`
	OldPrice     *float64 `json:"old_price"`
	Tags         []string `json:"tags"`
	ThumbnailURL string   `json:"thumbnail"`
	FileURL      string   `json:"file_url"`
}

func (u Update) Input() (dto.ListingInput, dto.ListingAssets) {
	tags := make([]string, 0, len(u.Tags))
	for _, t := range u.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	return dto.ListingInput{
			Title:       strings.TrimSpace(u.Title),
			Description: strings.TrimSpace(u.Description),
			Category:    strings.TrimSpace(u.Category),
			Orientation: strings.TrimSpace(u.Orientation),
			License:     strings.TrimSpace(u.License),
			Price:       u.Price,
			OldPrice:    u.OldPrice,
			Tags:        tags,
		}, dto.ListingAssets{
			ThumbnailURL: strings.TrimSpace(u.ThumbnailURL),
			FileURL:      strings.TrimSpace(u.FileURL),
		}
}

// SplitTags splits a comma separated tag list, dropping empty entries.
func SplitTags(s string) []string {
	tags := make([]string, 0)

	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	return tags
}

func parsePrice(s, field string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", field)
	}

	return &p, nil
}
