package listing

import (
	"fmt"
	"testing"

	"github.com/andreyxaxa/listing-admin/internal/dto"
	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestFilter_CategoryAndLicense(t *testing.T) {
	var ls []entity.Listing
	for i, c := range []string{"A", "B"} {
		for j, lic := range []entity.License{entity.Free, entity.Premium} {
			for k := 0; k < 3; k++ {
				ls = append(ls, entity.Listing{
					Title:    fmt.Sprintf("%d-%d-%d", i, j, k),
					Category: c,
					License:  lic,
				})
			}
		}
	}

	for _, c := range []string{"", "A", "B", "C"} {
		for _, lic := range []string{"", "free", "premium"} {
			got := Filter(ls, dto.ListingFilter{Category: c, License: lic})

			want := 0
			for _, l := range ls {
				if (c == "" || l.Category == c) && (lic == "" || string(l.License) == lic) {
					want++
				}
			}

			assert.Len(t, got, want, "category=%q license=%q", c, lic)
			for _, l := range got {
				if c != "" {
					assert.Equal(t, c, l.Category)
				}
				if lic != "" {
					assert.Equal(t, lic, string(l.License))
				}
			}
		}
	}
}

func TestFilter_Search(t *testing.T) {
	ls := []entity.Listing{
		{Title: "Mountain Sunset"},
		{Title: "Beach", Description: "Waves at SUNSET"},
		{Title: "Desert", Tags: []string{"dunes", "sunsets"}},
		{Title: "Forest", Description: "Moss"},
	}

	got := Filter(ls, dto.ListingFilter{Search: "  SunSet "})
	assert.Len(t, got, 3)
	assert.Equal(t, "Mountain Sunset", got[0].Title)
	assert.Equal(t, "Desert", got[2].Title)

	assert.Len(t, Filter(ls, dto.ListingFilter{Search: "moss"}), 1)
	assert.Empty(t, Filter(ls, dto.ListingFilter{Search: "snow"}))
	assert.Len(t, Filter(ls, dto.ListingFilter{}), 4)
}

func TestCategories(t *testing.T) {
	ls := []entity.Listing{
		{Category: "Urban"},
		{Category: ""},
		{Category: "Nature"},
		{Category: "Urban"},
	}

	assert.Equal(t, []string{"Nature", "Urban"}, Categories(ls))
	assert.Equal(t, []string{}, Categories(nil))
}
