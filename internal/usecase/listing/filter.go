package listing

import (
	"sort"
	"strings"

	"github.com/andreyxaxa/listing-admin/internal/dto"
	"github.com/andreyxaxa/listing-admin/internal/entity"
)

// Filter keeps the listings matching every non-empty field of f. Search is
// a case-insensitive substring of title, description or any tag; category
// and license match exactly. Order is preserved.
func Filter(listings []entity.Listing, f dto.ListingFilter) []entity.Listing {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]entity.Listing, 0, len(listings))
	for _, l := range listings {
		if f.Category != "" && l.Category != f.Category {
			continue
		}
		if f.License != "" && string(l.License) != f.License {
			continue
		}
		if search != "" && !matches(l, search) {
			continue
		}

		out = append(out, l)
	}

	return out
}

func matches(l entity.Listing, search string) bool {
	if strings.Contains(strings.ToLower(l.Title), search) ||
		strings.Contains(strings.ToLower(l.Description), search) {
		return true
	}

	for _, tag := range l.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}

	return false
}

// Categories returns the distinct non-empty categories, sorted.
func Categories(listings []entity.Listing) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)

	for _, l := range listings {
		if l.Category == "" {
			continue
		}
		if _, ok := seen[l.Category]; ok {
			continue
		}

		seen[l.Category] = struct{}{}
		out = append(out, l.Category)
	}

	sort.Strings(out)

	return out
}
