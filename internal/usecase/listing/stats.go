package listing

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/listing-admin/internal/dto"
)

const dashboardTableSize = 5

// Stats collects the dashboard counters and the two short tables.
func (uc *ListingUseCase) Stats(ctx context.Context) (dto.Stats, error) {
	totals, err := uc.listingRepo.Totals(ctx)
	if err != nil {
		return dto.Stats{}, fmt.Errorf("ListingUseCase - Stats - uc.listingRepo.Totals: %w", err)
	}

	recent, err := uc.listingRepo.List(ctx, dto.ListOptions{
		OrderBy: dto.SortCreatedAt,
		Desc:    true,
		Limit:   dashboardTableSize,
	})
	if err != nil {
		return dto.Stats{}, fmt.Errorf("ListingUseCase - Stats - uc.listingRepo.List(recent): %w", err)
	}

	top, err := uc.listingRepo.List(ctx, dto.ListOptions{
		OrderBy: dto.SortDownloads,
		Desc:    true,
		Limit:   dashboardTableSize,
	})
	if err != nil {
		return dto.Stats{}, fmt.Errorf("ListingUseCase - Stats - uc.listingRepo.List(top): %w", err)
	}

	stats := dto.Stats{
		TotalListings:   totals.Count,
		FreeListings:    totals.Free,
		PremiumListings: totals.Premium,
		TotalDownloads:  totals.Downloads,
		TotalValue:      totals.PriceSum,
		Recent:          recent,
		TopDownloads:    top,
	}

	if totals.Count > 0 {
		stats.AveragePrice = totals.PriceSum / float64(totals.Count)
	}

	return stats, nil
}
