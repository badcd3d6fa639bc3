package dto

type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortDownloads SortField = "download_count"
)

// ListOptions orders and limits a listing select. Limit 0 means no limit.
type ListOptions struct {
	OrderBy SortField
	Desc    bool
	Limit   uint64
}
