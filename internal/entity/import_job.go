package entity

import (
	"time"

	"github.com/google/uuid"
)

type ImportState string

const (
	ImportIdle               ImportState = "idle"
	ImportReadingArchive     ImportState = "reading_archive"
	ImportValidatingRecord   ImportState = "validating_record"
	ImportUploadingThumbnail ImportState = "uploading_thumbnail"
	ImportUploadingAsset     ImportState = "uploading_asset"
	ImportInsertingRow       ImportState = "inserting_row"
	ImportDone               ImportState = "done"
	ImportFailed             ImportState = "failed"
)

// ImportJob is a snapshot of one bulk import run. Index is the 1-based
// record being worked on; FailedIndex is 0 unless State is ImportFailed
// on a record.
type ImportJob struct {
	ID          uuid.UUID   `json:"id"`
	State       ImportState `json:"state"`
	Index       int         `json:"index"`
	Completed   int         `json:"completed"`
	Total       int         `json:"total"`
	FailedIndex int         `json:"failed_index,omitempty"`
	Reason      string      `json:"reason,omitempty"`
	StartedBy   string      `json:"started_by,omitempty"`
	StartedAt   time.Time   `json:"started_at"`
	FinishedAt  *time.Time  `json:"finished_at,omitempty"`
}

func (j ImportJob) Finished() bool {
	return j.State == ImportDone || j.State == ImportFailed
}
