package importer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/andreyxaxa/listing-admin/pkg/logger"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
	"github.com/google/uuid"
)

// Jobs runs imports in the background and keeps their snapshots so the
// panel can poll progress. Jobs cannot be cancelled once started.
type Jobs struct {
	importer *Importer
	logger   logger.Interface

	mu      sync.Mutex
	jobs    map[uuid.UUID]*entity.ImportJob
	order   []uuid.UUID
	maxJobs int

	wg  sync.WaitGroup
	now func() time.Time
}

func NewJobs(importer *Importer, maxJobs int, l logger.Interface) *Jobs {
	return &Jobs{
		importer: importer,
		logger:   l,
		jobs:     make(map[uuid.UUID]*entity.ImportJob),
		maxJobs:  maxJobs,
		now:      time.Now,
	}
}

// Start opens the archive synchronously, so a broken archive is reported
// to the caller, and imports its records in the background.
func (j *Jobs) Start(ctx context.Context, data []byte, startedBy string) (entity.ImportJob, error) {
	a, err := j.importer.Open(data)
	if err != nil {
		return entity.ImportJob{}, fmt.Errorf("Jobs - Start - j.importer.Open: %w", err)
	}

	job := &entity.ImportJob{
		ID:        uuid.New(),
		State:     entity.ImportReadingArchive,
		Total:     len(a.Manifest()),
		StartedBy: startedBy,
		StartedAt: j.now(),
	}

	j.mu.Lock()
	j.evict()
	j.jobs[job.ID] = job
	j.order = append(j.order, job.ID)
	snapshot := *job
	j.mu.Unlock()

	// импорт переживает запрос, который его запустил
	runCtx := context.WithoutCancel(ctx)

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		report, err := j.importer.Run(runCtx, a, Hooks{
			OnState: func(state entity.ImportState, index int) {
				j.update(job.ID, func(job *entity.ImportJob) {
					job.State = state
					job.Index = index
				})
			},
			OnProgress: func(completed, total int) {
				j.update(job.ID, func(job *entity.ImportJob) {
					job.Completed = completed
					job.Total = total
				})
			},
		})

		j.update(job.ID, func(job *entity.ImportJob) {
			now := j.now()
			job.FinishedAt = &now
			job.Completed = report.Imported
			job.FailedIndex = report.FailedIndex
			job.Reason = report.Reason
		})

		if err != nil {
			j.logger.Warn("import job %s failed at product %d: %s", job.ID, report.FailedIndex, report.Reason)

			return
		}

		j.logger.Info("import job %s done, %d products imported", job.ID, report.Imported)
	}()

	return snapshot, nil
}

func (j *Jobs) Get(id uuid.UUID) (entity.ImportJob, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	job, ok := j.jobs[id]
	if !ok {
		return entity.ImportJob{}, errs.ErrJobNotFound
	}

	return *job, nil
}

// Wait blocks until every running job has finished or ctx is done.
func (j *Jobs) Wait(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("Jobs - Wait: %w", ctx.Err())
	}
}

func (j *Jobs) update(id uuid.UUID, f func(job *entity.ImportJob)) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if job, ok := j.jobs[id]; ok {
		f(job)
	}
}

// evict drops the oldest finished jobs above the limit. Running jobs are
// never dropped. Caller holds j.mu.
func (j *Jobs) evict() {
	for i := 0; len(j.jobs) >= j.maxJobs && i < len(j.order); {
		id := j.order[i]
		if !j.jobs[id].Finished() {
			i++

			continue
		}

		delete(j.jobs, id)
		j.order = append(j.order[:i], j.order[i+1:]...)
	}
}
