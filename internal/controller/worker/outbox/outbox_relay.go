package outbox

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/listing-admin/internal/infrastructure"
	"github.com/andreyxaxa/listing-admin/internal/usecase"
	"github.com/andreyxaxa/listing-admin/pkg/logger"
)

// OutboxRelay ships listing change events from the outbox table to Kafka.
type OutboxRelay struct {
	ob     usecase.OutboxUseCase
	es     infrastructure.EventsSender
	logger logger.Interface

	pollInterval        time.Duration
	cleanupInterval     time.Duration
	markFailedInterval  time.Duration
	processBatchTimeout time.Duration
	retention           time.Duration
	batchSize           int
	maxRetries          int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

type Config struct {
	PollInterval        time.Duration
	CleanupInterval     time.Duration
	MarkFailedInterval  time.Duration
	ProcessBatchTimeout time.Duration
	Retention           time.Duration
	BatchSize           int
	MaxRetries          int
}

func New(ob usecase.OutboxUseCase, es infrastructure.EventsSender, l logger.Interface, cfg Config) *OutboxRelay {
	return &OutboxRelay{
		ob:                  ob,
		es:                  es,
		logger:              l,
		pollInterval:        cfg.PollInterval,
		cleanupInterval:     cfg.CleanupInterval,
		markFailedInterval:  cfg.MarkFailedInterval,
		processBatchTimeout: cfg.ProcessBatchTimeout,
		retention:           cfg.Retention,
		batchSize:           cfg.BatchSize,
		maxRetries:          cfg.MaxRetries,
	}
}

func (r *OutboxRelay) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("OutboxRelay - Start - worker already started")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	// 1. воркер для отправки событий в кафку
	r.worker(r.pollInterval, func() {
		batchCtx, batchCancel := context.WithTimeout(r.ctx, r.processBatchTimeout)
		r.processEventsBatch(batchCtx)
		batchCancel()
	})

	// 2. воркер для пометки failed
	r.worker(r.markFailedInterval, func() {
		err := r.ob.MarkMaxRetriesAsFailed(r.ctx, r.maxRetries)
		if err != nil {
			r.logger.Error(err, "OutboxRelay - Start - worker - r.ob.MarkMaxRetriesAsFailed")
		}
	})

	// 3. воркер очистки failed/processed из outbox
	r.worker(r.cleanupInterval, func() {
		err := r.ob.CleanupOutbox(r.ctx, r.retention)
		if err != nil {
			r.logger.Error(err, "OutboxRelay - Start - worker - r.ob.CleanupOutbox")
		}
	})

	return nil
}

func (r *OutboxRelay) processEventsBatch(ctx context.Context) {
	// 1. получаем events со статусом pending, у которых retry count < max retries
	events, err := r.ob.GetPendingEvents(ctx, r.batchSize, r.maxRetries)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.ob.GetPendingEvents")

		return
	}
	if len(events) == 0 {
		return
	}

	// 2. помечаем как processing
	err = r.ob.MarkAsProcessingBatch(ctx, events)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.ob.MarkAsProcessingBatch")

		return
	}

	// 3. пробуем их отправить
	err = r.es.SendEvents(ctx, events)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.es.SendEvents")
		// 3.1 если не получилось - увеличиваем счетчик ретраев + возвращаем статус в pending
		incErr := r.ob.IncrementRetryCountBatch(ctx, events)
		if incErr != nil {
			r.logger.Error(incErr, "OutboxRelay - processEventsBatch - r.ob.IncrementRetryCountBatch")
		}

		return
	}

	// 4. если удалось отправить - помечаем как processed
	err = r.ob.MarkAsProcessedBatch(ctx, events)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.ob.MarkAsProcessedBatch")
	}
}

func (r *OutboxRelay) worker(interval time.Duration, task func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				task()
			}
		}
	}()
}

func (r *OutboxRelay) Shutdown(ctx context.Context) error {
	if !r.started.Load() {
		return nil
	}

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})

	go func() {
		r.wg.Wait()
		if err := r.es.Close(); err != nil {
			r.logger.Error(err, "OutboxRelay - Shutdown - r.es.Close")
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("OutboxRelay - Shutdown: %w", ctx.Err())
	}
}
