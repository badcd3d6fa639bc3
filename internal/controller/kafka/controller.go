package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/listing-admin/internal/usecase"
	"github.com/andreyxaxa/listing-admin/pkg/logger"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

var errBadPayload = errors.New("bad download event payload")

type EventConsumer interface {
	ReadEvent(ctx context.Context) (kafka.Message, error)
	CommitEvent(ctx context.Context, event kafka.Message) error
	Close() error
}

// KafkaController feeds download events into the listing download counters.
type KafkaController struct {
	lst    usecase.ListingUseCase
	ec     EventConsumer
	logger logger.Interface

	commitTimeout  time.Duration
	processTimeout time.Duration

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	started atomic.Bool
}

func New(
	lst usecase.ListingUseCase,
	ec EventConsumer,
	l logger.Interface,
	commitTimeout time.Duration,
	processTimeout time.Duration,
	workers int,
) *KafkaController {
	return &KafkaController{
		lst:            lst,
		ec:             ec,
		logger:         l,
		commitTimeout:  commitTimeout,
		processTimeout: processTimeout,
		workers:        workers,
	}
}

func (c *KafkaController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("KafkaController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	// канал для задач
	tasks := make(chan kafka.Message, c.workers*2)

	// запускаем воркеры
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(tasks)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(tasks)

		for {
			select {
			case <-c.ctx.Done():
				return
			default:
				// 1. читаем из кафки
				event, err := c.ec.ReadEvent(c.ctx)
				if err != nil {
					if errors.Is(err, errs.ErrConsumerClosed) {
						c.logger.Warn("KafkaController - Start - consumer closed, stop reading")

						return
					}

					if c.ctx.Err() == nil {
						c.logger.Error(err, "KafkaController - Start - c.ec.ReadEvent")
					}

					continue
				}

				// 2. отправляем в канал для воркеров
				select {
				case tasks <- event:
				case <-c.ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

func (c *KafkaController) processDownload(ctx context.Context, event kafka.Message) error {
	var payload DownloadEventPayload
	if err := json.Unmarshal(event.Value, &payload); err != nil {
		return fmt.Errorf("KafkaController - processDownload - json.Unmarshal: %w: %w", errBadPayload, err)
	}

	if payload.ListingID == uuid.Nil {
		return fmt.Errorf("KafkaController - processDownload: %w: listing_id is empty", errBadPayload)
	}

	if payload.Count == 0 {
		payload.Count = 1
	}

	err := c.lst.RegisterDownloads(ctx, payload.ListingID, payload.Count)
	if err != nil {
		return fmt.Errorf("KafkaController - processDownload - c.lst.RegisterDownloads: %w", err)
	}

	return nil
}

func (c *KafkaController) worker(tasks <-chan kafka.Message) {
	defer c.wg.Done()

	// читаем канал, пока не закроется
	for event := range tasks {
		c.handle(event)
	}
}

func (c *KafkaController) handle(event kafka.Message) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error(fmt.Errorf("panic %v", r), "KafkaController - handle - panic")
		}
	}()

	processCtx, processCancel := context.WithTimeout(c.ctx, c.processTimeout)
	err := c.processDownload(processCtx, event)
	processCancel()

	if err != nil {
		c.logger.Error(err, "KafkaController - handle - c.processDownload")

		// битые события и удаленные листинги повторять бесполезно
		if !errors.Is(err, errBadPayload) && !errors.Is(err, errs.ErrRecordNotFound) {
			return
		}
	}

	// коммитим после обработки
	commitCtx, commitCancel := context.WithTimeout(c.ctx, c.commitTimeout)
	err = c.ec.CommitEvent(commitCtx, event)
	commitCancel()
	if err != nil {
		c.logger.Error(err, "KafkaController - handle - c.ec.CommitEvent")
	}
}

func (c *KafkaController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		if err := c.ec.Close(); err != nil {
			c.logger.Error(err, "KafkaController - Shutdown - c.ec.Close")
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("KafkaController - Shutdown: %w", ctx.Err())
	}
}
