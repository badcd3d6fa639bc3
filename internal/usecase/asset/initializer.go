package asset

import (
	"context"
	"fmt"
	"time"

	"github.com/andreyxaxa/listing-admin/internal/repo"
	"github.com/andreyxaxa/listing-admin/pkg/logger"
	"github.com/andreyxaxa/listing-admin/pkg/retry"
)

// Initializer makes sure the bucket exists and is writable.
type Initializer struct {
	objects repo.ObjectRepo
	policy  *retry.Policy
	logger  logger.Interface
	now     func() time.Time
}

func NewInitializer(objects repo.ObjectRepo, attempts int, delay time.Duration, l logger.Interface) *Initializer {
	i := &Initializer{
		objects: objects,
		policy:  retry.New(attempts, retry.Constant(delay)),
		logger:  l,
		now:     time.Now,
	}

	i.policy.OnRetry = func(attempt int, err error) {
		l.Warn("storage initialization attempt %d failed: %v", attempt, err)
	}
	i.policy.OnExhausted = func(err error) {
		l.Warn("storage initialization failed, continuing without verified storage: %v", err)
	}

	return i
}

// Initialize reports whether storage is ready. False means the service
// runs degraded, uploads may fail.
func (i *Initializer) Initialize(ctx context.Context) bool {
	err := i.policy.Do(ctx, func(ctx context.Context, _ int) error {
		return i.initialize(ctx)
	})

	return err == nil
}

func (i *Initializer) initialize(ctx context.Context) error {
	// 1. проверяем бакет, создаем если нет
	exists, err := i.objects.BucketExists(ctx)
	if err != nil {
		return fmt.Errorf("Initializer - initialize - i.objects.BucketExists: %w", err)
	}

	if !exists {
		if err = i.objects.CreateBucket(ctx); err != nil {
			return fmt.Errorf("Initializer - initialize - i.objects.CreateBucket: %w", err)
		}

		i.logger.Info("storage bucket created")
	}

	// 2. проверяем права на запись пробным файлом
	key := fmt.Sprintf("test/test-%d.txt", i.now().UnixMilli())

	if err = i.objects.Upload(ctx, key, []byte("test"), "text/plain"); err != nil {
		return fmt.Errorf("Initializer - initialize - i.objects.Upload: %w", err)
	}

	if err = i.objects.Delete(ctx, key); err != nil {
		i.logger.Warn("failed to delete storage write-check object key=%s, error=%v", key, err)
	}

	return nil
}
