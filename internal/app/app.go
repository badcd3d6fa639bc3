package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andreyxaxa/listing-admin/config"
	kafkactrl "github.com/andreyxaxa/listing-admin/internal/controller/kafka"
	"github.com/andreyxaxa/listing-admin/internal/controller/restapi"
	"github.com/andreyxaxa/listing-admin/internal/controller/worker/outbox"
	infrakafka "github.com/andreyxaxa/listing-admin/internal/infrastructure/kafka"
	"github.com/andreyxaxa/listing-admin/internal/infrastructure/processor"
	"github.com/andreyxaxa/listing-admin/internal/infrastructure/token"
	"github.com/andreyxaxa/listing-admin/internal/repo/persistent"
	"github.com/andreyxaxa/listing-admin/internal/usecase/asset"
	"github.com/andreyxaxa/listing-admin/internal/usecase/auth"
	"github.com/andreyxaxa/listing-admin/internal/usecase/importer"
	"github.com/andreyxaxa/listing-admin/internal/usecase/listing"
	"github.com/andreyxaxa/listing-admin/pkg/httpserver"
	"github.com/andreyxaxa/listing-admin/pkg/kafka/consumer"
	"github.com/andreyxaxa/listing-admin/pkg/kafka/producer"
	"github.com/andreyxaxa/listing-admin/pkg/logger"
	"github.com/andreyxaxa/listing-admin/pkg/postgres"
	"github.com/andreyxaxa/listing-admin/pkg/redisclient"
	"github.com/andreyxaxa/listing-admin/pkg/s3client"
)

const tokenIssuer = "listing-admin"

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Repository

	// s3
	s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
	defer s3Cancel()
	s3c, err := s3client.New(s3Ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, s3client.Region(cfg.S3.Region))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - s3client.New: %w", err))
	}
	objectRepo := persistent.NewObjectRepo(s3c, cfg.S3.Bucket, cfg.S3.PublicURL)

	// postgres
	pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pg.Close()

	// redis
	rdb, err := redisclient.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - redisclient.New: %w", err))
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			l.Error(fmt.Errorf("app - Run - rdb.Close: %w", err))
		}
	}()

	// Storage initialization, the service keeps running without it
	initCtx, initCancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
	if !asset.NewInitializer(objectRepo, cfg.Storage.InitAttempts, cfg.Storage.InitDelay, l).Initialize(initCtx) {
		l.Warn("app - Run - storage is not ready, uploads may fail")
	}
	initCancel()

	// Use-Case

	// asset uploader
	uploader := asset.New(objectRepo, cfg.Storage.MaxObjectSize, cfg.Storage.AllowedMIMETypes)

	// listing use-case
	listingUseCase := listing.New(
		persistent.NewListingRepo(pg),
		persistent.NewOutboxRepo(pg),
		pg,
		uploader,
		processor.NewThumbnailInspector(),
		l,
	)

	// import jobs
	importJobs := importer.NewJobs(
		importer.New(uploader, listingUseCase, cfg.Import.MaxArchiveSize, l),
		cfg.Import.MaxJobs,
		l,
	)

	// auth use-case
	authUseCase, err := auth.New(
		persistent.NewSessionRepo(rdb),
		token.NewJWT(cfg.Session.Secret, tokenIssuer),
		cfg.Admin.Email,
		cfg.Admin.Password,
		cfg.Session.TTL,
		l,
	)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - auth.New: %w", err))
	}

	// Kafka Producer
	kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
	}

	// Outbox Relay Worker
	outboxRelayWorker := outbox.New(
		listingUseCase,
		infrakafka.NewEventProducer(kafkaProducer, cfg.Kafka.EventsTopic),
		l,
		outbox.Config{
			PollInterval:        cfg.OutboxRelay.PollInterval,
			CleanupInterval:     cfg.OutboxRelay.CleanupInterval,
			MarkFailedInterval:  cfg.OutboxRelay.MarkFailedInterval,
			ProcessBatchTimeout: cfg.OutboxRelay.ProcessBatchTimeout,
			Retention:           cfg.OutboxRelay.Retention,
			BatchSize:           cfg.OutboxRelay.BatchSize,
			MaxRetries:          cfg.OutboxRelay.MaxRetries,
		},
	)

	// Kafka Consumer
	kafkaConsumer, err := consumer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.DownloadsTopic)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - consumer.New: %w", err))
	}

	// Kafka as Controller
	kafkaController := kafkactrl.New(
		listingUseCase,
		infrakafka.NewDownloadConsumer(kafkaConsumer),
		l,
		cfg.KafkaController.CommitTimeout,
		cfg.KafkaController.ProcessTimeout,
		cfg.KafkaController.Workers,
	)

	// HTTP Server
	httpServer := httpserver.New(l,
		httpserver.Port(cfg.HTTP.Port),
		httpserver.Prefork(cfg.HTTP.UsePreforkMode),
		httpserver.BodyLimit(cfg.HTTP.BodyLimit),
	)
	restapi.NewRouter(httpServer.App, cfg, listingUseCase, importJobs, authUseCase, l)

	// Start Components
	err = outboxRelayWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - outboxRelayWorker.Start: %w", err))
	}
	err = kafkaController.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - kafkaController.Start: %w", err))
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	jobsCtx, jobsCancel := context.WithTimeout(ctx, cfg.Import.ShutdownTimeout)
	defer jobsCancel()
	err = importJobs.Wait(jobsCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - importJobs.Wait: %w", err))
	}

	orlShutdownCtx, orlShutdownCancel := context.WithTimeout(ctx, cfg.OutboxRelay.ShutdownTimeout)
	defer orlShutdownCancel()
	err = outboxRelayWorker.Shutdown(orlShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - outboxRelayWorker.Shutdown: %w", err))
	}

	kcShutdownCtx, kcShutdownCancel := context.WithTimeout(ctx, cfg.KafkaController.ShutdownTimeout)
	defer kcShutdownCancel()
	err = kafkaController.Shutdown(kcShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - kafkaController.Shutdown: %w", err))
	}
}
