package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type (
	Config struct {
		HTTP            HTTP
		Log             Log
		PG              PG
		S3              S3
		Redis           Redis
		Admin           Admin
		Session         Session
		Storage         Storage
		Import          Import
		OutboxRelay     OutboxRelay
		Kafka           Kafka
		KafkaController KafkaController
		Swagger         Swagger
	}

	HTTP struct {
		Port           string `env:"HTTP_PORT,required"`
		UsePreforkMode bool   `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`

		// a 5 MiB thumbnail plus a 50 MiB file, and multipart overhead
		BodyLimit int `env:"HTTP_BODY_LIMIT" envDefault:"58720256"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL,required"`
	}

	PG struct {
		PoolMax int    `env:"PG_POOL_MAX,required"`
		URL     string `env:"PG_URL,required"`
	}

	S3 struct {
		Endpoint       string        `env:"S3_ENDPOINT,required"`
		PublicURL      string        `env:"S3_PUBLIC_URL"`
		Region         string        `env:"S3_REGION" envDefault:"us-east-1"`
		AccessKey      string        `env:"S3_ACCESS_KEY,required"`
		SecretKey      string        `env:"S3_SECRET_KEY,required"`
		Bucket         string        `env:"S3_BUCKET" envDefault:"lumestock-files"`
		CfgLoadTimeout time.Duration `env:"S3_LOAD_CFG_TIMEOUT" envDefault:"10s"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR,required"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Admin struct {
		Email    string `env:"ADMIN_EMAIL,required,notEmpty"`
		Password string `env:"ADMIN_PASSWORD,required,notEmpty,unset"`
	}

	Session struct {
		Secret string        `env:"SESSION_SECRET,required,notEmpty,unset"`
		TTL    time.Duration `env:"SESSION_TTL" envDefault:"12h"`

		// how long one /auth/events stream stays open before the client reconnects
		EventsStreamTTL time.Duration `env:"SESSION_EVENTS_STREAM_TTL" envDefault:"55s"`
	}

	Storage struct {
		InitAttempts     int           `env:"STORAGE_INIT_ATTEMPTS" envDefault:"3"`
		InitDelay        time.Duration `env:"STORAGE_INIT_DELAY" envDefault:"1s"`
		MaxObjectSize    int64         `env:"STORAGE_MAX_OBJECT_SIZE" envDefault:"52428800"`
		AllowedMIMETypes []string      `env:"STORAGE_ALLOWED_MIME_TYPES" envSeparator:"," envDefault:"image/jpeg,image/png,image/gif,image/webp,application/pdf,application/postscript,image/svg+xml,application/illustrator,application/x-coreldraw"`
	}

	Import struct {
		MaxArchiveSize int64 `env:"IMPORT_MAX_ARCHIVE_SIZE" envDefault:"52428800"`
		MaxJobs        int   `env:"IMPORT_MAX_JOBS" envDefault:"100"`

		// running imports get this long to finish on shutdown
		ShutdownTimeout time.Duration `env:"IMPORT_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}

	Kafka struct {
		Brokers        []string `env:"KAFKA_BROKERS,required"`
		GroupID        string   `env:"KAFKA_GROUP_ID,required"`
		EventsTopic    string   `env:"KAFKA_LISTING_EVENTS_TOPIC" envDefault:"listing-events"`
		DownloadsTopic string   `env:"KAFKA_DOWNLOADS_TOPIC" envDefault:"listing-downloads"`
	}

	OutboxRelay struct {
		PollInterval        time.Duration `env:"OUTBOX_RELAY_POLL_INTERVAL" envDefault:"2s"`
		MarkFailedInterval  time.Duration `env:"OUTBOX_RELAY_MARK_FAILED_INTERVAL" envDefault:"2m"`
		CleanupInterval     time.Duration `env:"OUTBOX_RELAY_CLEANUP_INTERVAL" envDefault:"24h"`
		ProcessBatchTimeout time.Duration `env:"OUTBOX_RELAY_PROCESS_BATCH_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout     time.Duration `env:"OUTBOX_RELAY_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		BatchSize           int           `env:"OUTBOX_RELAY_BATCH_SIZE" envDefault:"100"`
		MaxRetries          int           `env:"OUTBOX_RELAY_MAX_RETRIES" envDefault:"3"`

		// processed and failed events older than this are deleted
		Retention time.Duration `env:"OUTBOX_RELAY_RETENTION" envDefault:"168h"`
	}

	KafkaController struct {
		CommitTimeout   time.Duration `env:"KAFKA_CONTROLLER_COMMIT_TIMEOUT" envDefault:"2s"`
		ProcessTimeout  time.Duration `env:"KAFKA_CONTROLLER_PROCESS_TIMEOUT" envDefault:"5s"`
		ShutdownTimeout time.Duration `env:"KAFKA_CONTROLLER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		Workers         int           `env:"KAFKA_CONTROLLER_WORKERS" envDefault:"2"`
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if int64(cfg.HTTP.BodyLimit) < cfg.Import.MaxArchiveSize {
		return nil, fmt.Errorf("config error: HTTP_BODY_LIMIT %d is below IMPORT_MAX_ARCHIVE_SIZE %d",
			cfg.HTTP.BodyLimit, cfg.Import.MaxArchiveSize)
	}

	if cfg.S3.PublicURL == "" {
		cfg.S3.PublicURL = cfg.S3.Endpoint
	}

	return cfg, nil
}
