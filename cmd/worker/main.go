package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/plastinin/measurer/internal/adapter/analyzer"
	"github.com/plastinin/measurer/internal/adapter/queue"
	"github.com/plastinin/measurer/internal/adapter/repository"
	"github.com/plastinin/measurer/internal/adapter/storage"
	"github.com/plastinin/measurer/internal/config"
	"github.com/plastinin/measurer/internal/usecase"
	"github.com/plastinin/measurer/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	log := logger.Must(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	defer log.Sync()

	log.Info("Starting measurer worker",
		zap.String("worker", cfg.Worker.Executable),
		zap.Int("concurrency", cfg.Queue.Concurrency),
		zap.Duration("timeout", cfg.Worker.Timeout),
	)

	ctx := context.Background()

	dbPool, err := repository.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()
	log.Info("Connected to PostgreSQL")

	// Каталог загрузок общий с API
	fileStore, err := storage.NewLocalStorage(cfg.Storage)
	if err != nil {
		log.Fatal("Failed to init upload directory", zap.Error(err))
	}

	invoker := analyzer.NewSubprocessInvoker(cfg.Worker, log)
	if err := invoker.CheckExecutable(); err != nil {
		log.Warn("Measurement worker is not available", zap.Error(err))
	}

	var publisher usecase.ArtifactPublisher
	if cfg.S3.Enabled {
		s3Storage, err := storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			log.Fatal("Failed to connect to S3", zap.Error(err))
		}
		publisher = s3Storage
		log.Info("Connected to S3", zap.String("bucket", cfg.S3.Bucket))
	}

	dispatcher := usecase.NewDispatcher(invoker, fileStore, usecase.DispatcherOptions{
		Timeout:     cfg.Worker.Timeout,
		MaxParallel: cfg.Worker.MaxParallel,
	}, log)

	processingUC := usecase.NewProcessingUseCase(repository.NewBatchRepository(dbPool), dispatcher, publisher, log)

	consumer := queue.NewBatchConsumer(cfg.Redis, cfg.Queue, processingUC, log)

	go func() {
		if err := consumer.Start(); err != nil {
			log.Fatal("Failed to start consumer", zap.Error(err))
		}
	}()

	log.Info("Worker started, waiting for batches...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down worker...")

	consumer.Stop()

	log.Info("Worker stopped")
}
