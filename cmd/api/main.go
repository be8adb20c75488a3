package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/plastinin/measurer/internal/adapter/analyzer"
	"github.com/plastinin/measurer/internal/adapter/converter"
	"github.com/plastinin/measurer/internal/adapter/http/handler"
	"github.com/plastinin/measurer/internal/adapter/queue"
	"github.com/plastinin/measurer/internal/adapter/repository"
	"github.com/plastinin/measurer/internal/adapter/storage"
	"github.com/plastinin/measurer/internal/config"
	"github.com/plastinin/measurer/internal/usecase"
	"github.com/plastinin/measurer/pkg/logger"
	"go.uber.org/zap"

	apphttp "github.com/plastinin/measurer/internal/adapter/http"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	log := logger.Must(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	defer log.Sync()

	log.Info("Starting measurer API",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("worker", cfg.Worker.Executable),
		zap.Strings("worker_args", cfg.Worker.Args),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fileStore, err := storage.NewLocalStorage(cfg.Storage)
	if err != nil {
		log.Fatal("Failed to init upload directory", zap.Error(err))
	}
	log.Info("Upload directory ready", zap.String("dir", fileStore.Dir()))

	invoker := analyzer.NewSubprocessInvoker(cfg.Worker, log)
	if err := invoker.CheckExecutable(); err != nil {
		log.Warn("Measurement worker is not available", zap.Error(err))
	}

	// Зеркало в S3 опционально, nil означает отдачу артефактов с локального диска
	var publisher usecase.ArtifactPublisher
	if cfg.S3.Enabled {
		s3Storage, err := storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			log.Fatal("Failed to connect to S3", zap.Error(err))
		}
		publisher = s3Storage
		log.Info("Connected to S3",
			zap.String("endpoint", cfg.S3.Endpoint),
			zap.String("bucket", cfg.S3.Bucket),
		)
	}

	dbPool, err := repository.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()
	log.Info("Connected to PostgreSQL")

	queueProducer := queue.NewBatchProducer(cfg.Redis)
	defer queueProducer.Close()
	log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr()))

	batchRepo := repository.NewBatchRepository(dbPool)

	dispatcher := usecase.NewDispatcher(invoker, fileStore, usecase.DispatcherOptions{
		Timeout:     cfg.Worker.Timeout,
		MaxParallel: cfg.Worker.MaxParallel,
	}, log)
	intake := usecase.NewIntake(fileStore, converter.NewPDFConverter(cfg.Storage.PDFDPI), log)

	measureUC := usecase.NewMeasureUseCase(intake, dispatcher, publisher, log)
	batchUC := usecase.NewBatchUseCase(batchRepo, intake, fileStore, queueProducer, publisher, log)

	router := apphttp.NewRouter(apphttp.Handlers{
		Measure: handler.NewMeasureHandler(measureUC, cfg.Storage.MaxUploadSize, log),
		Batch:   handler.NewBatchHandler(batchUC, cfg.Storage.MaxUploadSize, log),
		Health:  handler.NewHealthHandler(log),
	}, fileStore.Dir(), log)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Addr()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}
