package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/plastinin/measurer/internal/config"
	"go.uber.org/zap"
)

// BatchProcessor обрабатывает пакет по ID
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, batchID uuid.UUID) error
}

// BatchConsumer обрабатывает пакеты из очереди
type BatchConsumer struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor BatchProcessor
	logger    *zap.Logger
}

// NewBatchConsumer создаёт новый экземпляр BatchConsumer
func NewBatchConsumer(
	redisCfg config.RedisConfig,
	queueCfg config.QueueConfig,
	processor BatchProcessor,
	logger *zap.Logger,
) *BatchConsumer {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisCfg.Addr(),
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		},
		asynq.Config{
			// Каждый пакет сам запускает воркеры параллельно
			Concurrency: queueCfg.Concurrency,
			Queues: map[string]int{
				QueueMeasure: 10,
				"default":    1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	consumer := &BatchConsumer{
		server:    server,
		mux:       asynq.NewServeMux(),
		processor: processor,
		logger:    logger,
	}

	consumer.mux.HandleFunc(TypeBatchMeasure, consumer.HandleBatchMeasure)

	return consumer
}

// Start запускает обработку задач
func (c *BatchConsumer) Start() error {
	c.logger.Info("Starting batch consumer")
	return c.server.Start(c.mux)
}

// Stop останавливает обработку задач
func (c *BatchConsumer) Stop() {
	c.logger.Info("Stopping batch consumer")
	c.server.Stop()
	c.server.Shutdown()
}

// HandleBatchMeasure обрабатывает задачу измерения пакета
func (c *BatchConsumer) HandleBatchMeasure(ctx context.Context, t *asynq.Task) error {
	var payload BatchMeasurePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		c.logger.Error("Failed to unmarshal payload",
			zap.Error(err),
			zap.ByteString("payload", t.Payload()),
		)
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	batchID, err := uuid.Parse(payload.BatchID)
	if err != nil {
		c.logger.Error("Invalid batch ID",
			zap.String("batch_id", payload.BatchID),
			zap.Error(err),
		)
		return fmt.Errorf("invalid batch ID: %v: %w", err, asynq.SkipRetry)
	}

	c.logger.Info("Processing batch measure task",
		zap.String("batch_id", batchID.String()),
	)

	if err := c.processor.ProcessBatch(ctx, batchID); err != nil {
		c.logger.Error("Failed to process batch",
			zap.String("batch_id", batchID.String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// asynqLogger адаптер логгера для asynq
type asynqLogger struct {
	logger *zap.SugaredLogger
}

func newAsynqLogger(logger *zap.Logger) *asynqLogger {
	return &asynqLogger{logger: logger.Named("asynq").Sugar()}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(args...)
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(args...)
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(args...)
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(args...)
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Fatal(args...)
}
