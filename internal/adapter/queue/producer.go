package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/plastinin/measurer/internal/config"
)

// Типы задач
const (
	TypeBatchMeasure = "batch:measure"
	QueueMeasure     = "measure"
)

// MaxRetry число повторных доставок задачи
const MaxRetry = 3

// BatchMeasurePayload данные задачи на измерение пакета
type BatchMeasurePayload struct {
	BatchID string `json:"batch_id"`
}

// NewBatchMeasureTask собирает задачу asynq для пакета
func NewBatchMeasureTask(batchID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(BatchMeasurePayload{
		BatchID: batchID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	// Ошибки измерения финальны и записываются в пакет без ошибки задачи.
	// Повтор нужен только после сбоя БД или остановки воркера.
	return asynq.NewTask(TypeBatchMeasure, payload,
		asynq.MaxRetry(MaxRetry),
		asynq.Queue(QueueMeasure),
		asynq.TaskID(batchID.String()),
	), nil
}

// BatchProducer отправляет пакеты в очередь
type BatchProducer struct {
	client *asynq.Client
}

// NewBatchProducer создаёт новый экземпляр BatchProducer
func NewBatchProducer(cfg config.RedisConfig) *BatchProducer {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &BatchProducer{client: client}
}

// Enqueue добавляет пакет в очередь
func (p *BatchProducer) Enqueue(ctx context.Context, batchID uuid.UUID) error {
	task, err := NewBatchMeasureTask(batchID)
	if err != nil {
		return err
	}

	_, err = p.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue batch: %w", err)
	}

	return nil
}

// Close закрывает соединение
func (p *BatchProducer) Close() error {
	return p.client.Close()
}
