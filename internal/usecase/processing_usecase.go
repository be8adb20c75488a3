package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/plastinin/measurer/internal/domain"
	"go.uber.org/zap"
)

// Сколько ждать записи статуса пакета, если контекст задачи уже отменён
const persistTimeout = 10 * time.Second

// ProcessingUseCase измерение пакетов из очереди
type ProcessingUseCase struct {
	batchRepo  BatchRepository
	dispatcher BatchDispatcher
	publisher  ArtifactPublisher
	logger     *zap.Logger
}

// NewProcessingUseCase создаёт новый экземпляр ProcessingUseCase
func NewProcessingUseCase(
	batchRepo BatchRepository,
	dispatcher BatchDispatcher,
	publisher ArtifactPublisher,
	logger *zap.Logger,
) *ProcessingUseCase {
	return &ProcessingUseCase{
		batchRepo:  batchRepo,
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
	}
}

// ProcessBatch измеряет пакет и сохраняет результат.
// Ошибка измерения не возвращается: она финальна и записывается в пакет.
// Если обработку прервала остановка воркера, пакет возвращается в pending,
// а ошибка возвращается, чтобы задача была доставлена повторно.
func (uc *ProcessingUseCase) ProcessBatch(ctx context.Context, batchID uuid.UUID) error {
	uc.logger.Info("Starting batch processing",
		zap.String("batch_id", batchID.String()),
	)

	batch, err := uc.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return fmt.Errorf("failed to get batch: %w", err)
	}

	switch {
	case batch.Status.IsFinal():
		uc.logger.Warn("Batch already in final status, skipping",
			zap.String("batch_id", batchID.String()),
			zap.String("status", batch.Status.String()),
		)
		return nil
	case batch.Status == domain.BatchStatusProcessing:
		// Предыдущая доставка не успела записать итог
		uc.logger.Warn("Resuming interrupted batch",
			zap.String("batch_id", batchID.String()),
		)
	default:
		if err := batch.MarkProcessing(); err != nil {
			return fmt.Errorf("failed to mark batch as processing: %w", err)
		}
		if err := uc.batchRepo.Update(ctx, batch); err != nil {
			return fmt.Errorf("failed to update batch status: %w", err)
		}
	}

	results, err := uc.dispatcher.Dispatch(ctx, batch.Items)
	if err == nil {
		results, err = publishArtifacts(ctx, uc.publisher, results)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			uc.releaseBatch(ctx, batch)
			return fmt.Errorf("batch processing interrupted: %w", ctxErr)
		}
		uc.markBatchFailed(ctx, batch, err)
		return nil
	}

	if err := batch.MarkCompleted(results); err != nil {
		return fmt.Errorf("failed to mark batch as completed: %w", err)
	}
	if err := uc.persist(ctx, batch); err != nil {
		return fmt.Errorf("failed to update batch: %w", err)
	}

	uc.logger.Info("Batch completed successfully",
		zap.String("batch_id", batchID.String()),
		zap.Int("results", len(results)),
	)

	return nil
}

// persist сохраняет пакет даже после отмены контекста задачи
func (uc *ProcessingUseCase) persist(ctx context.Context, batch *domain.Batch) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	return uc.batchRepo.Update(ctx, batch)
}

// releaseBatch возвращает прерванный пакет в pending
func (uc *ProcessingUseCase) releaseBatch(ctx context.Context, batch *domain.Batch) {
	uc.logger.Warn("Batch processing interrupted",
		zap.String("batch_id", batch.ID.String()),
	)

	if err := batch.Release(); err != nil {
		uc.logger.Error("Failed to release batch",
			zap.String("batch_id", batch.ID.String()),
			zap.Error(err),
		)
		return
	}

	if err := uc.persist(ctx, batch); err != nil {
		uc.logger.Error("Failed to update released batch",
			zap.String("batch_id", batch.ID.String()),
			zap.Error(err),
		)
	}
}

// markBatchFailed помечает пакет как неудачный
func (uc *ProcessingUseCase) markBatchFailed(ctx context.Context, batch *domain.Batch, cause error) {
	uc.logger.Error("Batch processing failed",
		zap.String("batch_id", batch.ID.String()),
		zap.Error(cause),
	)

	if err := batch.MarkFailed(domain.PublicMessage(cause)); err != nil {
		uc.logger.Error("Failed to mark batch as failed",
			zap.String("batch_id", batch.ID.String()),
			zap.Error(err),
		)
		return
	}

	if err := uc.persist(ctx, batch); err != nil {
		uc.logger.Error("Failed to update failed batch",
			zap.String("batch_id", batch.ID.String()),
			zap.Error(err),
		)
	}
}
