package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/plastinin/measurer/internal/domain"
	"go.uber.org/zap"
)

// BatchUseCase бизнес-логика работы с асинхронными пакетами
type BatchUseCase struct {
	batchRepo  BatchRepository
	intake     *Intake
	fileStore  FileStore
	batchQueue BatchQueue
	publisher  ArtifactPublisher
	logger     *zap.Logger
}

// NewBatchUseCase создаёт новый экземпляр BatchUseCase. publisher может быть nil.
func NewBatchUseCase(
	batchRepo BatchRepository,
	intake *Intake,
	fileStore FileStore,
	batchQueue BatchQueue,
	publisher ArtifactPublisher,
	logger *zap.Logger,
) *BatchUseCase {
	return &BatchUseCase{
		batchRepo:  batchRepo,
		intake:     intake,
		fileStore:  fileStore,
		batchQueue: batchQueue,
		publisher:  publisher,
		logger:     logger,
	}
}

// Create сохраняет изображения и ставит пакет в очередь на измерение
func (uc *BatchUseCase) Create(ctx context.Context, uploads []UploadInput) (*domain.Batch, error) {
	items, err := uc.intake.Accept(ctx, uploads)
	if err != nil {
		return nil, err
	}

	batch, err := domain.NewBatch(items)
	if err != nil {
		uc.intake.discard(ctx, items)
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	if err := uc.batchRepo.Create(ctx, batch); err != nil {
		// Удаляем сохранённые файлы при ошибке
		uc.intake.discard(ctx, items)
		uc.logger.Error("Failed to save batch to database",
			zap.String("batch_id", batch.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to save batch: %w", err)
	}

	if err := uc.batchQueue.Enqueue(ctx, batch.ID); err != nil {
		uc.logger.Error("Failed to enqueue batch",
			zap.String("batch_id", batch.ID.String()),
			zap.Error(err),
		)
		// Не возвращаем ошибку: пакет создан, можно поставить в очередь позже
	}

	uc.logger.Info("Batch created successfully",
		zap.String("batch_id", batch.ID.String()),
		zap.Int("items", len(items)),
	)

	return batch, nil
}

// GetByID возвращает пакет по ID
func (uc *BatchUseCase) GetByID(ctx context.Context, id uuid.UUID) (*domain.Batch, error) {
	batch, err := uc.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.refreshArtifactURLs(ctx, batch)

	return batch, nil
}

// List возвращает список пакетов
func (uc *BatchUseCase) List(ctx context.Context, filter domain.BatchFilter, pagination domain.Pagination) (*domain.BatchListResult, error) {
	result, err := uc.batchRepo.List(ctx, filter, pagination)
	if err != nil {
		return nil, err
	}

	for _, batch := range result.Batches {
		uc.refreshArtifactURLs(ctx, batch)
	}

	return result, nil
}

// refreshArtifactURLs перевыпускает URL зеркалированных артефактов.
// Сохранённый в БД URL к этому моменту мог истечь.
func (uc *BatchUseCase) refreshArtifactURLs(ctx context.Context, batch *domain.Batch) {
	if uc.publisher == nil {
		return
	}

	for i := range batch.Results {
		key := batch.Results[i].ArtifactKey
		if key == "" {
			continue
		}

		url, err := uc.publisher.PresignURL(ctx, key)
		if err != nil {
			uc.logger.Warn("Failed to presign artifact URL",
				zap.String("batch_id", batch.ID.String()),
				zap.String("key", key),
				zap.Error(err),
			)
			continue
		}
		batch.Results[i].ArtifactURL = url
	}
}

// Delete удаляет пакет и связанные файлы
func (uc *BatchUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	batch, err := uc.batchRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if batch.Status == domain.BatchStatusProcessing {
		return fmt.Errorf("batch is being processed: %w", domain.ErrInvalidBatchStatus)
	}

	for _, item := range batch.Items {
		for _, path := range []string{item.InputPath, item.OutputPath} {
			if err := uc.fileStore.Delete(ctx, path); err != nil {
				uc.logger.Warn("Failed to delete file from storage",
					zap.String("batch_id", id.String()),
					zap.String("path", path),
					zap.Error(err),
				)
				// Продолжаем удаление пакета
			}
		}
	}

	uc.removeArtifacts(ctx, batch)

	if err := uc.batchRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete batch: %w", err)
	}

	uc.logger.Info("Batch deleted successfully",
		zap.String("batch_id", id.String()),
	)

	return nil
}

// removeArtifacts удаляет зеркалированные объекты пакета
func (uc *BatchUseCase) removeArtifacts(ctx context.Context, batch *domain.Batch) {
	for _, m := range batch.Results {
		if m.ArtifactKey == "" {
			continue
		}

		if uc.publisher == nil {
			uc.logger.Warn("Artifact mirror is disabled, object left in bucket",
				zap.String("batch_id", batch.ID.String()),
				zap.String("key", m.ArtifactKey),
			)
			continue
		}

		if err := uc.publisher.Remove(ctx, m.ArtifactKey); err != nil {
			uc.logger.Warn("Failed to remove artifact from mirror",
				zap.String("batch_id", batch.ID.String()),
				zap.String("key", m.ArtifactKey),
				zap.Error(err),
			)
		}
	}
}
