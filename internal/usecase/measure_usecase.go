package usecase

import (
	"context"

	"github.com/plastinin/measurer/internal/domain"
	"go.uber.org/zap"
)

// MeasureUseCase синхронное измерение пакета в рамках одного запроса
type MeasureUseCase struct {
	intake     *Intake
	dispatcher BatchDispatcher
	publisher  ArtifactPublisher
	logger     *zap.Logger
}

// NewMeasureUseCase создаёт новый экземпляр MeasureUseCase. publisher может быть nil.
func NewMeasureUseCase(
	intake *Intake,
	dispatcher BatchDispatcher,
	publisher ArtifactPublisher,
	logger *zap.Logger,
) *MeasureUseCase {
	return &MeasureUseCase{
		intake:     intake,
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
	}
}

// Measure сохраняет изображения, измеряет их и возвращает результаты в порядке загрузки
func (uc *MeasureUseCase) Measure(ctx context.Context, uploads []UploadInput) ([]domain.Measurement, error) {
	items, err := uc.intake.Accept(ctx, uploads)
	if err != nil {
		return nil, err
	}

	results, err := uc.dispatcher.Dispatch(ctx, items)
	if err != nil {
		return nil, err
	}

	results, err = publishArtifacts(ctx, uc.publisher, results)
	if err != nil {
		uc.logger.Error("Failed to publish artifacts", zap.Error(err))
		return nil, err
	}

	uc.logger.Info("Images measured", zap.Int("count", len(results)))

	return results, nil
}
