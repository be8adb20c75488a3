package handler

import (
	"context"
	"net/http"

	"github.com/plastinin/measurer/internal/adapter/http/dto"
	"github.com/plastinin/measurer/internal/domain"
	"github.com/plastinin/measurer/internal/usecase"
	"go.uber.org/zap"
)

// Measurer синхронно измеряет пакет изображений
type Measurer interface {
	Measure(ctx context.Context, uploads []usecase.UploadInput) ([]domain.Measurement, error)
}

// MeasureHandler обработчик синхронного измерения
type MeasureHandler struct {
	responder
	measurer      Measurer
	maxUploadSize int64
}

// NewMeasureHandler создаёт новый MeasureHandler
func NewMeasureHandler(measurer Measurer, maxUploadSize int64, logger *zap.Logger) *MeasureHandler {
	return &MeasureHandler{
		responder:     responder{logger: logger},
		measurer:      measurer,
		maxUploadSize: maxUploadSize,
	}
}

// Measure измеряет все загруженные изображения
// POST /measure
// Content-Type: multipart/form-data
// - images: файлы изображений (поле повторяется)
func (h *MeasureHandler) Measure(w http.ResponseWriter, r *http.Request) {
	uploads, closeFiles, err := readUploads(w, r, h.maxUploadSize)
	defer closeFiles()
	if err != nil {
		h.respondUploadError(w, err)
		return
	}

	results, err := h.measurer.Measure(r.Context(), uploads)
	if err != nil {
		h.logger.Error("Failed to measure images",
			zap.Int("images", len(uploads)),
			zap.Error(err),
		)
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.DataResponse[[]dto.MeasurementResponse]{
		Data: dto.MeasurementsFromDomain(results),
	})
}
