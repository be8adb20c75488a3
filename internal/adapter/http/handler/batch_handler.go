package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/plastinin/measurer/internal/adapter/http/dto"
	"github.com/plastinin/measurer/internal/domain"
	"github.com/plastinin/measurer/internal/usecase"
	"go.uber.org/zap"
)

// BatchService операции над асинхронными пакетами
type BatchService interface {
	Create(ctx context.Context, uploads []usecase.UploadInput) (*domain.Batch, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Batch, error)
	List(ctx context.Context, filter domain.BatchFilter, pagination domain.Pagination) (*domain.BatchListResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BatchHandler обработчик HTTP запросов для пакетов
type BatchHandler struct {
	responder
	batches       BatchService
	maxUploadSize int64
}

// NewBatchHandler создаёт новый BatchHandler
func NewBatchHandler(batches BatchService, maxUploadSize int64, logger *zap.Logger) *BatchHandler {
	return &BatchHandler{
		responder:     responder{logger: logger},
		batches:       batches,
		maxUploadSize: maxUploadSize,
	}
}

// Create ставит пакет в очередь
// POST /api/v1/batches
func (h *BatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	uploads, closeFiles, err := readUploads(w, r, h.maxUploadSize)
	defer closeFiles()
	if err != nil {
		h.respondUploadError(w, err)
		return
	}

	batch, err := h.batches.Create(r.Context(), uploads)
	if err != nil {
		h.logger.Error("Failed to create batch", zap.Error(err))
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, dto.BatchFromDomain(batch))
}

// GetByID возвращает пакет по ID
// GET /api/v1/batches/{id}
func (h *BatchHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	batch, err := h.batches.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get batch", zap.String("batch_id", id.String()), zap.Error(err))
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.BatchFromDomain(batch))
}

// List возвращает список пакетов
// GET /api/v1/batches?page=1&page_size=20&status=completed
func (h *BatchHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	pagination := domain.NewPagination(page, pageSize)

	filter := domain.BatchFilter{}
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := domain.BatchStatus(statusStr)
		if !status.IsValid() {
			h.respondError(w, http.StatusBadRequest, "invalid_status", "Unknown batch status")
			return
		}
		filter.Status = &status
	}

	result, err := h.batches.List(r.Context(), filter, pagination)
	if err != nil {
		h.logger.Error("Failed to list batches", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal_error", "Failed to list batches")
		return
	}

	h.respondJSON(w, http.StatusOK, dto.BatchListFromDomain(result))
}

// Delete удаляет пакет
// DELETE /api/v1/batches/{id}
func (h *BatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.batches.Delete(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete batch", zap.String("batch_id", id.String()), zap.Error(err))
		h.respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BatchHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_id", "Invalid batch ID format")
		return uuid.Nil, false
	}
	return id, true
}
