package dto

import (
	"time"

	"github.com/plastinin/measurer/internal/domain"
)

// BatchResponse ответ с информацией о пакете
type BatchResponse struct {
	ID          string                `json:"id"`
	Status      string                `json:"status"`
	FileNames   []string              `json:"file_names"`
	Results     []MeasurementResponse `json:"results,omitempty"`
	Error       string                `json:"error,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
}

// BatchFromDomain конвертирует доменную модель в DTO.
// Пути на диске наружу не отдаются.
func BatchFromDomain(batch *domain.Batch) *BatchResponse {
	names := make([]string, len(batch.Items))
	for i, item := range batch.Items {
		names[i] = item.FileName
	}

	resp := &BatchResponse{
		ID:          batch.ID.String(),
		Status:      batch.Status.String(),
		FileNames:   names,
		Error:       batch.Error,
		CreatedAt:   batch.CreatedAt,
		UpdatedAt:   batch.UpdatedAt,
		CompletedAt: batch.CompletedAt,
	}
	if batch.Status == domain.BatchStatusCompleted {
		resp.Results = MeasurementsFromDomain(batch.Results)
	}
	return resp
}

// BatchListResponse ответ со списком пакетов
type BatchListResponse struct {
	Batches    []*BatchResponse `json:"batches"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// BatchListFromDomain конвертирует результат списка в DTO
func BatchListFromDomain(result *domain.BatchListResult) *BatchListResponse {
	batches := make([]*BatchResponse, len(result.Batches))
	for i, batch := range result.Batches {
		batches[i] = BatchFromDomain(batch)
	}

	return &BatchListResponse{
		Batches:    batches,
		Total:      result.Total,
		Page:       result.Pagination.Page,
		PageSize:   result.Pagination.PageSize,
		TotalPages: result.Pagination.TotalPages(result.Total),
	}
}
