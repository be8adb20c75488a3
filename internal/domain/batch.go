package domain

import (
	"time"

	"github.com/google/uuid"
)

// Batch асинхронное пакетное измерение
type Batch struct {
	ID          uuid.UUID     `json:"id"`
	Status      BatchStatus   `json:"status"`
	Items       []WorkItem    `json:"items"`
	Results     []Measurement `json:"results,omitempty"`
	Error       string        `json:"error,omitempty"` // Текст ошибки (если failed)
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// NewBatch создаёт новый пакет
func NewBatch(items []WorkItem) (*Batch, error) {
	if len(items) == 0 {
		return nil, ErrNoInput
	}

	now := time.Now()

	return &Batch{
		ID:        uuid.New(),
		Status:    BatchStatusPending,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// MarkProcessing переводит пакет в статус "в обработке"
func (b *Batch) MarkProcessing() error {
	if b.Status != BatchStatusPending {
		return ErrInvalidBatchStatus
	}
	b.Status = BatchStatusProcessing
	b.UpdatedAt = time.Now()
	return nil
}

// Release возвращает прерванный пакет в очередь ожидания
func (b *Batch) Release() error {
	if b.Status != BatchStatusProcessing {
		return ErrInvalidBatchStatus
	}
	b.Status = BatchStatusPending
	b.UpdatedAt = time.Now()
	return nil
}

// MarkCompleted переводит пакет в статус "завершён"
func (b *Batch) MarkCompleted(results []Measurement) error {
	if b.Status != BatchStatusProcessing {
		return ErrInvalidBatchStatus
	}
	now := time.Now()
	b.Status = BatchStatusCompleted
	b.Results = results
	b.UpdatedAt = now
	b.CompletedAt = &now
	return nil
}

// MarkFailed переводит пакет в статус "ошибка". Частичные результаты не сохраняются.
func (b *Batch) MarkFailed(errMsg string) error {
	if b.Status != BatchStatusProcessing && b.Status != BatchStatusPending {
		return ErrInvalidBatchStatus
	}
	now := time.Now()
	b.Status = BatchStatusFailed
	b.Results = nil
	b.Error = errMsg
	b.UpdatedAt = now
	b.CompletedAt = &now
	return nil
}
