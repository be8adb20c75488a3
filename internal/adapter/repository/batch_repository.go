package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plastinin/measurer/internal/domain"
)

const batchColumns = `id, status, items, results, error, created_at, updated_at, completed_at`

// BatchRepository реализация репозитория пакетов для PostgreSQL
type BatchRepository struct {
	pool *pgxpool.Pool
}

// NewBatchRepository создаёт новый экземпляр BatchRepository
func NewBatchRepository(pool *pgxpool.Pool) *BatchRepository {
	return &BatchRepository{pool: pool}
}

// Create создаёт новый пакет в БД
func (r *BatchRepository) Create(ctx context.Context, batch *domain.Batch) error {
	items, err := json.Marshal(batch.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	query := `
		INSERT INTO batches (id, status, items, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = r.pool.Exec(ctx, query,
		batch.ID,
		batch.Status,
		items,
		batch.CreatedAt,
		batch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}

	return nil
}

// GetByID возвращает пакет по ID
func (r *BatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`

	batch, err := scanBatch(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}

	return batch, nil
}

// Update обновляет статус и результаты пакета
func (r *BatchRepository) Update(ctx context.Context, batch *domain.Batch) error {
	var results []byte
	if batch.Results != nil {
		var err error
		results, err = json.Marshal(batch.Results)
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
	}

	query := `
		UPDATE batches
		SET status = $2, results = $3, error = NULLIF($4, ''), updated_at = $5, completed_at = $6
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		batch.ID,
		batch.Status,
		results,
		batch.Error,
		batch.UpdatedAt,
		batch.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update batch: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrBatchNotFound
	}

	return nil
}

// Delete удаляет пакет из БД
func (r *BatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete batch: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrBatchNotFound
	}

	return nil
}

// List возвращает список пакетов с пагинацией и фильтрацией
func (r *BatchRepository) List(ctx context.Context, filter domain.BatchFilter, pagination domain.Pagination) (*domain.BatchListResult, error) {
	where, args := buildBatchFilter(filter)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM batches"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count batches: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM batches%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, batchColumns, where, len(args)+1, len(args)+2)

	args = append(args, pagination.Limit(), pagination.Offset())

	rows, err := r.pool.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	batches := make([]*domain.Batch, 0)
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, batch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return &domain.BatchListResult{
		Batches:    batches,
		Total:      total,
		Pagination: pagination,
	}, nil
}

// buildBatchFilter собирает WHERE и аргументы для фильтра
func buildBatchFilter(filter domain.BatchFilter) (string, []any) {
	args := []any{}
	where := ""

	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = fmt.Sprintf(" WHERE status = $%d", len(args))
	}

	return where, args
}

// scanBatch читает одну строку в domain.Batch
func scanBatch(row pgx.Row) (*domain.Batch, error) {
	batch := &domain.Batch{}
	var (
		items    []byte
		results  []byte
		errorMsg *string // Указатель для NULL
	)

	err := row.Scan(
		&batch.ID,
		&batch.Status,
		&items,
		&results,
		&errorMsg,
		&batch.CreatedAt,
		&batch.UpdatedAt,
		&batch.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &batch.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items: %w", err)
	}

	if len(results) > 0 {
		if err := json.Unmarshal(results, &batch.Results); err != nil {
			return nil, fmt.Errorf("failed to unmarshal results: %w", err)
		}
	}

	// Обрабатываем NULL
	if errorMsg != nil {
		batch.Error = *errorMsg
	}

	return batch, nil
}
