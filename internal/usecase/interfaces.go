package usecase

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/plastinin/measurer/internal/domain"
)

// WorkerInvoker запускает внешний процесс измерения для одного изображения.
// Ненулевой код выхода возвращается в Invocation, error только если процесс
// не удалось запустить или дождаться.
type WorkerInvoker interface {
	Invoke(ctx context.Context, inputPath string) (domain.Invocation, error)
}

// FileStore интерфейс для работы с локальным хранилищем загрузок
type FileStore interface {
	Save(ctx context.Context, fileName string, reader io.Reader) (inputPath string, err error)
	Exists(ctx context.Context, path string) (bool, error)
	URL(path string) string
	Delete(ctx context.Context, path string) error
}

// ArtifactPublisher зеркалирует выходные изображения во внешнее хранилище.
// URL выдаются с ограниченным сроком жизни, поэтому хранится ключ объекта.
type ArtifactPublisher interface {
	Publish(ctx context.Context, path string) (key string, err error)
	PresignURL(ctx context.Context, key string) (string, error)
	Remove(ctx context.Context, key string) error
}

// BatchRepository интерфейс для работы с хранилищем пакетов
type BatchRepository interface {
	Create(ctx context.Context, batch *domain.Batch) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Batch, error)
	Update(ctx context.Context, batch *domain.Batch) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.BatchFilter, pagination domain.Pagination) (*domain.BatchListResult, error)
}

// BatchQueue интерфейс для работы с очередью пакетов
type BatchQueue interface {
	Enqueue(ctx context.Context, batchID uuid.UUID) error
}

// PDFConverter интерфейс для конвертации PDF в изображения
type PDFConverter interface {
	ConvertFirstPage(pdfData []byte) ([]byte, error)
}

// BatchDispatcher измеряет пакет изображений целиком
type BatchDispatcher interface {
	Dispatch(ctx context.Context, items []domain.WorkItem) ([]domain.Measurement, error)
}
