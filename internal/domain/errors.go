package domain

import (
	"errors"
	"fmt"
)

// Ошибки пакетного измерения. Каждая из них завершает весь пакет.
var (
	ErrNoInput               = errors.New("no images uploaded")
	ErrWorkerExecutionFailed = errors.New("failed to process image")
	ErrInvalidWorkerOutput   = errors.New("invalid result from measurement worker")
	ErrOutputArtifactMissing = errors.New("output image not found")
)

// Прочие ошибки домена
var (
	ErrBatchNotFound         = errors.New("batch not found")
	ErrInvalidBatchStatus    = errors.New("invalid batch status")
	ErrArtifactPublishFailed = errors.New("failed to publish output image")
)

// WorkerExecutionError воркер завершился с ненулевым кодом, не запустился или был убит по таймауту
type WorkerExecutionError struct {
	Item     WorkItem
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *WorkerExecutionError) Error() string {
	msg := fmt.Sprintf("worker failed for %s: exit code %d", e.Item.FileName, e.ExitCode)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *WorkerExecutionError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrWorkerExecutionFailed, e.Cause}
	}
	return []error{ErrWorkerExecutionFailed}
}

// InvalidOutputError stdout воркера не разбирается как три числа
type InvalidOutputError struct {
	Item      WorkItem
	RawOutput string
	Cause     error
}

func (e *InvalidOutputError) Error() string {
	return fmt.Sprintf("invalid worker output for %s: %q: %v", e.Item.FileName, e.RawOutput, e.Cause)
}

func (e *InvalidOutputError) Unwrap() error {
	return ErrInvalidWorkerOutput
}

// ArtifactMissingError воркер сообщил об успехе, но выходного изображения нет
type ArtifactMissingError struct {
	Item         WorkItem
	ExpectedPath string
}

func (e *ArtifactMissingError) Error() string {
	return fmt.Sprintf("output image for %s not found at %s", e.Item.FileName, e.ExpectedPath)
}

func (e *ArtifactMissingError) Unwrap() error {
	return ErrOutputArtifactMissing
}

// PublicMessage возвращает стабильное сообщение для клиента.
// Детали (stderr, сырой вывод) остаются только в логах.
func PublicMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoInput):
		return ErrNoInput.Error()
	case errors.Is(err, ErrWorkerExecutionFailed):
		return ErrWorkerExecutionFailed.Error()
	case errors.Is(err, ErrInvalidWorkerOutput):
		return ErrInvalidWorkerOutput.Error()
	case errors.Is(err, ErrOutputArtifactMissing):
		return ErrOutputArtifactMissing.Error()
	case errors.Is(err, ErrArtifactPublishFailed):
		return ErrArtifactPublishFailed.Error()
	case errors.Is(err, ErrUnsupportedFileType):
		return ErrUnsupportedFileType.Error()
	case errors.Is(err, ErrBatchNotFound):
		return ErrBatchNotFound.Error()
	case errors.Is(err, ErrInvalidBatchStatus):
		return "batch is being processed"
	}
	return "internal error"
}
