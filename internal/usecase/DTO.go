package usecase

import (
	"io"
	"time"
)

// UploadInput одно загруженное изображение
type UploadInput struct {
	FileName    string    // Оригинальное имя файла
	ContentType string    // MIME тип
	FileReader  io.Reader // Содержимое файла
}

// DispatcherOptions параметры запуска воркеров
type DispatcherOptions struct {
	Timeout     time.Duration // Ограничение на один запуск воркера
	MaxParallel int           // 0 означает без ограничения
}
