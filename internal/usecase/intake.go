package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/plastinin/measurer/internal/domain"
	"go.uber.org/zap"
)

// Intake сохраняет загруженные файлы и превращает их в WorkItem
type Intake struct {
	store        FileStore
	pdfConverter PDFConverter
	logger       *zap.Logger
}

// NewIntake создаёт новый экземпляр Intake. pdfConverter может быть nil.
func NewIntake(store FileStore, pdfConverter PDFConverter, logger *zap.Logger) *Intake {
	return &Intake{
		store:        store,
		pdfConverter: pdfConverter,
		logger:       logger,
	}
}

// Accept проверяет типы всех файлов и только потом сохраняет их
func (in *Intake) Accept(ctx context.Context, uploads []UploadInput) ([]domain.WorkItem, error) {
	if len(uploads) == 0 {
		return nil, domain.ErrNoInput
	}

	for _, u := range uploads {
		if err := domain.ValidateContentType(u.ContentType); err != nil {
			return nil, fmt.Errorf("validation error: %s: %w", u.FileName, err)
		}
	}

	items := make([]domain.WorkItem, 0, len(uploads))
	for _, u := range uploads {
		inputPath, err := in.save(ctx, u)
		if err != nil {
			in.discard(ctx, items)
			return nil, err
		}

		in.logger.Debug("Image stored",
			zap.String("file_name", u.FileName),
			zap.String("input_path", inputPath),
		)

		items = append(items, domain.NewWorkItem(u.FileName, inputPath))
	}

	return items, nil
}

// save сохраняет один файл, PDF предварительно рендерится в PNG
func (in *Intake) save(ctx context.Context, u UploadInput) (string, error) {
	if !domain.IsPDF(u.ContentType) {
		inputPath, err := in.store.Save(ctx, u.FileName, u.FileReader)
		if err != nil {
			return "", fmt.Errorf("failed to store %s: %w", u.FileName, err)
		}
		return inputPath, nil
	}

	if in.pdfConverter == nil {
		return "", fmt.Errorf("PDF converter not available")
	}

	pdfData, err := io.ReadAll(u.FileReader)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", u.FileName, err)
	}

	imageData, err := in.pdfConverter.ConvertFirstPage(pdfData)
	if err != nil {
		return "", fmt.Errorf("failed to convert PDF %s: %w", u.FileName, err)
	}

	pngName := strings.TrimSuffix(u.FileName, filepath.Ext(u.FileName)) + ".png"
	inputPath, err := in.store.Save(ctx, pngName, bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("failed to store %s: %w", pngName, err)
	}
	return inputPath, nil
}

// discard удаляет уже сохранённые файлы, если пакет не удалось принять целиком
func (in *Intake) discard(ctx context.Context, items []domain.WorkItem) {
	for _, item := range items {
		if err := in.store.Delete(ctx, item.InputPath); err != nil {
			in.logger.Warn("Failed to remove stored image",
				zap.String("input_path", item.InputPath),
				zap.Error(err),
			)
		}
	}
}

// publishArtifacts заменяет локальные URL артефактов на URL публикатора
// и запоминает ключи объектов
func publishArtifacts(ctx context.Context, publisher ArtifactPublisher, results []domain.Measurement) ([]domain.Measurement, error) {
	if publisher == nil {
		return results, nil
	}

	published := make([]domain.Measurement, len(results))
	for i, m := range results {
		key, err := publisher.Publish(ctx, m.ArtifactPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrArtifactPublishFailed, m.ArtifactPath, err)
		}
		url, err := publisher.PresignURL(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrArtifactPublishFailed, key, err)
		}
		m.ArtifactKey = key
		m.ArtifactURL = url
		published[i] = m
	}
	return published, nil
}
