package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/plastinin/measurer/internal/adapter/http/dto"
	"github.com/plastinin/measurer/internal/domain"
	"github.com/plastinin/measurer/internal/usecase"
	"go.uber.org/zap"
)

// uploadField имя поля multipart формы с изображениями
const uploadField = "images"

// Держим в памяти не больше 32 MB формы, остальное уходит во временные файлы
const maxFormMemory = 32 << 20

// responder общие методы ответа для обработчиков
type responder struct {
	logger *zap.Logger
}

// respondJSON отправляет JSON ответ
func (h responder) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// respondError отправляет ответ с ошибкой
func (h responder) respondError(w http.ResponseWriter, status int, errCode string, message string) {
	h.respondJSON(w, status, dto.NewErrorResponse(errCode, message))
}

// respondDomainError отправляет ответ по виду ошибки.
// Клиент получает стабильное сообщение, подробности остаются в логах.
func (h responder) respondDomainError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	h.respondError(w, status, code, domain.PublicMessage(err))
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNoInput):
		return http.StatusBadRequest, "no_input"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "invalid_file_type"
	case errors.Is(err, domain.ErrBatchNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidBatchStatus):
		return http.StatusConflict, "invalid_status"
	case errors.Is(err, domain.ErrWorkerExecutionFailed):
		return http.StatusInternalServerError, "worker_failed"
	case errors.Is(err, domain.ErrInvalidWorkerOutput):
		return http.StatusInternalServerError, "invalid_worker_output"
	case errors.Is(err, domain.ErrOutputArtifactMissing):
		return http.StatusInternalServerError, "output_missing"
	case errors.Is(err, domain.ErrArtifactPublishFailed):
		return http.StatusInternalServerError, "publish_failed"
	}
	return http.StatusInternalServerError, "internal_error"
}

// readUploads читает изображения из multipart формы в порядке их следования.
// Возвращённую функцию нужно вызвать, чтобы закрыть файлы.
func readUploads(w http.ResponseWriter, r *http.Request, maxUploadSize int64) ([]usecase.UploadInput, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return nil, func() {}, fmt.Errorf("failed to parse form data: %w", err)
	}

	headers := r.MultipartForm.File[uploadField]
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
		r.MultipartForm.RemoveAll()
	}

	uploads := make([]usecase.UploadInput, 0, len(headers))
	for _, header := range headers {
		contentType, err := domain.ResolveContentType(header.Header.Get("Content-Type"), header.Filename)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("%s: %w", header.Filename, err)
		}

		file, err := header.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("failed to open %s: %w", header.Filename, err)
		}
		files = append(files, file)

		uploads = append(uploads, usecase.UploadInput{
			FileName:    header.Filename,
			ContentType: contentType,
			FileReader:  file,
		})
	}

	return uploads, closeAll, nil
}

// respondUploadError отвечает на ошибку чтения формы
func (h responder) respondUploadError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrUnsupportedFileType) {
		h.respondError(w, http.StatusBadRequest, "invalid_file_type",
			"Unsupported file type. Supported: PNG, JPEG, BMP, WEBP, TIFF, PDF")
		return
	}

	// Запрос без multipart тела равносилен пустому пакету
	if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
		h.respondError(w, http.StatusBadRequest, "no_input", domain.PublicMessage(domain.ErrNoInput))
		return
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.respondError(w, http.StatusRequestEntityTooLarge, "too_large", "Upload is too large")
		return
	}

	h.logger.Warn("Failed to parse multipart form", zap.Error(err))
	h.respondError(w, http.StatusBadRequest, "invalid_request", "Failed to parse form data")
}
