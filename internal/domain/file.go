package domain

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// Поддерживаемые MIME типы. PDF рендерится в PNG перед измерением.
var supportedContentTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/bmp":       true,
	"image/webp":      true,
	"image/tiff":      true,
	"application/pdf": true,
}

// Маппинг расширений на MIME типы
var extToContentType = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".pdf":  "application/pdf",
}

func normalizeContentType(contentType string) string {
	ct := strings.Split(contentType, ";")[0]
	return strings.TrimSpace(strings.ToLower(ct))
}

// ValidateContentType проверяет поддерживается ли тип файла
func ValidateContentType(contentType string) error {
	if !supportedContentTypes[normalizeContentType(contentType)] {
		return ErrUnsupportedFileType
	}
	return nil
}

// ContentTypeFromFileName определяет MIME тип по имени файла
func ContentTypeFromFileName(fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	ct, ok := extToContentType[ext]
	if !ok {
		return "", ErrUnsupportedFileType
	}
	return ct, nil
}

// ResolveContentType берёт заявленный тип, а если он пустой или
// application/octet-stream, то определяет тип по расширению
func ResolveContentType(declared, fileName string) (string, error) {
	ct := normalizeContentType(declared)
	if ct == "" || ct == "application/octet-stream" {
		return ContentTypeFromFileName(fileName)
	}
	if err := ValidateContentType(ct); err != nil {
		return "", err
	}
	return ct, nil
}

// IsPDF проверяет, является ли файл PDF
func IsPDF(contentType string) bool {
	return normalizeContentType(contentType) == "application/pdf"
}
