package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plastinin/measurer/internal/config"
)

// PublicPrefix путь, по которому HTTP сервер раздаёт каталог загрузок
const PublicPrefix = "/uploads/"

// LocalStorage хранилище загрузок на локальном диске.
// Воркер пишет выходное изображение рядом с входным.
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage создаёт каталог загрузок, если его нет
func NewLocalStorage(cfg config.StorageConfig) (*LocalStorage, error) {
	dir, err := filepath.Abs(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload dir: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	return &LocalStorage{
		dir:     dir,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Dir возвращает абсолютный путь каталога загрузок
func (s *LocalStorage) Dir() string {
	return s.dir
}

// Save сохраняет файл под уникальным именем <unix-millis>-<id><ext> и возвращает абсолютный путь
func (s *LocalStorage) Save(ctx context.Context, fileName string, reader io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.New().String()[:8], ext)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return path, nil
}

// Exists проверяет наличие файла
func (s *LocalStorage) Exists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}

// URL возвращает публичный адрес файла из каталога загрузок
func (s *LocalStorage) URL(path string) string {
	return s.baseURL + PublicPrefix + url.PathEscape(filepath.Base(path))
}

// Delete удаляет файл. Отсутствующий файл не считается ошибкой.
func (s *LocalStorage) Delete(_ context.Context, path string) error {
	if !s.owns(path) {
		return fmt.Errorf("path %s is outside upload dir", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

func (s *LocalStorage) owns(path string) bool {
	rel, err := filepath.Rel(s.dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != "."
}
