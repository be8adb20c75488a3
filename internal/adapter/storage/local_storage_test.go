package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plastinin/measurer/internal/config"
	"github.com/plastinin/measurer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(config.StorageConfig{
		UploadDir:     filepath.Join(t.TempDir(), "uploads"),
		PublicBaseURL: "http://localhost:5000/",
	})
	require.NoError(t, err)
	return s
}

func TestLocalStorage_SaveCreatesUniqueFiles(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	first, err := s.Save(ctx, "Photo.JPG", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := s.Save(ctx, "Photo.JPG", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, s.Dir(), filepath.Dir(first))
	assert.Equal(t, ".jpg", filepath.Ext(first))

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestLocalStorage_Exists(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	input, err := s.Save(ctx, "a.png", strings.NewReader("img"))
	require.NoError(t, err)
	output := domain.OutputPathFor(input)

	exists, err := s.Exists(ctx, output)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, os.WriteFile(output, []byte("out"), 0o644))

	exists, err = s.Exists(ctx, output)
	require.NoError(t, err)
	assert.True(t, exists)

	// Каталог не считается артефактом
	exists, err = s.Exists(ctx, s.Dir())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorage_URL(t *testing.T) {
	s := newTestStorage(t)

	url := s.URL(filepath.Join(s.Dir(), "1718000000000-ab12cd34_output.jpg"))

	assert.Equal(t, "http://localhost:5000/uploads/1718000000000-ab12cd34_output.jpg", url)
}

func TestLocalStorage_Delete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	path, err := s.Save(ctx, "a.png", strings.NewReader("img"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Повторное удаление не ошибка
	assert.NoError(t, s.Delete(ctx, path))

	assert.Error(t, s.Delete(ctx, filepath.Join(s.Dir(), "..", "escape.png")))
}
