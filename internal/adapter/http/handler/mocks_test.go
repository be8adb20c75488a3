package handler

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/google/uuid"
	"github.com/plastinin/measurer/internal/domain"
	"github.com/plastinin/measurer/internal/usecase"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMeasurer struct {
	mock.Mock
}

func (m *MockMeasurer) Measure(ctx context.Context, uploads []usecase.UploadInput) ([]domain.Measurement, error) {
	args := m.Called(ctx, uploads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Measurement), args.Error(1)
}

type MockBatchService struct {
	mock.Mock
}

func (m *MockBatchService) Create(ctx context.Context, uploads []usecase.UploadInput) (*domain.Batch, error) {
	args := m.Called(ctx, uploads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Batch), args.Error(1)
}

func (m *MockBatchService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Batch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Batch), args.Error(1)
}

func (m *MockBatchService) List(ctx context.Context, filter domain.BatchFilter, pagination domain.Pagination) (*domain.BatchListResult, error) {
	args := m.Called(ctx, filter, pagination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchListResult), args.Error(1)
}

func (m *MockBatchService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// formFile файл multipart формы. Пустой contentType оставляет application/octet-stream.
type formFile struct {
	name        string
	contentType string
	body        string
}

func newUploadRequest(t *testing.T, target string, files ...formFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		ct := f.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, uploadField, f.name))
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

// uploadNames проверяет имена файлов, переданных в use case
func uploadNames(names ...string) any {
	return mock.MatchedBy(func(uploads []usecase.UploadInput) bool {
		if len(uploads) != len(names) {
			return false
		}
		for i, u := range uploads {
			if u.FileName != names[i] {
				return false
			}
		}
		return true
	})
}
