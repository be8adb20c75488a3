package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/plastinin/measurer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pendingBatch(t *testing.T) *domain.Batch {
	t.Helper()
	batch, err := domain.NewBatch([]domain.WorkItem{
		domain.NewWorkItem("a.jpg", "uploads/1.jpg"),
		domain.NewWorkItem("b.jpg", "uploads/2.jpg"),
	})
	require.NoError(t, err)
	return batch
}

func TestProcessBatch_Completed(t *testing.T) {
	repo, dispatcher := new(MockBatchRepository), new(MockDispatcher)
	uc := NewProcessingUseCase(repo, dispatcher, nil, zap.NewNop())

	batch := pendingBatch(t)
	measured := []domain.Measurement{
		{Area: 120.5, Width: 10, Height: 12.05, ArtifactURL: "u1"},
		{Area: 80, Width: 8, Height: 10, ArtifactURL: "u2"},
	}
	repo.On("GetByID", mock.Anything, batch.ID).Return(batch, nil)
	repo.On("Update", mock.Anything, batch).Return(nil)
	dispatcher.On("Dispatch", mock.Anything, batch.Items).Return(measured, nil)

	err := uc.ProcessBatch(context.Background(), batch.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.BatchStatusCompleted, batch.Status)
	assert.Equal(t, measured, batch.Results)
	repo.AssertNumberOfCalls(t, "Update", 2)
}

func TestProcessBatch_FailureIsRecorded(t *testing.T) {
	repo, dispatcher := new(MockBatchRepository), new(MockDispatcher)
	uc := NewProcessingUseCase(repo, dispatcher, nil, zap.NewNop())

	batch := pendingBatch(t)
	repo.On("GetByID", mock.Anything, batch.ID).Return(batch, nil)
	repo.On("Update", mock.Anything, batch).Return(nil)
	dispatcher.On("Dispatch", mock.Anything, batch.Items).Return(nil, &domain.InvalidOutputError{
		Item:      batch.Items[0],
		RawOutput: "abc,10,12",
	})

	err := uc.ProcessBatch(context.Background(), batch.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.BatchStatusFailed, batch.Status)
	assert.Equal(t, "invalid result from measurement worker", batch.Error)
	assert.Nil(t, batch.Results)
}

func TestProcessBatch_SkipsFinal(t *testing.T) {
	repo, dispatcher := new(MockBatchRepository), new(MockDispatcher)
	uc := NewProcessingUseCase(repo, dispatcher, nil, zap.NewNop())

	batch := pendingBatch(t)
	require.NoError(t, batch.MarkFailed("failed to process image"))
	repo.On("GetByID", mock.Anything, batch.ID).Return(batch, nil)

	err := uc.ProcessBatch(context.Background(), batch.ID)

	require.NoError(t, err)
	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProcessBatch_NotFound(t *testing.T) {
	repo, dispatcher := new(MockBatchRepository), new(MockDispatcher)
	uc := NewProcessingUseCase(repo, dispatcher, nil, zap.NewNop())

	batch := pendingBatch(t)
	repo.On("GetByID", mock.Anything, batch.ID).Return(nil, domain.ErrBatchNotFound)

	err := uc.ProcessBatch(context.Background(), batch.ID)

	assert.ErrorIs(t, err, domain.ErrBatchNotFound)
}

func TestProcessBatch_PublishFailure(t *testing.T) {
	repo, dispatcher, publisher := new(MockBatchRepository), new(MockDispatcher), new(MockPublisher)
	uc := NewProcessingUseCase(repo, dispatcher, publisher, zap.NewNop())

	batch := pendingBatch(t)
	repo.On("GetByID", mock.Anything, batch.ID).Return(batch, nil)
	repo.On("Update", mock.Anything, batch).Return(nil)
	dispatcher.On("Dispatch", mock.Anything, batch.Items).Return([]domain.Measurement{
		{ArtifactPath: "uploads/1_output.jpg"},
		{ArtifactPath: "uploads/2_output.jpg"},
	}, nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return("", errors.New("s3 unavailable"))

	err := uc.ProcessBatch(context.Background(), batch.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.BatchStatusFailed, batch.Status)
	assert.Equal(t, "failed to publish output image", batch.Error)
}

// liveCtx совпадает только с неотменённым контекстом
func liveCtx() any {
	return mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })
}

func TestProcessBatch_ShutdownReleasesBatch(t *testing.T) {
	repo, dispatcher := new(MockBatchRepository), new(MockDispatcher)
	uc := NewProcessingUseCase(repo, dispatcher, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batch := pendingBatch(t)
	repo.On("GetByID", mock.Anything, batch.ID).Return(batch, nil)
	repo.On("Update", liveCtx(), batch).Return(nil)
	dispatcher.On("Dispatch", mock.Anything, batch.Items).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, &domain.WorkerExecutionError{Item: batch.Items[0], ExitCode: -1, Cause: context.Canceled})

	err := uc.ProcessBatch(ctx, batch.ID)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.BatchStatusPending, batch.Status)
	assert.Empty(t, batch.Error)
	assert.Nil(t, batch.CompletedAt)
	repo.AssertNumberOfCalls(t, "Update", 2)
}

func TestProcessBatch_ResumesInterruptedBatch(t *testing.T) {
	repo, dispatcher := new(MockBatchRepository), new(MockDispatcher)
	uc := NewProcessingUseCase(repo, dispatcher, nil, zap.NewNop())

	batch := pendingBatch(t)
	require.NoError(t, batch.MarkProcessing())
	measured := []domain.Measurement{{Area: 1, Width: 1, Height: 1}, {Area: 2, Width: 1, Height: 2}}
	repo.On("GetByID", mock.Anything, batch.ID).Return(batch, nil)
	repo.On("Update", mock.Anything, batch).Return(nil)
	dispatcher.On("Dispatch", mock.Anything, batch.Items).Return(measured, nil)

	err := uc.ProcessBatch(context.Background(), batch.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.BatchStatusCompleted, batch.Status)
	repo.AssertNumberOfCalls(t, "Update", 1)
}

func TestProcessBatch_FinalStatusSavedAfterCancel(t *testing.T) {
	repo, dispatcher := new(MockBatchRepository), new(MockDispatcher)
	uc := NewProcessingUseCase(repo, dispatcher, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batch := pendingBatch(t)
	measured := []domain.Measurement{{Area: 1, Width: 1, Height: 1}, {Area: 2, Width: 1, Height: 2}}
	repo.On("GetByID", mock.Anything, batch.ID).Return(batch, nil)
	repo.On("Update", liveCtx(), batch).Return(nil)
	// Пакет успел измериться, но задачу отменили до записи итога
	dispatcher.On("Dispatch", mock.Anything, batch.Items).
		Run(func(mock.Arguments) { cancel() }).
		Return(measured, nil)

	err := uc.ProcessBatch(ctx, batch.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.BatchStatusCompleted, batch.Status)
	repo.AssertNumberOfCalls(t, "Update", 2)
}

func TestProcessBatch_StoresArtifactKeys(t *testing.T) {
	repo, dispatcher, publisher := new(MockBatchRepository), new(MockDispatcher), new(MockPublisher)
	uc := NewProcessingUseCase(repo, dispatcher, publisher, zap.NewNop())

	batch := pendingBatch(t)
	repo.On("GetByID", mock.Anything, batch.ID).Return(batch, nil)
	repo.On("Update", mock.Anything, batch).Return(nil)
	dispatcher.On("Dispatch", mock.Anything, batch.Items).Return([]domain.Measurement{
		{Area: 1, Width: 1, Height: 1, ArtifactPath: "uploads/1_output.jpg"},
		{Area: 2, Width: 1, Height: 2, ArtifactPath: "uploads/2_output.jpg"},
	}, nil)
	publisher.On("Publish", mock.Anything, "uploads/1_output.jpg").Return("k/1_output.jpg", nil)
	publisher.On("Publish", mock.Anything, "uploads/2_output.jpg").Return("k/2_output.jpg", nil)
	publisher.On("PresignURL", mock.Anything, mock.Anything).Return("https://s3/presigned", nil)

	err := uc.ProcessBatch(context.Background(), batch.ID)

	require.NoError(t, err)
	require.Len(t, batch.Results, 2)
	assert.Equal(t, "k/1_output.jpg", batch.Results[0].ArtifactKey)
	assert.Equal(t, "k/2_output.jpg", batch.Results[1].ArtifactKey)
}
