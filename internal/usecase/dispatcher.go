package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/plastinin/measurer/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

// Dispatcher запускает воркер для каждого изображения пакета параллельно
// и собирает результаты. Первая ошибка завершает весь пакет.
type Dispatcher struct {
	invoker WorkerInvoker
	store   FileStore
	opts    DispatcherOptions
	logger  *zap.Logger
}

// NewDispatcher создаёт новый экземпляр Dispatcher
func NewDispatcher(invoker WorkerInvoker, store FileStore, opts DispatcherOptions, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		invoker: invoker,
		store:   store,
		opts:    opts,
		logger:  logger,
	}
}

// Dispatch измеряет все изображения пакета.
// Результаты возвращаются в порядке items. При первой ошибке контекст
// остальных запусков отменяется, и возвращается только эта ошибка.
func (d *Dispatcher) Dispatch(ctx context.Context, items []domain.WorkItem) ([]domain.Measurement, error) {
	if len(items) == 0 {
		return nil, domain.ErrNoInput
	}

	start := time.Now()
	d.logger.Debug("Dispatching batch", zap.Int("items", len(items)))

	g, gctx := errgroup.WithContext(ctx)
	if d.opts.MaxParallel > 0 {
		g.SetLimit(d.opts.MaxParallel)
	}

	// Каждая горутина пишет только в свой слот
	results := make([]domain.Measurement, len(items))
	for i, item := range items {
		g.Go(func() error {
			res := d.process(gctx, item)
			if res.Failed() {
				return res.Err
			}
			results[i] = *res.Measurement
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		d.logger.Warn("Batch failed",
			zap.Int("items", len(items)),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	d.logger.Info("Batch measured",
		zap.Int("items", len(items)),
		zap.Duration("duration", time.Since(start)),
	)

	return results, nil
}

// process обрабатывает один WorkItem
func (d *Dispatcher) process(ctx context.Context, item domain.WorkItem) domain.WorkResult {
	// Пакет уже провалился или запрос отменён, воркер не запускаем
	if err := ctx.Err(); err != nil {
		return failed(item, &domain.WorkerExecutionError{Item: item, ExitCode: -1, Cause: err})
	}

	runCtx := ctx
	if d.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.opts.Timeout)
		defer cancel()
	}

	log := d.logger.With(
		zap.String("file_name", item.FileName),
		zap.String("input_path", item.InputPath),
	)
	log.Debug("Worker started")

	started := time.Now()
	inv, err := d.invoker.Invoke(runCtx, item.InputPath)
	if err != nil {
		// Отмена после чужой ошибки не является причиной провала пакета
		level := zapcore.ErrorLevel
		if errors.Is(err, context.Canceled) {
			level = zapcore.DebugLevel
		}
		log.Log(level, "Worker invocation failed",
			zap.Int("exit_code", inv.ExitCode),
			zap.String("stderr", inv.Stderr),
			zap.Error(err),
		)
		return failed(item, &domain.WorkerExecutionError{
			Item:     item,
			ExitCode: inv.ExitCode,
			Stderr:   inv.Stderr,
			Cause:    err,
		})
	}

	if inv.ExitCode != 0 {
		log.Error("Worker exited with non-zero code",
			zap.Int("exit_code", inv.ExitCode),
			zap.String("stderr", inv.Stderr),
		)
		return failed(item, &domain.WorkerExecutionError{
			Item:     item,
			ExitCode: inv.ExitCode,
			Stderr:   inv.Stderr,
		})
	}

	if inv.Stderr != "" {
		log.Warn("Worker stderr", zap.String("stderr", inv.Stderr))
	}

	log.Debug("Worker stdout",
		zap.String("stdout", inv.Stdout),
		zap.Duration("duration", time.Since(started)),
	)

	area, width, height, err := domain.ParseMeasurement(inv.Stdout)
	if err != nil {
		log.Error("Invalid worker output",
			zap.String("stdout", inv.Stdout),
			zap.Error(err),
		)
		return failed(item, &domain.InvalidOutputError{Item: item, RawOutput: inv.Stdout, Cause: err})
	}

	exists, err := d.store.Exists(ctx, item.OutputPath)
	if err != nil || !exists {
		log.Error("Output image not found",
			zap.String("output_path", item.OutputPath),
			zap.Error(err),
		)
		return failed(item, &domain.ArtifactMissingError{Item: item, ExpectedPath: item.OutputPath})
	}

	return domain.WorkResult{
		Item: item,
		Measurement: &domain.Measurement{
			Area:         area,
			Width:        width,
			Height:       height,
			ArtifactURL:  d.store.URL(item.OutputPath),
			ArtifactPath: item.OutputPath,
		},
	}
}

func failed(item domain.WorkItem, err error) domain.WorkResult {
	return domain.WorkResult{Item: item, Err: err}
}
