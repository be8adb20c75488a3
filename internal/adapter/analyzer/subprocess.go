package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/plastinin/measurer/internal/config"
	"github.com/plastinin/measurer/internal/domain"
	"go.uber.org/zap"
)

// Сколько ждать закрытия stdout/stderr после убийства процесса
const pipeDrainTimeout = 5 * time.Second

// SubprocessInvoker запускает внешний скрипт измерения:
// <executable> [args...] <input-image-path>
type SubprocessInvoker struct {
	executable string
	args       []string
	logger     *zap.Logger
}

// NewSubprocessInvoker создаёт новый экземпляр SubprocessInvoker
func NewSubprocessInvoker(cfg config.WorkerConfig, logger *zap.Logger) *SubprocessInvoker {
	args := make([]string, len(cfg.Args))
	copy(args, cfg.Args)

	return &SubprocessInvoker{
		executable: cfg.Executable,
		args:       args,
		logger:     logger.Named("analyzer"),
	}
}

// Invoke запускает воркер и ждёт его завершения, буферизуя stdout и stderr.
// Ненулевой код выхода не является ошибкой Invoke.
func (s *SubprocessInvoker) Invoke(ctx context.Context, inputPath string) (domain.Invocation, error) {
	argv := append(append([]string{}, s.args...), inputPath)
	cmd := exec.CommandContext(ctx, s.executable, argv...)
	cmd.WaitDelay = pipeDrainTimeout

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.logger.Debug("Running worker",
		zap.String("executable", s.executable),
		zap.Strings("args", argv),
	)

	err := cmd.Run()
	inv := domain.Invocation{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	// Процесс убит по таймауту или отмене запроса
	if ctxErr := ctx.Err(); ctxErr != nil {
		inv.ExitCode = -1
		return inv, fmt.Errorf("worker interrupted: %w", ctxErr)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			inv.ExitCode = exitErr.ExitCode()
			return inv, nil
		}
		inv.ExitCode = -1
		return inv, fmt.Errorf("failed to run worker: %w", err)
	}

	return inv, nil
}

// CheckExecutable проверяет, что исполняемый файл воркера доступен
func (s *SubprocessInvoker) CheckExecutable() error {
	path, err := exec.LookPath(s.executable)
	if err != nil {
		return fmt.Errorf("worker executable %q not found: %w", s.executable, err)
	}
	s.logger.Info("Worker executable found", zap.String("path", path))
	return nil
}
