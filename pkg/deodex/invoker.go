package deodex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ExecInvoker runs the external deodexing tool through os/exec. It is a
// single synchronous unit of work, safe to call from any worker: all state
// is per-invocation and every failure mode folds into the returned
// ConversionResult.
type ExecInvoker struct {
	javaPath     string
	toolPath     string
	frameworkDir string
	baseTimeout  time.Duration
	logger       *slog.Logger
}

// NewExecInvoker creates an invoker for the given tool JAR and framework
// directory. javaPath defaults to DefaultJavaBinary and baseTimeout to
// DefaultBaseTimeout when zero.
func NewExecInvoker(javaPath, toolPath, frameworkDir string, baseTimeout time.Duration, loggerHandler slog.Handler) *ExecInvoker {
	if javaPath == "" {
		javaPath = DefaultJavaBinary
	}
	if baseTimeout <= 0 {
		baseTimeout = DefaultBaseTimeout
	}
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	return &ExecInvoker{
		javaPath:     javaPath,
		toolPath:     toolPath,
		frameworkDir: frameworkDir,
		baseTimeout:  baseTimeout,
		logger:       slog.New(loggerHandler).With(slog.String("component", "invoker")),
	}
}

// Invoke implements Invoker. The argument shape is fixed:
//
//	java -jar <tool> deodex -a <apiLevel> -d <frameworkDir> -o <outPath> <source> [extraFlags...]
//
// Exit status zero is the sole success criterion; the derived output path
// is trusted, not inspected. Nonzero exits carry the tool's stderr as the
// error detail, and launch faults carry the platform error text.
func (inv *ExecInvoker) Invoke(ctx context.Context, task ConversionTask, advice OptimizationAdvice) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		SourcePath: task.SourcePath,
		Metadata: map[string]string{
			"apiLevel": strconv.Itoa(task.APILevel),
		},
	}
	if info, err := os.Stat(task.SourcePath); err == nil {
		result.SizeBytes = info.Size()
	}

	// Creating a pre-existing directory is not an error.
	if err := os.MkdirAll(task.OutputDir, 0o755); err != nil {
		return inv.failed(result, start, fmt.Sprintf("%v: %v", ErrMkdirFailed, err))
	}

	outPath := filepath.Join(task.OutputDir, outputStem(task.SourcePath))

	args := []string{
		"-jar", inv.toolPath,
		"deodex",
		"-a", strconv.Itoa(task.APILevel),
		"-d", inv.frameworkDir,
		"-o", outPath,
		task.SourcePath,
	}
	args = append(args, advice.ExtraFlags...)
	result.Metadata["command"] = inv.javaPath + " " + strings.Join(args, " ")

	timeout := time.Duration(float64(inv.baseTimeout) * advice.TimeoutMultiplier)
	invCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(invCtx, inv.javaPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = io.Discard

	inv.logger.Debug("Starting conversion",
		slog.String("source", task.SourcePath),
		slog.Int("apiLevel", task.APILevel),
		slog.Duration("timeout", timeout),
	)

	runErr := cmd.Run()
	result.DurationSeconds = time.Since(start).Seconds()

	if runErr != nil {
		detail := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		switch {
		case invCtx.Err() != nil && !errors.Is(ctx.Err(), context.Canceled):
			detail = fmt.Sprintf("conversion timed out after %s", timeout)
		case errors.As(runErr, &exitErr):
			if detail == "" {
				detail = runErr.Error()
			}
		default:
			// Launch fault: binary missing, argument list too long,
			// permission denied, and friends.
			detail = runErr.Error()
		}
		result.Status = StatusFailed
		result.ErrorDetail = detail
		inv.logger.Debug("Conversion failed",
			slog.String("source", task.SourcePath),
			slog.String("error", detail),
		)
		return result
	}

	result.Status = StatusSucceeded
	result.OutputPath = outPath
	inv.logger.Debug("Conversion succeeded",
		slog.String("source", task.SourcePath),
		slog.Float64("seconds", result.DurationSeconds),
	)
	return result
}

func (inv *ExecInvoker) failed(result ConversionResult, start time.Time, detail string) ConversionResult {
	result.Status = StatusFailed
	result.ErrorDetail = detail
	result.DurationSeconds = time.Since(start).Seconds()
	return result
}

// outputStem derives the per-file output directory name: the source
// filename with its extension stripped, mirroring the external tool's
// convention for disassembly targets.
func outputStem(sourcePath string) string {
	base := filepath.Base(sourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
