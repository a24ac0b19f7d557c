package deodex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"
)

// HostEnvChecker validates the external prerequisites of a batch: a
// runnable Java runtime and a readable tool JAR. It runs once, before any
// task is submitted, so environment faults surface as a single fatal
// condition instead of N identical per-file failures.
//
// The exec seams are function fields so tests can fake a broken host.
type HostEnvChecker struct {
	JavaPath string
	ToolPath string

	lookPath func(string) (string, error)
	runner   func(ctx context.Context, name string, args ...string) error
	logger   *slog.Logger
}

// NewHostEnvChecker builds a checker using real OS dependencies.
func NewHostEnvChecker(javaPath, toolPath string, loggerHandler slog.Handler) *HostEnvChecker {
	if javaPath == "" {
		javaPath = DefaultJavaBinary
	}
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	return &HostEnvChecker{
		JavaPath: javaPath,
		ToolPath: toolPath,
		lookPath: exec.LookPath,
		runner: func(ctx context.Context, name string, args ...string) error {
			cmd := exec.CommandContext(ctx, name, args...)
			cmd.Stdout = io.Discard
			cmd.Stderr = io.Discard
			return cmd.Run()
		},
		logger: slog.New(loggerHandler).With(slog.String("component", "envcheck")),
	}
}

// Check implements EnvChecker. Every failure is wrapped in ErrEnvironment
// so callers can distinguish the fatal pre-batch category with errors.Is.
func (c *HostEnvChecker) Check(ctx context.Context) error {
	resolved, err := c.lookPath(c.JavaPath)
	if err != nil {
		return fmt.Errorf("%w: %w: %q not on PATH", ErrEnvironment, ErrJavaNotFound, c.JavaPath)
	}
	c.logger.Debug("Java runtime resolved", slog.String("path", resolved))

	verCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := c.runner(verCtx, c.JavaPath, "-version"); err != nil {
		return fmt.Errorf("%w: %w: %q -version failed: %v", ErrEnvironment, ErrJavaNotFound, c.JavaPath, err)
	}

	if err := ValidateToolJAR(c.ToolPath); err != nil {
		return fmt.Errorf("%w: %w", ErrEnvironment, err)
	}
	c.logger.Debug("Tool JAR verified", slog.String("path", c.ToolPath))
	return nil
}
