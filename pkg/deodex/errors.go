package deodex

import "errors"

// Exported error variables. These represent the categories of faults the
// engine can surface directly; callers distinguish them with errors.Is.
// Per-file invocation faults never appear here; they are captured inside
// the owning ConversionResult instead.

var (
	// ErrConfigValidation indicates the provided Options failed the checks
	// performed by NewEngine (missing paths, nil logger, bad worker count).
	ErrConfigValidation = errors.New("invalid engine options")

	// ErrEnvironment wraps any pre-batch environment fault. It blocks the
	// whole batch before any file is touched.
	ErrEnvironment = errors.New("environment check failed")

	// ErrJavaNotFound indicates the Java runtime could not be resolved or
	// executed. Wrapped by ErrEnvironment when surfaced from Run.
	ErrJavaNotFound = errors.New("java runtime not found")

	// ErrToolNotFound indicates the baksmali JAR does not exist at the
	// configured path.
	ErrToolNotFound = errors.New("baksmali jar not found")

	// ErrToolInvalid indicates the configured tool path exists but is not a
	// readable JAR archive.
	ErrToolInvalid = errors.New("baksmali jar is not a valid archive")

	// ErrInputPathMissing indicates the discovery root does not exist. It
	// is a non-fatal condition: the batch completes with zero results.
	ErrInputPathMissing = errors.New("input directory does not exist")

	// ErrUnsupportedFormat indicates ExportReport was asked for a format it
	// does not implement. Unsupported formats fail loudly instead of
	// silently defaulting.
	ErrUnsupportedFormat = errors.New("unsupported report format")

	// ErrMkdirFailed indicates a task output directory could not be created.
	ErrMkdirFailed = errors.New("failed to create output directory")
)
