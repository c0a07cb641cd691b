package slq

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with slq-specific context fields.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. If handler is nil, a
// text handler writing to stderr at Info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that emits JSON-formatted logs at level.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// NewTextLogger creates a Logger that emits human-readable text logs at level.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// NoopLogger discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(1000)}))}
}

// WithWorker attaches a worker (thread id) field.
func (l *Logger) WithWorker(tid int) *Logger {
	return &Logger{Logger: l.Logger.With("worker", tid)}
}

// WithSample attaches a sample index field.
func (l *Logger) WithSample(i int) *Logger {
	return &Logger{Logger: l.Logger.With("sample", i)}
}

// LogSample logs the outcome of one completed (or failed) sample.
func (l *Logger) LogSample(ctx context.Context, i, kEff int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "sample failed", "sample", i, "error", err)
		return
	}
	l.DebugContext(ctx, "sample completed", "sample", i, "k_eff", kEff)
}

// LogEarlyTermination logs a Lanczos run that stopped before k steps
// because the residual dropped below tolerance.
func (l *Logger) LogEarlyTermination(ctx context.Context, i, kEff, k int) {
	l.WarnContext(ctx, "lanczos terminated early", "sample", i, "k_eff", kEff, "k", k)
}

// LogRunStart logs the parameters of a driver invocation.
func (l *Logger) LogRunStart(ctx context.Context, nv, numThreads, k, chunkSize int) {
	l.InfoContext(ctx, "slq run starting", "n_v", nv, "num_threads", numThreads, "k", k, "chunk_size", chunkSize)
}

// LogRunDone logs completion of a driver invocation.
func (l *Logger) LogRunDone(ctx context.Context, nv int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "slq run failed", "n_v", nv, "error", err)
		return
	}
	l.InfoContext(ctx, "slq run completed", "n_v", nv)
}
