package assembler

import (
	"log/slog"
	"os"
	"sync"
)

// debugLogger is the active/no-op pairing spec.md §9 asks the debug logger
// to share with the cycle detector: an interface the container holds,
// swappable at process init, so the hot path costs nothing when logging is
// off. Grounded on deep-rent-nexus/log — the only logging package in the
// retrieved pack — which wraps log/slog with an Option constructor and a
// Silent() no-op variant; no third-party logging library appears anywhere
// in the corpus.
type debugLogger interface {
	phase(name string)
	cycle(path string)
}

type noopDebugLogger struct{}

func (noopDebugLogger) phase(string) {}
func (noopDebugLogger) cycle(string) {}

type slogDebugLogger struct {
	logger *slog.Logger
}

func (l slogDebugLogger) phase(name string) {
	l.logger.Debug("assembler phase", slog.String("phase", name))
}

func (l slogDebugLogger) cycle(path string) {
	l.logger.Warn("cycle detected", slog.String("path", path))
}

var (
	debugLoggerMu      sync.RWMutex
	currentDebugLogger debugLogger = noopDebugLogger{}
)

// SetDebugLogging switches the process-wide debug logger variant. Passing
// nil restores the no-op logger; any other *slog.Logger is wrapped and used
// to trace orchestrator phase transitions and reported cycles.
func SetDebugLogging(logger *slog.Logger) {
	debugLoggerMu.Lock()
	defer debugLoggerMu.Unlock()
	if logger == nil {
		currentDebugLogger = noopDebugLogger{}
		return
	}
	currentDebugLogger = slogDebugLogger{logger: logger}
}

func activeLogger() debugLogger {
	debugLoggerMu.RLock()
	defer debugLoggerMu.RUnlock()
	return currentDebugLogger
}

// defaultLogger is a convenience slog.Logger writing text to stderr at
// Debug level, suitable for passing to SetDebugLogging during development.
func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
