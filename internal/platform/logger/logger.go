package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger so components can derive named children.
type Logger struct {
	*zap.Logger
	config *LoggerConfig
}

var (
	globalLogger *Logger
	once         sync.Once
)

// NewLogger returns the process-wide logger configured from the environment.
// Subsequent calls return the same instance.
func NewLogger() *Logger {
	once.Do(func() {
		cfg := DefaultConfig()
		l, err := New(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: %v, falling back to production defaults\n", err)
			zl, _ := zap.NewProduction()
			l = &Logger{Logger: zl, config: cfg}
		}
		globalLogger = l
		globalLogger.Info("Logger initialized", zap.String("level", cfg.Level), zap.String("format", cfg.Format))
	})
	return globalLogger
}

// New builds a logger from an explicit config.
func New(cfg *LoggerConfig) (*Logger, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Level == "debug" {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(cfg.ToZapLevel())

	zapConfig.OutputPaths = []string{"stdout"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	if cfg.writesToFile() {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		zapConfig.OutputPaths = []string{cfg.OutputFile, "stdout"}
		zapConfig.ErrorOutputPaths = []string{cfg.OutputFile, "stderr"}
	} else if cfg.OutputFile == "stderr" {
		zapConfig.OutputPaths = []string{"stderr"}
	}

	if cfg.isConsole() {
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig.Encoding = "json"
	}

	zl, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &Logger{Logger: zl, config: cfg}, nil
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop(), config: &LoggerConfig{Level: "info", Format: "json"}}
}

// Named adds a new path segment to the logger's name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name), config: l.config}
}

// With adds structured context to the logger.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...), config: l.config}
}
