package logger

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// LoggerConfig holds configuration for the logger.
type LoggerConfig struct {
	Level      string
	Format     string // json or console
	OutputFile string // stdout, stderr or a file path
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// DefaultConfig reads LOG_LEVEL, LOG_FORMAT and LOG_OUTPUT_FILE.
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Format:     strings.ToLower(getEnv("LOG_FORMAT", "json")),
		OutputFile: getEnv("LOG_OUTPUT_FILE", "stdout"),
	}
}

// ToZapLevel converts the string log level to zapcore.Level, defaulting to info.
func (c *LoggerConfig) ToZapLevel() zapcore.Level {
	switch c.Level {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (c *LoggerConfig) isConsole() bool {
	return c.Format == "console" || c.Format == "text"
}

func (c *LoggerConfig) writesToFile() bool {
	return c.OutputFile != "" && c.OutputFile != "stdout" && c.OutputFile != "stderr"
}
