// Package logging builds the zap loggers used across riskgraph.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFormat represents the log output format
type LogFormat string

const (
	FormatJSON    LogFormat = "json"
	FormatConsole LogFormat = "console"
)

// Config represents logging configuration
type Config struct {
	Level            string    `yaml:"level" json:"level"`
	Format           LogFormat `yaml:"format" json:"format"`
	OutputPaths      []string  `yaml:"output_paths" json:"output_paths"`
	ErrorOutputPaths []string  `yaml:"error_output_paths" json:"error_output_paths"`
	ServiceName      string    `yaml:"service_name" json:"service_name"`
	Environment      string    `yaml:"environment" json:"environment"`
	EnableCaller     bool      `yaml:"enable_caller" json:"enable_caller"`
	EnableStacktrace bool      `yaml:"enable_stacktrace" json:"enable_stacktrace"`
}

// DefaultConfig returns default logging configuration. Logs go to stderr so
// command output on stdout stays machine readable.
func DefaultConfig() Config {
	return Config{
		Level:            "info",
		Format:           FormatConsole,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		ServiceName:      "riskgraph",
		Environment:      "development",
	}
}

// Validate checks the level and format
func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Level)
	}
	switch c.Format {
	case FormatJSON, FormatConsole:
	default:
		return fmt.Errorf("invalid log format %q", c.Format)
	}
	return nil
}

// NewLogger creates a new logger with the given configuration
func NewLogger(config Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", config.Level, err)
	}

	outputs := config.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}
	errOutputs := config.ErrorOutputPaths
	if len(errOutputs) == 0 {
		errOutputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: config.Environment == "development",
		Encoding:    string(config.Format),
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:       outputs,
		ErrorOutputPaths:  errOutputs,
		DisableCaller:     !config.EnableCaller,
		DisableStacktrace: !config.EnableStacktrace,
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger.With(
		zap.String("service", config.ServiceName),
		zap.String("environment", config.Environment),
	), nil
}
