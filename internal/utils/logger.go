package utils

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewApplicationLogger constructs a zap logger configured for human-readable console output.
// Everything is written to stderr so the rendered document on stdout stays clean.
func NewApplicationLogger() (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.TimeKey = ""
	config.EncoderConfig.NameKey = ""
	config.EncoderConfig.CallerKey = ""
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.StacktraceKey = ""
	return config.Build()
}

// WarningSink adapts a logger to the warning callbacks used by the traversal packages.
// A nil logger yields a sink that drops every message.
func WarningSink(logger *zap.Logger) func(string) {
	if logger == nil {
		return func(string) {}
	}
	return func(message string) {
		trimmed := strings.TrimRight(message, "\n")
		if trimmed == EmptyString {
			return
		}
		logger.Warn(trimmed)
	}
}
