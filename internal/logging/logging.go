package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger: JSON in production, console otherwise.
func New(production bool) (*zap.Logger, error) {
	if production {
		return zap.NewProduction()
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}

// Must is New for process start-up, where a logger failure is fatal.
func Must(production bool) *zap.Logger {
	logger, err := New(production)
	if err != nil {
		panic(err)
	}
	return logger
}
