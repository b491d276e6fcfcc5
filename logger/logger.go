// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide structured logger.
var Logger *zap.SugaredLogger

func init() {
	// No-op until Initialize runs, so packages and tests can log freely.
	Logger = zap.NewNop().Sugar()
}

// Initialize replaces the global logger. JSON output is meant for
// production log collection; otherwise a console encoder is used.
func Initialize(jsonOutput bool) error {
	var cfg zap.Config
	if jsonOutput {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)

	zapLogger, err := cfg.Build()
	if err != nil {
		return err
	}
	Logger = zapLogger.Sugar()
	return nil
}

// Sync flushes buffered entries; call it before the process exits.
func Sync() {
	_ = Logger.Sync()
}
