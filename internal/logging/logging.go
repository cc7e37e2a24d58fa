package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewRunLogger builds the JSON-lines run logger writing to path. With debug
// enabled it also mirrors events to stderr at debug level. Logging must never
// fail a gate run, so any setup error degrades to a nop logger.
func NewRunLogger(path string, debug bool) (*zap.SugaredLogger, func()) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil && dir != "." {
		return zap.NewNop().Sugar(), func() {}
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.MessageKey = "event"
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.OutputPaths = append(cfg.OutputPaths, "stderr")
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar(), func() {}
	}
	sugar := logger.Sugar()
	return sugar, func() { _ = logger.Sync() }
}
