// Package logging builds the structured logger shared by the CLI, the TUI and
// the storage layer.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls where and how much is logged.
type Options struct {
	Debug bool   // forces debug level
	Level string // "debug", "info", "warn", "error"; empty disables logging unless Debug
	Path  string // log file, truncated on open
}

// Enabled reports whether the options produce a real logger.
func (o Options) Enabled() bool {
	return o.Debug || o.Level != ""
}

// New returns a JSON file logger, or a no-op logger when logging is off.
// The returned close func flushes and closes the file.
func New(opts Options) (*zap.Logger, func() error, error) {
	if !opts.Enabled() {
		return zap.NewNop(), func() error { return nil }, nil
	}

	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, nil, fmt.Errorf("parsing log level: %w", err)
		}
	}
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	if opts.Path == "" {
		return nil, nil, fmt.Errorf("log file path must be set")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.Create(opts.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level)
	logger := zap.New(core).With(zap.Int("pid", os.Getpid()))
	logger.Debug("log opened", zap.String("path", opts.Path), zap.Stringer("level", level))

	closeFn := func() error {
		_ = logger.Sync()
		return f.Close()
	}
	return logger, closeFn, nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
