// Package logger - zap logger construction from configuration.
package logger

import (
	"os"

	"github.com/nvr-ai/go-pose/config"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON logger that writes records below warn level to stdout
// and the rest to stderr.
//
// Arguments:
//   - cfg: Minimum level and encoder flavour.
//
// Returns:
//   - *zap.Logger: The logger.
//   - error: If the level cannot be parsed.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	return NewWithSyncers(cfg, zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr))
}

// NewWithSyncers is New with explicit destinations.
func NewWithSyncers(cfg config.LogConfig, stdout, stderr zapcore.WriteSyncer) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "log level %q", cfg.Level)
		}
		level = parsed
	}

	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= level && l < zapcore.WarnLevel
	})
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= level && l >= zapcore.WarnLevel
	})

	encoderConfig := zap.NewProductionEncoderConfig()
	if cfg.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, stdout, low),
		zapcore.NewCore(encoder, stderr, high),
	)

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}
	return zap.New(core, opts...), nil
}
