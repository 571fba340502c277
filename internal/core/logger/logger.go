package logger

import (
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"jobboard/internal/core/config"
)

// New builds the process logger. Console output in development, JSON
// otherwise; when cfg.File is set a rotated file sink is added.
func New(cfg config.Log) (*zap.Logger, func()) {
	var lvl zapcore.Level
	if err := lvl.Set(cfg.Level); err != nil {
		lvl = zapcore.InfoLevel
	}

	enc := encoder(cfg.JSON)
	sinks := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl)}

	var rotator *lumberjack.Logger
	if cfg.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    max(1, cfg.MaxSizeMB),
			MaxBackups: max(0, cfg.MaxBackups),
			MaxAge:     max(0, cfg.MaxAgeDays),
			Compress:   cfg.Compress,
		}
		// 文件统一 JSON，便于采集
		sinks = append(sinks, zapcore.NewCore(encoder(true), zapcore.AddSync(rotator), lvl))
	}

	core := zapcore.NewSamplerWithOptions(zapcore.NewTee(sinks...), time.Second, 100, 100)

	opts := []zap.Option{zap.AddCaller()}
	if !cfg.JSON {
		opts = append(opts, zap.Development())
	}
	l := zap.New(core, opts...)
	cleanup := func() {
		_ = l.Sync()
		if rotator != nil {
			_ = rotator.Close()
		}
	}
	return l, cleanup
}

func encoder(json bool) zapcore.Encoder {
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.TimeKey = "ts"
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// StdLogger adapts l for libraries that want a *log.Logger (gorm's logger).
func StdLogger(l *zap.Logger, level zapcore.Level) *log.Logger {
	std, err := zap.NewStdLogAt(l, level)
	if err != nil {
		return zap.NewStdLog(l)
	}
	return std
}

// RedirectStdLog sends the global log package to l; call the result to undo.
func RedirectStdLog(l *zap.Logger) func() {
	undo, err := zap.RedirectStdLogAt(l, zapcore.InfoLevel)
	if err != nil {
		return func() {}
	}
	return undo
}
