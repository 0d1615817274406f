package logx

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is parsed from the environment together with the rest of the
// service configuration.
type Config struct {
	Level          string `env:"LOG_LEVEL" envDefault:"info"`    // debug|info|warn|error
	Format         string `env:"LOG_FORMAT" envDefault:"json"`   // json|console
	FilePath       string `env:"LOG_FILE"`                       // "" = disabled
	FileMaxSizeMB  int    `env:"LOG_FILE_MAX_SIZE" envDefault:"50"`
	FileMaxBackups int    `env:"LOG_FILE_MAX_BACKUPS" envDefault:"3"`
	FileMaxAgeDays int    `env:"LOG_FILE_MAX_AGE" envDefault:"7"`
	FileCompress   bool   `env:"LOG_FILE_COMPRESS" envDefault:"true"`
	SampleEveryN   int    `env:"LOG_SAMPLE_EVERY" envDefault:"0"` // >0 keeps 1/N events
}

type ctxKey int

const (
	CtxKeyUserID ctxKey = iota
	CtxKeyOp
)

// Setup configures the zerolog global `log` and returns the logger instance.
func Setup(c Config, service string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(c.Level)
	if err != nil || c.Level == "" {
		lvl = zerolog.InfoLevel
	}

	var writers []io.Writer
	if c.Format == "console" {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		writers = append(writers, os.Stdout)
	}
	if c.FilePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   c.FilePath,
			MaxSize:    c.FileMaxSizeMB,
			MaxBackups: c.FileMaxBackups,
			MaxAge:     c.FileMaxAgeDays,
			Compress:   c.FileCompress,
		})
	}

	logger := zerolog.New(io.MultiWriter(writers...)).Level(lvl).With().
		Timestamp().
		Str("svc", service).
		Logger()

	if c.SampleEveryN > 0 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(c.SampleEveryN)})
	}

	log.Logger = logger
	return logger
}

// WithUser returns a context carrying the acting user and operation name.
func WithUser(ctx context.Context, userID int64, op string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, userID)
	return context.WithValue(ctx, CtxKeyOp, op)
}

// FromCtx attaches the standard fields found in ctx to base.
func FromCtx(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	if ctx == nil {
		return base
	}
	w := base.With()
	if v, ok := ctx.Value(CtxKeyUserID).(int64); ok {
		w = w.Int64("uid", v)
	}
	if v, ok := ctx.Value(CtxKeyOp).(string); ok && v != "" {
		w = w.Str("op", v)
	}
	return w.Logger()
}
