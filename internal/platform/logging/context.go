package logging

import (
	"context"

	"go.uber.org/zap"
)

type loggerKey struct{}

// LoggerFromContext returns the logger RequestLogger stored on ctx, or the
// process logger when there is none.
func LoggerFromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return Logger()
}

func contextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LogInfo logs msg at info level with the request's correlation fields.
func LogInfo(ctx context.Context, msg string, fields ...zap.Field) {
	LoggerFromContext(ctx).Info(msg, fields...)
}

// LogWarn logs msg at warn level with the request's correlation fields.
func LogWarn(ctx context.Context, msg string, fields ...zap.Field) {
	LoggerFromContext(ctx).Warn(msg, fields...)
}

// LogError logs msg at error level. A nil err adds no error field.
func LogError(ctx context.Context, msg string, err error, fields ...zap.Field) {
	LoggerFromContext(ctx).Error(msg, withErr(fields, err)...)
}

// LogFatal logs msg and exits the process.
func LogFatal(ctx context.Context, msg string, err error, fields ...zap.Field) {
	LoggerFromContext(ctx).Fatal(msg, withErr(fields, err)...)
}

func withErr(fields []zap.Field, err error) []zap.Field {
	if err == nil {
		return fields
	}
	return append(fields, zap.Error(err))
}
