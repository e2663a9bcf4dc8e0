// Package middleware provides interceptors and HTTP middleware for tsroute apps.
package middleware

import (
	"log/slog"
	"time"

	"github.com/broady/tsroute"
)

// LoggingInterceptor creates an interceptor that logs endpoint calls using slog.
// It logs the start and end of each call, including duration and error status.
func LoggingInterceptor(logger *slog.Logger) tsroute.UnaryInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx *tsroute.Context, args map[string]any, next tsroute.HandlerFunc) (any, error) {
		start := time.Now()
		attrs := []any{
			slog.String("endpoint", ctx.EndpointID()),
			slog.String("path", ctx.Path()),
		}

		logger.DebugContext(ctx, "call started", append(attrs, slog.Int("args", len(args)))...)

		res, err := next(ctx, args)
		attrs = append(attrs, slog.Duration("duration", time.Since(start)))

		if err != nil {
			logger.ErrorContext(ctx, "call failed", append(attrs, slog.Any("error", err))...)
		} else {
			logger.InfoContext(ctx, "call completed", attrs...)
		}

		return res, err
	}
}
