package logging

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestLogger stores a request-scoped logger on the context carrying the
// request ID and, when a traceparent header and project are known, Cloud
// Trace correlation fields. It extends any logger already on the context.
func RequestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := loggerWithTrace(
				LoggerFromContext(ctx),
				r.Header.Get(traceparentHeader),
				resolveProjectID(),
				chimiddleware.GetReqID(ctx),
			)
			next.ServeHTTP(w, r.WithContext(contextWithLogger(ctx, logger)))
		})
	}
}

// AccessLogger writes one structured summary per request using the
// request-scoped logger.
func AccessLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remoteAddr", r.RemoteAddr),
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					fields = append(fields, zap.String("route", pattern))
				}
			}
			if origin := r.Header.Get("Origin"); origin != "" {
				fields = append(fields, zap.String("origin", origin))
			}
			LoggerFromContext(r.Context()).Info("request completed", fields...)
		})
	}
}
