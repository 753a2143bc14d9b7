package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"feedback/pkg/common"
	"feedback/pkg/logger"
)

type traceKey string

const TraceKey traceKey = "traceId"

type Logging struct {
	logger *zap.SugaredLogger
}

func NewLoggingMiddleware(l *zap.SugaredLogger) *Logging {
	return &Logging{
		logger: l,
	}
}

// SetupTracing assigns every request a trace id, reusing the client's
// X-Request-ID when present.
func (lm *Logging) SetupTracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceId := r.Header.Get("X-Request-ID")
		if traceId == "" {
			traceId = common.RandStringRunes(8)
		}
		ctx := context.WithValue(r.Context(), TraceKey, traceId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetupLogging puts a trace-annotated logger into the request context
// so handlers can use logger.Log(ctx).
func (lm *Logging) SetupLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := lm.logger
		if traceId, ok := r.Context().Value(TraceKey).(string); ok {
			l = l.With("trace_id", traceId)
		}
		ctx := logger.WithLogger(r.Context(), l)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (lm *Logging) AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Log(r.Context()).Infow("request handled",
			"method", r.Method,
			"url", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"took", time.Since(start),
		)
	})
}

// Recover turns a panic in a handler into a generic 500. Transactions
// are already released by the session manager's deferred rollback by
// the time the panic reaches here.
func (lm *Logging) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Log(r.Context()).Errorf("panic while handling %s %s: %v", r.Method, r.URL.Path, rec)
				common.WriteErr(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
