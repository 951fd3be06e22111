package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type requestErrorKey struct{}

// requestError carries a handler's failure cause up to RequestLogger.
type requestError struct {
	err error
}

func recordError(ctx context.Context, err error) {
	if re, ok := ctx.Value(requestErrorKey{}).(*requestError); ok {
		re.err = err
	}
}

// RequestLogger logs basic request details and latency. 5xx responses are
// logged at error level with the recorded cause.
func RequestLogger(next http.Handler, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		re := &requestError{}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestErrorKey{}, re)))

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		}
		if re.err != nil {
			fields = append(fields, zap.Error(re.err))
		}
		if rec.status >= http.StatusInternalServerError {
			logger.Error("request", fields...)
			return
		}
		logger.Info("request", fields...)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequireBearer rejects requests whose Authorization header does not carry
// token. An empty token leaves the routes open for an authenticating ingress.
func RequireBearer(token string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing token")
				return
			}
			got := strings.TrimPrefix(header, "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
