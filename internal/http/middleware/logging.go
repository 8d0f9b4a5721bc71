package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/amalthea/finance-api/internal/auth"
	"github.com/amalthea/finance-api/internal/domain"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Logging logs one line per request. It expects chi's RequestID middleware
// to run first.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := chimw.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			// The auth middleware runs further down the chain, so the user is
			// captured through a holder filled in after the handler returns.
			holder := &userHolder{}
			next.ServeHTTP(ww, r.WithContext(withUserHolder(r.Context(), holder)))

			duration := time.Since(start)
			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Int("status_code", ww.Status()),
				zap.Int("response_size", ww.BytesWritten()),
				zap.Duration("duration", duration),
			}
			if holder.user != nil {
				fields = append(fields,
					zap.String("user_id", holder.user.UserID.String()),
					zap.String("org_id", holder.user.OrgID.String()),
				)
			}

			msg := fmt.Sprintf("%s %-30s -> %3d (%s)", r.Method, r.URL.Path, ww.Status(), duration.Truncate(time.Microsecond))
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				logger.Error(msg, fields...)
			case ww.Status() >= http.StatusBadRequest:
				logger.Warn(msg, fields...)
			default:
				logger.Info(msg, fields...)
			}
		})
	}
}

// CaptureUser records the authenticated user for the request log line.
// Mount it right after authentication.
func CaptureUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if holder := userHolderFrom(r.Context()); holder != nil {
			if user, ok := auth.FromContext(r.Context()); ok {
				holder.user = user
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Recovery turns a handler panic into a 500 response and logs the stack
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("request_id", chimw.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)
				writeJSONError(w, http.StatusInternalServerError, domain.ErrorTypeInternal, "An internal error occurred")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
