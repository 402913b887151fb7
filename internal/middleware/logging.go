package middleware

import (
	"net/http"
	"strings"
	"time"

	"cane-backend/internal/auth"
	"cane-backend/pkg/utils"

	"github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request. Health checks and metrics
// scrapes are logged at debug level.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		// the session is attached further down the chain; capture it on the way back
		var session auth.Session
		next.ServeHTTP(rec, r.WithContext(withSessionSink(r.Context(), &session)))

		fields := logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.statusCode,
			"bytes":       rec.bytes,
			"duration_ms": time.Since(start).Milliseconds(),
			"remote":      r.RemoteAddr,
		}
		if session.UserID != "" {
			fields["user_id"] = session.UserID
			fields["role"] = session.Role
		}

		entry := utils.GetLogger().WithFields(fields)
		switch {
		case r.URL.Path == "/metrics" || strings.HasPrefix(r.URL.Path, "/health"):
			entry.Debug("request")
		case rec.statusCode >= http.StatusInternalServerError:
			entry.Error("request")
		case rec.statusCode >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	})
}
