package middleware

import (
	"net/http"
	"runtime/debug"

	"cane-backend/pkg/utils"

	"github.com/sirupsen/logrus"
)

// PanicRecovery turns a handler panic into a 500 INTERNAL_ERROR response
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				utils.GetLogger().WithFields(logrus.Fields{
					"panic":  err,
					"method": r.Method,
					"path":   r.URL.Path,
					"stack":  string(debug.Stack()),
				}).Error("panic recovered")

				utils.JSON(w, http.StatusInternalServerError, utils.ErrorBody{
					Code:    utils.ErrCodeInternal,
					Message: "internal server error",
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
