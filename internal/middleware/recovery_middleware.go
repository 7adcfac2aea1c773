package middleware

import (
	"net/http"
	"runtime/debug"

	"pensario-server/pkg/response"

	"github.com/sirupsen/logrus"
)

func RecoveryMiddleware(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := wrap(w)
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.WithFields(logrus.Fields{
						"method": r.Method,
						"path":   r.URL.Path,
						"panic":  rec,
						"stack":  string(debug.Stack()),
					}).Error("panic while serving request")
					if !rw.wroteHeader {
						response.InternalError(rw, "internal server error")
					}
				}
			}()
			next.ServeHTTP(rw, r)
		})
	}
}
