package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

func LogRequest(logContext logrus.FieldLogger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logContext.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"remoteAddr": r.RemoteAddr,
			}).Info("request")

			next.ServeHTTP(w, r)
		})
	}
}
