package openapi_server

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logger logs every request of the handler and records its metrics
func Logger(inner http.Handler, name string, logger *zap.Logger, metrics *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		inner.ServeHTTP(recorder, r)

		elapsed := time.Since(start)
		metrics.observeRequest(name, strconv.Itoa(recorder.status), elapsed.Seconds())
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("uri", r.RequestURI),
			zap.String("route", name),
			zap.Int("status", recorder.status),
			zap.Duration("elapsed", elapsed),
		)
	})
}
