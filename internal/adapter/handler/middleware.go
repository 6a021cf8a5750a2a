package handler

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/codegangsta/negroni"
	"github.com/gorilla/mux"

	"github.com/srgjo27/campus_ticket/internal/platform/logger"
	"github.com/srgjo27/campus_ticket/internal/platform/metrics"
)

const CorrelationHeader = "Correlation-Id"

func SetCorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(CorrelationHeader)
		if correlationID == "" {
			correlationID = generateCorrelationID()
			r.Header.Set(CorrelationHeader, correlationID)
		}
		w.Header().Set(CorrelationHeader, correlationID)

		ctx := logger.WithCorrelationID(r.Context(), correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func generateCorrelationID() string {
	return fmt.Sprintf("%d.%d", rand.Int31(), time.Now().UTC().Unix())
}

func PanicHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				buf := make([]byte, 1<<16)
				buf = buf[:runtime.Stack(buf, false)]
				logger.Errorf(r.Context(), "panic serving %s: %v\n%s", r.URL.Path, err, buf)

				SomethingWrong().Send(r.Context(), w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debugf(r.Context(), "Request - %s %s", r.Method, r.URL)
		next.ServeHTTP(w, r)
	})
}

const unmatchedRoute = "unmatched"

type routeLabelKey struct{}

// withRouteLabel pins the metrics route label for handlers mux reaches
// without a matched route.
func withRouteLabel(label string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), routeLabelKey{}, label)))
	})
}

func routeLabel(r *http.Request) string {
	if label, ok := r.Context().Value(routeLabelKey{}).(string); ok {
		return label
	}
	if current := mux.CurrentRoute(r); current != nil {
		if tpl, err := current.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return unmatchedRoute
}

// RequestMetrics records request counts and latency per route template.
func RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := negroni.NewResponseWriter(w)

		next.ServeHTTP(rec, r)

		status := rec.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := routeLabel(r)

		metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		logger.LogExecutionTime(r.Context(), start, fmt.Sprintf("%s %s -> %d", r.Method, r.URL.Path, status))
	})
}
