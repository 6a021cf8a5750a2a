package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/codegangsta/negroni"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/srgjo27/campus_ticket/internal/platform/logger"
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handlers struct {
	Tickets      *TicketHandler
	Redemptions  *RedemptionHandler
	ScanSessions *ScanHandler
	HealthChecks map[string]HealthCheck
}

// mux only runs r.Use middleware for matched routes, so the fallback
// handlers get the same chain wrapped explicitly.
func withMiddleware(next http.Handler) http.Handler {
	return SetCorrelationID(RequestMetrics(PanicHandler(RequestLogging(next))))
}

func notFound(w http.ResponseWriter, r *http.Request) {
	ResourceNotFound(fmt.Sprintf("The requested resource was not found: path: %s, method: %s", r.URL.Path, r.Method)).Send(r.Context(), w)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	MethodNotAllowed(fmt.Sprintf("Method %s is not allowed on %s", r.Method, r.URL.Path)).Send(r.Context(), w)
}

func NewRouter(h Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(SetCorrelationID, RequestMetrics, PanicHandler, RequestLogging)

	notFoundHandler := withRouteLabel(unmatchedRoute, withMiddleware(http.HandlerFunc(notFound)))
	methodNotAllowedHandler := withRouteLabel(unmatchedRoute, withMiddleware(http.HandlerFunc(methodNotAllowed)))
	r.NotFoundHandler = notFoundHandler
	r.MethodNotAllowedHandler = methodNotAllowedHandler

	r.HandleFunc("/healthcheck", healthcheck(h.HealthChecks)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.NotFoundHandler = notFoundHandler
	v1.MethodNotAllowedHandler = methodNotAllowedHandler

	v1.HandleFunc("/tickets", h.Tickets.Issue).Methods(http.MethodPost)
	v1.HandleFunc("/tickets/{ticketID}/token", h.Tickets.Token).Methods(http.MethodGet)
	v1.HandleFunc("/holders/{holderID}/tickets", h.Tickets.ListForHolder).Methods(http.MethodGet)

	v1.HandleFunc("/redemptions", h.Redemptions.Redeem).Methods(http.MethodPost)

	v1.HandleFunc("/scan-sessions", h.ScanSessions.Open).Methods(http.MethodPost)
	v1.HandleFunc("/scan-sessions/{sessionID}/decoded", h.ScanSessions.Decoded).Methods(http.MethodPost)
	v1.HandleFunc("/scan-sessions/{sessionID}", h.ScanSessions.Close).Methods(http.MethodDelete)

	return r
}

// NewServerHandler puts negroni's recovery in front of the router so a panic
// raised outside the mux chain still gets a 500 and a log line.
func NewServerHandler(router http.Handler) http.Handler {
	recovery := negroni.NewRecovery()
	recovery.Logger = logger.Standard()
	recovery.PrintStack = false

	n := negroni.New(recovery)
	n.UseHandler(router)
	return n
}

func healthcheck(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.Warnf(ctx, "healthcheck %s failed: %v", name, err)
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		writeJSON(w, status, map[string]interface{}{
			"alive":  status == http.StatusOK,
			"checks": results,
		})
	}
}
