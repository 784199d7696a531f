// SPDX-License-Identifier: MIT

package openapi_server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// A Route defines the parameters for an api endpoint
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

// Routes are a collection of defined api endpoints
type Routes []Route

// Router defines the required methods for retrieving api routes
type Router interface {
	Routes() Routes
}

// NewRouter creates a new router for any number of api routers.
// Every route is logged and counted, the metrics of the gatherer are served on /metrics.
func NewRouter(logger *zap.Logger, metrics *Metrics, gatherer prometheus.Gatherer, routers ...Router) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := mux.NewRouter().StrictSlash(true)
	for _, api := range routers {
		for _, route := range api.Routes() {
			var handler http.Handler = route.HandlerFunc
			handler = Logger(handler, route.Name, logger, metrics)

			router.
				Methods(route.Method).
				Path(route.Pattern).
				Name(route.Name).
				Handler(handler)
		}
	}
	if gatherer != nil {
		router.Methods(http.MethodGet).Path("/metrics").Name("Metrics").Handler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return router
}

// EncodeJSONResponse uses the json encoder to write an interface to the http response with an optional status code
func EncodeJSONResponse(i interface{}, status *int, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if status != nil {
		w.WriteHeader(*status)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if i == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(i)
}
