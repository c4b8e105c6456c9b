package routes

import (
	"net/http"

	"github.com/dukerupert/addresscomplete/internal/handler/api"
	"github.com/dukerupert/addresscomplete/internal/router"
)

// RegisterOpsRoutes registers liveness and Prometheus scrape endpoints.
func RegisterOpsRoutes(r *router.Router, deps OpsDeps) {
	r.Get("/healthz", api.Health)
	if deps.MetricsHandler != nil {
		r.Handle(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
}
