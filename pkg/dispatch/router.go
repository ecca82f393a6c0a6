// pkg/dispatch/router.go
package dispatch

import (
	"net/http"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/taskbridge/connector-core/pkg/manifest"
	"github.com/taskbridge/connector-core/pkg/middleware/logger"
	hmetrics "github.com/taskbridge/connector-core/pkg/middleware/metrics"
	httpx "github.com/taskbridge/connector-core/pkg/transport/httpx"
	"go.uber.org/zap"
)

type BuildDeps struct {
	LogMW   *logger.Middleware
	Metrics http.Handler
	Router  httpx.Router
	Log     *zap.Logger
}

// BuildRouter mounts the dispatcher plus the ambient endpoints (heartbeat,
// metrics) on the router and returns the serving handler. The catalog behind
// 'd' must already be frozen.
func BuildRouter(d *Dispatcher, cfg manifest.Config, deps BuildDeps) http.Handler {
	r := deps.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))
	if deps.LogMW != nil {
		r.Use(deps.LogMW.Middleware())
	}
	r.Use(hmetrics.Collect())

	if !cfg.Metrics.Disabled && deps.Metrics != nil {
		hmetrics.AddMetricsSkipPaths(cfg.Metrics.Path)
		r.Handle(http.MethodGet, cfg.Metrics.Path, deps.Metrics)
	}

	r.Post(Pattern, d.Handler())

	// Keep the error shape uniform for anything the mux rejects itself.
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		d.writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		d.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	if deps.Log != nil {
		for _, ri := range d.Routes() {
			deps.Log.Info("route group mounted",
				zap.String("connector", ri.Connector),
				zap.String("path", ri.Path),
				zap.Strings("operations", ri.Operations),
			)
		}
	}
	return r.Mux()
}
