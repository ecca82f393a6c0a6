package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// NewPromHttpHandler returns the /metrics handler.
func NewPromHttpHandler() http.Handler { return promhttp.Handler() }

// ProvideMetrics is the Fx provider used by the server wiring.
func ProvideMetrics() http.Handler { return NewPromHttpHandler() }

var Module = fx.Options(
	fx.Provide(ProvideMetrics),
)
