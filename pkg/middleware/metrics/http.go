package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// NewPromHttpHandler returns the /metrics handler.
func NewPromHttpHandler() http.Handler { return promhttp.Handler() }

// ProvideMetrics is the Fx provider for the scrape handler.
func ProvideMetrics() http.Handler { return NewPromHttpHandler() }

// Module provides the scrape handler under name:"metrics".
var Module = fx.Provide(fx.Annotate(ProvideMetrics, fx.ResultTags(`name:"metrics"`)))
