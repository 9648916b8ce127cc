package serverfx

import (
	"github.com/joeydtaylor/steeze-relay/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-relay/pkg/middleware/metrics"
	"github.com/joeydtaylor/steeze-relay/pkg/transport/httpx"
	"go.uber.org/fx"
)

// Module returns the complete relay: manifest, logging, metrics, sinks,
// dispatcher, router and the HTTP server lifecycle.
func Module(opts Options) fx.Option {
	return fx.Options(
		fx.Supply(opts),
		fx.Provide(provideConfig),

		// Middleware modules
		logger.Module,
		metrics.Module,

		// Router implementation
		fx.Provide(httpx.NewChi),

		// Delivery path
		fx.Provide(provideSinks),
		fx.Provide(provideDispatcher),

		// Router (named "app")
		fx.Provide(
			fx.Annotate(
				provideRouter,
				fx.ResultTags(`name:"app"`),
			),
		),

		fx.Invoke(registerHooks),
	)
}
