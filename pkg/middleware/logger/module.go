package logger

import "go.uber.org/fx"

// Module provides the system logger and the access-log middleware. Both
// expect a manifest.Config in the graph.
var Module = fx.Module("logger",
	fx.Provide(ProvideLoggerMiddleware),
	fx.Provide(ProvideLogger),
)
