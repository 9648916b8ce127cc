package core

import (
	"net/http"

	"github.com/joeydtaylor/steeze-relay/pkg/middleware/logger"
	httpx "github.com/joeydtaylor/steeze-relay/pkg/transport/httpx"
)

type BuildDeps struct {
	LogMW      *logger.Middleware
	Metrics    http.Handler
	Router     httpx.Router
	Dispatcher *Dispatcher
}
