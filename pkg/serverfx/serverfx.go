package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/joeydtaylor/steeze-relay/pkg/core"
	"github.com/joeydtaylor/steeze-relay/pkg/manifest"
	"github.com/joeydtaylor/steeze-relay/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-relay/pkg/sinks"
	"github.com/joeydtaylor/steeze-relay/pkg/transport/httpx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Options allow per-deployment env keys/defaults without code duplication.
type Options struct {
	Service         string // for logs only
	ManifestEnv     string // e.g. "RELAY_MANIFEST"
	DefaultManifest string // e.g. "relay.toml"
}

func DefaultOptions() Options {
	return Options{
		Service:         "steeze-relay",
		ManifestEnv:     "RELAY_MANIFEST",
		DefaultManifest: "relay.toml",
	}
}

// ManifestPath resolves the manifest file from the environment.
func (o Options) ManifestPath() string { return envOr(o.ManifestEnv, o.DefaultManifest) }

// ---- Config / sinks / dispatcher ----

func provideConfig(o Options) (manifest.Config, error) {
	return core.LoadConfig(o.ManifestPath())
}

func provideSinks(cfg manifest.Config, zl *zap.Logger) (core.Sinks, error) {
	s, err := sinks.Build(context.Background(), cfg.Sinks, zl)
	if err != nil {
		return core.Sinks{}, err
	}
	chans := s.Configured()
	names := make([]string, 0, len(chans))
	for _, c := range chans {
		names = append(names, string(c))
	}
	if len(names) == 0 {
		zl.Warn("no sinks configured; every dispatch will answer 503")
	} else {
		zl.Info("sinks configured", zap.Strings("protocols", names))
	}
	return s, nil
}

func provideDispatcher(s core.Sinks, cfg manifest.Config, zl *zap.Logger) *core.Dispatcher {
	return core.NewDispatcher(s, cfg.Dispatch, zl, core.NewLogReporter(zl))
}

// ---- Router ----

type routerDeps struct {
	fx.In

	Cfg     manifest.Config
	LogMW   *logger.Middleware
	Metrics http.Handler `name:"metrics"`
	R       httpx.Router
	D       *core.Dispatcher
}

func provideRouter(d routerDeps) http.Handler {
	return core.BuildRouter(d.Cfg, core.BuildDeps{
		LogMW:      d.LogMW,
		Metrics:    d.Metrics,
		Router:     d.R,
		Dispatcher: d.D,
	})
}

// ---- Server lifecycle ----

type serverDeps struct {
	fx.In
	Opts   Options
	Cfg    manifest.Config
	Logger *zap.Logger
	App    http.Handler `name:"app"`
	D      *core.Dispatcher
}

func newServer(sv manifest.Server, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         sv.ListenAddress,
		Handler:      h,
		ReadTimeout:  ms(sv.ReadTimeoutMS),
		WriteTimeout: ms(sv.WriteTimeoutMS),
		IdleTimeout:  ms(sv.IdleTimeoutMS),
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
	}
}

func registerHooks(lc fx.Lifecycle, d serverDeps) {
	sv := d.Cfg.Server
	srv := newServer(sv, d.App)
	useTLS := fileExists(sv.TLSCert) && fileExists(sv.TLSKey)
	drain := ms(d.Cfg.Dispatch.DrainTimeoutMS)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for _, rt := range d.Cfg.Routes {
				d.Logger.Info("webhook route",
					zap.String("method", rt.Method),
					zap.String("path", rt.Path),
					zap.String("source", rt.Source),
					zap.Strings("headerPrefixes", rt.HeaderPrefixes),
				)
			}

			if useTLS {
				d.Logger.Info("server starting (TLS)",
					zap.String("service", d.Opts.Service),
					zap.String("addr", srv.Addr),
					zap.String("cert", sv.TLSCert),
				)
				go func() {
					if err := srv.ListenAndServeTLS(sv.TLSCert, sv.TLSKey); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			} else {
				d.Logger.Info("server starting (PLAINTEXT)",
					zap.String("service", d.Opts.Service),
					zap.String("addr", srv.Addr),
				)
				go func() {
					srv.TLSConfig = nil
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping", zap.String("service", d.Opts.Service))
			err := srv.Shutdown(ctx)

			// in-flight fire-and-forget deliveries get their own window
			dctx, cancel := context.WithTimeout(context.Background(), drain)
			defer cancel()
			if derr := d.D.Drain(dctx); derr != nil {
				d.Logger.Warn("deliveries still running at shutdown", zap.Error(derr))
			}
			_ = d.Logger.Sync()
			return err
		},
	})
}

// ---- helpers ----

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
