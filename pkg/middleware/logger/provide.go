package logger

import (
	"github.com/joeydtaylor/steeze-relay/pkg/manifest"
	"go.uber.org/zap"
)

func ProvideLoggerMiddleware(cfg manifest.Config) *Middleware {
	access := NewLog(Options{
		Dir:         cfg.Logging.Dir,
		File:        cfg.Logging.AccessFile,
		Level:       "info",
		Stdout:      true,
		OmitMessage: true,
	})
	return NewMiddleware(access, cfg.Logging.BodyLogPaths)
}

func ProvideLogger(cfg manifest.Config) *zap.Logger {
	return NewLog(Options{
		Dir:    cfg.Logging.Dir,
		File:   cfg.Logging.SystemFile,
		Level:  cfg.Logging.Level,
		Stdout: true,
	})
}
