package logger

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where a logger writes.
type Options struct {
	Dir   string // default "log"
	File  string
	Level string // debug|info|warn|error
	// Stdout tees JSON lines to the console as well as the rotating file.
	Stdout bool
	// OmitMessage drops the "msg" key (access logs carry only fields).
	OmitMessage bool
}

func ensureLogDir(dir string) string {
	if dir == "" {
		dir = "log"
	}
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

func parseLevel(s string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zap.InfoLevel
	}
	return lvl
}

func NewLog(o Options) *zap.Logger {
	dir := ensureLogDir(o.Dir)

	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if o.OmitMessage {
		cfg.MessageKey = zapcore.OmitKey
	}
	lvl := parseLevel(o.Level)

	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(dir, o.File),
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	})

	cores := []zapcore.Core{zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, lvl)}
	if o.Stdout {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.Lock(os.Stdout), lvl))
	}
	return zap.New(zapcore.NewTee(cores...))
}
