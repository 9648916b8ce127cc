package core

import (
	"time"

	"github.com/joeydtaylor/steeze-relay/pkg/middleware/metrics"
	"go.uber.org/zap"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Outcome is the result of one delivery. It is only ever logged and counted;
// it never changes the response the caller received.
type Outcome struct {
	EventID   string
	Source    string
	Selection Selection
	Sink      string
	Status    Status
	Err       error
	Duration  time.Duration
}

func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

type Reporter interface {
	Report(o Outcome)
}

type ReporterFunc func(o Outcome)

func (f ReporterFunc) Report(o Outcome) { f(o) }

// NewLogReporter logs outcomes to zl and records the delivery metrics.
func NewLogReporter(zl *zap.Logger) Reporter {
	return ReporterFunc(func(o Outcome) {
		metrics.ObserveDelivery(o.Selection.Protocol.String(), string(o.Selection.Channel), string(o.Status), o.Duration)

		fields := []zap.Field{
			zap.String("eventId", o.EventID),
			zap.String("source", o.Source),
			zap.String("protocol", o.Selection.Protocol.String()),
			zap.String("channel", string(o.Selection.Channel)),
			zap.String("sink", o.Sink),
			zap.String("outcome", string(o.Status)),
			zap.Duration("lat", o.Duration),
		}
		if o.Status == StatusFailure {
			zl.Error("delivery failed", append(fields, zap.Error(o.Err))...)
			return
		}
		zl.Info("delivery succeeded", fields...)
	})
}
