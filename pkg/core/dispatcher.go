package core

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/joeydtaylor/steeze-relay/pkg/manifest"
	"go.uber.org/zap"
)

// ConfirmationText is the body of every successful dispatch.
const ConfirmationText = "Successfully processed the webhook."

// State names the dispatcher's progress through one event.
type State string

const (
	StateReceived         State = "Received"
	StateHeadersFiltered  State = "HeadersFiltered"
	StateProtocolResolved State = "ProtocolResolved"
	StateDispatched       State = "Dispatched"
	StateResponded        State = "Responded"
)

// Response is what the caller is sent. Exactly one per event.
type Response struct {
	Status int
	Body   string
}

// Dispatcher runs filter -> select -> deliver -> respond for each event.
// Background deliveries are tracked so shutdown can drain them.
type Dispatcher struct {
	sinks    Sinks
	log      *zap.Logger
	reporter Reporter

	queueTiming     manifest.Timing
	recordTiming    manifest.Timing
	deliveryTimeout time.Duration

	inflight sync.WaitGroup
}

func NewDispatcher(sinks Sinks, cfg manifest.Dispatch, zl *zap.Logger, rep Reporter) *Dispatcher {
	if zl == nil {
		zl = zap.NewNop()
	}
	if rep == nil {
		rep = NewLogReporter(zl)
	}
	d := &Dispatcher{
		sinks:           sinks,
		log:             zl,
		reporter:        rep,
		queueTiming:     cfg.QueueTiming,
		recordTiming:    cfg.RecordTiming,
		deliveryTimeout: time.Duration(cfg.DeliveryTimeoutMS) * time.Millisecond,
	}
	if d.queueTiming == "" {
		d.queueTiming = manifest.TimingAwait
	}
	if d.recordTiming == "" {
		d.recordTiming = manifest.TimingAwait
	}
	return d
}

// Dispatch relays ev to the sink its protocol parameter names. Only
// HTTP-level problems (bad selector, missing sink) produce non-2xx responses;
// delivery failures are reported and the caller still gets 200.
func (d *Dispatcher) Dispatch(ctx context.Context, ev InboundEvent, fw Forwarding) Response {
	log := d.log.With(zap.String("eventId", ev.ID), zap.String("source", ev.Source))
	state := func(s State, fields ...zap.Field) {
		log.Debug("relay state", append([]zap.Field{zap.String("state", string(s))}, fields...)...)
	}

	all := ev.HeaderMap()
	state(StateReceived, zap.Any("headers", redactHeaders(all)))

	filtered := FilterHeaders(all, fw.HeaderPrefixes)
	state(StateHeadersFiltered, zap.Any("filteredHeaders", redactHeaders(filtered)))

	sel, err := SelectProtocol(ev.Query)
	if err != nil {
		log.Warn("protocol selection failed", zap.Error(err))
		state(StateResponded, zap.Int("status", http.StatusBadRequest))
		return Response{Status: http.StatusBadRequest, Body: err.Error()}
	}
	state(StateProtocolResolved, zap.String("protocol", sel.Protocol.String()), zap.String("channel", string(sel.Channel)))

	sink, ok := d.sinks.lookup(sel)
	if !ok {
		log.Error("no sink for protocol", zap.String("channel", string(sel.Channel)), zap.Error(ErrSinkNotConfigured))
		state(StateResponded, zap.Int("status", http.StatusServiceUnavailable))
		return Response{
			Status: http.StatusServiceUnavailable,
			Body:   fmt.Sprintf("%s: %s", ErrSinkNotConfigured, sel.Channel),
		}
	}

	dl := Delivery{Event: ev, Headers: filtered, Selection: sel, AppendHeaders: fw.AppendHeaders}
	if d.awaits(sel.Protocol) {
		dctx, cancel := d.awaitContext(ctx)
		d.run(dctx, sink, dl)
		cancel()
		state(StateDispatched, zap.String("sink", sink.Name()), zap.Bool("awaited", true))
	} else {
		d.spawn(sink, dl)
		state(StateDispatched, zap.String("sink", sink.Name()), zap.Bool("awaited", false))
	}

	state(StateResponded, zap.Int("status", http.StatusOK))
	return Response{Status: http.StatusOK, Body: ConfirmationText}
}

// awaits reports whether the caller waits for the sink to finish (including
// resource release) before being answered.
func (d *Dispatcher) awaits(p Protocol) bool {
	switch p {
	case ProtocolHTTP, ProtocolNested:
		return false
	case ProtocolQueue:
		return d.queueTiming == manifest.TimingAwait
	case ProtocolRecord:
		return d.recordTiming == manifest.TimingAwait
	}
	return false
}

// awaitContext detaches from client cancellation so a disconnecting caller
// cannot interrupt release, but keeps any route deadline.
func (d *Dispatcher) awaitContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(parent)
	if dl, ok := parent.Deadline(); ok {
		return context.WithDeadline(ctx, dl)
	}
	return context.WithCancel(ctx)
}

func (d *Dispatcher) spawn(sink Sink, dl Delivery) {
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		d.run(context.Background(), sink, dl)
	}()
}

func (d *Dispatcher) run(ctx context.Context, sink Sink, dl Delivery) {
	if d.deliveryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.deliveryTimeout)
		defer cancel()
	}

	start := time.Now()
	err := d.deliver(ctx, sink, dl)

	o := Outcome{
		EventID:   dl.Event.ID,
		Source:    dl.Event.Source,
		Selection: dl.Selection,
		Sink:      sink.Name(),
		Status:    StatusSuccess,
		Err:       err,
		Duration:  time.Since(start),
	}
	if err != nil {
		o.Status = StatusFailure
	}
	d.reporter.Report(o)
}

func (d *Dispatcher) deliver(ctx context.Context, sink Sink, dl Delivery) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("sink panic", zap.String("sink", sink.Name()), zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("sink %s panicked: %v", sink.Name(), r)
		}
	}()
	return sink.Deliver(ctx, dl)
}

// Drain blocks until background deliveries finish or ctx ends.
// Call it after the HTTP server has stopped accepting requests.
func (d *Dispatcher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
