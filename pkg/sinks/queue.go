package sinks

import (
	"context"
	"fmt"
	"time"

	"github.com/joeydtaylor/steeze-relay/pkg/codec"
	"github.com/joeydtaylor/steeze-relay/pkg/core"
	"github.com/joeydtaylor/steeze-relay/pkg/manifest"
	"go.uber.org/zap"
)

// Message is the broker-neutral unit a session publishes.
type Message struct {
	Body        []byte
	ContentType string
	MessageID   string
	Headers     map[string]string
	Timestamp   time.Time
}

// broker opens one session per delivery; nothing is pooled.
type broker interface {
	Driver() manifest.QueueDriver
	Open(ctx context.Context) (brokerSession, error)
}

// brokerSession is a connected client. Declare must be idempotent and create
// the durable queue/topic when absent.
type brokerSession interface {
	Declare(ctx context.Context, name string) error
	Publish(ctx context.Context, name string, msg Message) error
	Close() error
}

// QueuePublisher is the queue sink: connect, declare, publish, wait out the
// grace window, release. Release is deferred so it runs on every path.
type QueuePublisher struct {
	channel     core.Channel
	name        string
	grace       time.Duration
	contentType string
	broker      broker
	log         *zap.Logger
}

func newQueuePublisher(ch core.Channel, cfg manifest.QueueSink, b broker, zl *zap.Logger) *QueuePublisher {
	q := &QueuePublisher{
		channel:     ch,
		name:        cfg.Name,
		contentType: cfg.ContentType,
		broker:      b,
		log:         zl,
	}
	// negative disables the grace window
	if cfg.GraceMS > 0 {
		q.grace = time.Duration(cfg.GraceMS) * time.Millisecond
	}
	return q
}

func (q *QueuePublisher) Name() string {
	return fmt.Sprintf("queue:%s/%s", q.broker.Driver(), q.name)
}

func (q *QueuePublisher) Deliver(ctx context.Context, d core.Delivery) error {
	sess, err := q.broker.Open(ctx)
	if err != nil {
		return q.fail("connect", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			q.log.Warn("queue release failed",
				zap.String("sink", q.Name()),
				zap.String("eventId", d.Event.ID),
				zap.Error(cerr),
			)
		}
	}()

	if err := sess.Declare(ctx, q.name); err != nil {
		return q.fail("declare", err)
	}
	if err := sess.Publish(ctx, q.name, q.message(d)); err != nil {
		return q.fail("publish", err)
	}

	// let the client flush before the connection is torn down
	if q.grace > 0 {
		t := time.NewTimer(q.grace)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
	}
	return nil
}

func (q *QueuePublisher) message(d core.Delivery) Message {
	body, ct := d.Event.Body, d.Event.ContentType()
	if d.AppendHeaders {
		if merged, ok := codec.MergeHeaders(body, d.Headers); ok {
			body, ct = merged, codec.JSON.ContentType()
		}
	}
	if q.contentType != "" {
		ct = q.contentType
	}
	if ct == "" {
		ct = "application/octet-stream"
	}
	return Message{
		Body:        body,
		ContentType: ct,
		MessageID:   d.Event.ID,
		Headers:     d.Headers,
		Timestamp:   d.Event.ReceivedAt,
	}
}

func (q *QueuePublisher) fail(stage string, err error) error {
	return &core.DeliveryError{Sink: q.Name(), Stage: stage, Err: err}
}
