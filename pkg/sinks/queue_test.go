package sinks

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/joeydtaylor/steeze-relay/pkg/core"
	"github.com/joeydtaylor/steeze-relay/pkg/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBroker struct {
	mu       sync.Mutex
	calls    []string
	openErr  error
	declErr  error
	pubErr   error
	closeErr error
	declared []string
	sent     []Message
}

func (b *fakeBroker) Driver() manifest.QueueDriver { return "fake" }

func (b *fakeBroker) record(c string) {
	b.mu.Lock()
	b.calls = append(b.calls, c)
	b.mu.Unlock()
}

func (b *fakeBroker) Open(context.Context) (brokerSession, error) {
	b.record("open")
	if b.openErr != nil {
		return nil, b.openErr
	}
	return &fakeSession{b: b}, nil
}

type fakeSession struct{ b *fakeBroker }

func (s *fakeSession) Declare(_ context.Context, name string) error {
	s.b.record("declare")
	s.b.declared = append(s.b.declared, name)
	return s.b.declErr
}

func (s *fakeSession) Publish(_ context.Context, _ string, msg Message) error {
	s.b.record("publish")
	if s.b.pubErr != nil {
		return s.b.pubErr
	}
	s.b.sent = append(s.b.sent, msg)
	return nil
}

func (s *fakeSession) Close() error {
	s.b.record("close")
	return s.b.closeErr
}

func delivery(body string, ct string, headers map[string]string) core.Delivery {
	h := map[string][]string{}
	if ct != "" {
		h["content-type"] = []string{ct}
	}
	return core.Delivery{
		Event: core.InboundEvent{
			ID:         "evt-1",
			Body:       []byte(body),
			Headers:    h,
			ReceivedAt: time.Unix(1690000000, 0).UTC(),
		},
		Headers:   headers,
		Selection: core.Selection{Protocol: core.ProtocolQueue, Channel: core.ChannelAMQP},
	}
}

func newTestPublisher(b broker, cfg manifest.QueueSink) *QueuePublisher {
	if cfg.Name == "" {
		cfg.Name = "webhooks"
	}
	return newQueuePublisher(core.ChannelAMQP, cfg, b, zap.NewNop())
}

func TestQueuePublisherHappyPath(t *testing.T) {
	b := &fakeBroker{}
	p := newTestPublisher(b, manifest.QueueSink{GraceMS: 20})

	start := time.Now()
	require.NoError(t, p.Deliver(context.Background(), delivery("hello", "", nil)))

	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, []string{"open", "declare", "publish", "close"}, b.calls)
	assert.Equal(t, []string{"webhooks"}, b.declared)
	require.Len(t, b.sent, 1)
	assert.Equal(t, "hello", string(b.sent[0].Body))
	assert.Equal(t, "application/octet-stream", b.sent[0].ContentType)
	assert.Equal(t, "evt-1", b.sent[0].MessageID)
	assert.Equal(t, "queue:fake/webhooks", p.Name())
}

func TestQueuePublisherReleasesOnEveryFailure(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name  string
		b     *fakeBroker
		stage string
		calls []string
	}{
		{"connect", &fakeBroker{openErr: boom}, "connect", []string{"open"}},
		{"declare", &fakeBroker{declErr: boom}, "declare", []string{"open", "declare", "close"}},
		{"publish", &fakeBroker{pubErr: boom}, "publish", []string{"open", "declare", "publish", "close"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPublisher(tc.b, manifest.QueueSink{GraceMS: 1000})
			start := time.Now()
			err := p.Deliver(context.Background(), delivery("x", "", nil))

			var de *core.DeliveryError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tc.stage, de.Stage)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, tc.calls, tc.b.calls)
			// no grace wait on failure
			assert.Less(t, time.Since(start), 500*time.Millisecond)
		})
	}
}

func TestQueuePublisherCloseErrorIsNotAFailure(t *testing.T) {
	b := &fakeBroker{closeErr: errors.New("already closed")}
	p := newTestPublisher(b, manifest.QueueSink{})
	assert.NoError(t, p.Deliver(context.Background(), delivery("x", "", nil)))
	assert.Equal(t, "close", b.calls[len(b.calls)-1])
}

func TestQueuePublisherNegativeGraceSkipsWait(t *testing.T) {
	p := newTestPublisher(&fakeBroker{}, manifest.QueueSink{GraceMS: -1})
	assert.Zero(t, p.grace)

	start := time.Now()
	require.NoError(t, p.Deliver(context.Background(), delivery("x", "", nil)))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestQueuePublisherGraceStopsOnContextEnd(t *testing.T) {
	b := &fakeBroker{}
	p := newTestPublisher(b, manifest.QueueSink{GraceMS: 5000})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.NoError(t, p.Deliver(ctx, delivery("x", "", nil)))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, "close", b.calls[len(b.calls)-1])
}

func TestQueuePublisherMessageShape(t *testing.T) {
	hdrs := map[string]string{"x-github-event": "push"}

	t.Run("raw body keeps inbound content type", func(t *testing.T) {
		p := newTestPublisher(&fakeBroker{}, manifest.QueueSink{})
		msg := p.message(delivery(`{"ref":"main"}`, "application/json", hdrs))
		assert.JSONEq(t, `{"ref":"main"}`, string(msg.Body))
		assert.Equal(t, "application/json", msg.ContentType)
		assert.Equal(t, hdrs, msg.Headers)
	})

	t.Run("append headers merges into objects", func(t *testing.T) {
		p := newTestPublisher(&fakeBroker{}, manifest.QueueSink{})
		d := delivery(`{"ref":"main"}`, "", hdrs)
		d.AppendHeaders = true
		msg := p.message(d)
		var got map[string]any
		require.NoError(t, json.Unmarshal(msg.Body, &got))
		assert.Equal(t, map[string]any{"x-github-event": "push"}, got["headers"])
		assert.Equal(t, "application/json", msg.ContentType)
	})

	t.Run("append headers leaves raw text alone", func(t *testing.T) {
		p := newTestPublisher(&fakeBroker{}, manifest.QueueSink{})
		d := delivery("hello", "text/plain", hdrs)
		d.AppendHeaders = true
		msg := p.message(d)
		assert.Equal(t, "hello", string(msg.Body))
		assert.Equal(t, "text/plain", msg.ContentType)
	})

	t.Run("configured content type wins", func(t *testing.T) {
		p := newTestPublisher(&fakeBroker{}, manifest.QueueSink{ContentType: "application/json"})
		msg := p.message(delivery("hello", "text/plain", nil))
		assert.Equal(t, "application/json", msg.ContentType)
	})
}
