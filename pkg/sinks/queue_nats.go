package sinks

import (
	"context"
	"fmt"
	"time"

	"github.com/joeydtaylor/steeze-relay/pkg/manifest"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

type natsBroker struct {
	cfg manifest.NATS
}

func newNATSBroker(cfg manifest.NATS) *natsBroker { return &natsBroker{cfg: cfg} }

func (b *natsBroker) Driver() manifest.QueueDriver { return manifest.DriverNATS }

func (b *natsBroker) Open(context.Context) (brokerSession, error) {
	opts := []nats.Option{
		nats.Name("steeze-relay"),
		nats.Timeout(5 * time.Second),
		nats.MaxReconnects(0),
	}
	if b.cfg.Username != "" && b.cfg.Password != "" {
		opts = append(opts, nats.UserInfo(b.cfg.Username, b.cfg.Password))
	}
	if b.cfg.Token != "" {
		opts = append(opts, nats.Token(b.cfg.Token))
	}

	conn, err := nats.Connect(b.cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return &natsSession{stream: b.cfg.Stream, conn: conn, js: js}, nil
}

type natsSession struct {
	stream string
	conn   *nats.Conn
	js     jetstream.JetStream
}

// Declare makes sure a file-backed stream captures the subject.
func (s *natsSession) Declare(ctx context.Context, subject string) error {
	_, err := s.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      s.stream,
		Subjects:  []string{subject},
		Retention: jetstream.LimitsPolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("failed to create/update stream %s: %w", s.stream, err)
	}
	return nil
}

func (s *natsSession) Publish(ctx context.Context, subject string, msg Message) error {
	var opts []jetstream.PublishOpt
	if msg.MessageID != "" {
		opts = append(opts, jetstream.WithMsgID(msg.MessageID))
	}
	_, err := s.js.PublishMsg(ctx, natsMessage(subject, msg), opts...)
	return err
}

func natsMessage(subject string, msg Message) *nats.Msg {
	m := nats.NewMsg(subject)
	m.Data = msg.Body
	m.Header.Set("Content-Type", msg.ContentType)
	for k, v := range msg.Headers {
		m.Header.Set(k, v)
	}
	return m
}

// Close drains pending publishes before closing.
func (s *natsSession) Close() error {
	return s.conn.Drain()
}
