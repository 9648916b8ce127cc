package sinks

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joeydtaylor/steeze-relay/pkg/manifest"
	"github.com/segmentio/kafka-go"
)

type kafkaBroker struct {
	cfg manifest.Kafka
}

func newKafkaBroker(cfg manifest.Kafka) *kafkaBroker { return &kafkaBroker{cfg: cfg} }

func (b *kafkaBroker) Driver() manifest.QueueDriver { return manifest.DriverKafka }

// Open dials the first reachable broker; the writer itself connects lazily.
func (b *kafkaBroker) Open(ctx context.Context) (brokerSession, error) {
	d := &kafka.Dialer{ClientID: b.cfg.ClientID, Timeout: 10 * time.Second}
	var lastErr error
	for _, addr := range b.cfg.Brokers {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			lastErr = err
			continue
		}
		return &kafkaSession{cfg: b.cfg, dialer: d, conn: conn}, nil
	}
	if lastErr == nil {
		lastErr = errors.New("kafka: no brokers configured")
	}
	return nil, lastErr
}

type kafkaSession struct {
	cfg    manifest.Kafka
	dialer *kafka.Dialer
	conn   *kafka.Conn
	writer *kafka.Writer
}

// Declare creates the topic through the controller; an existing topic is fine.
func (s *kafkaSession) Declare(ctx context.Context, name string) error {
	ctrl, err := s.conn.Controller()
	if err != nil {
		return err
	}
	cc, err := s.dialer.DialContext(ctx, "tcp", net.JoinHostPort(ctrl.Host, strconv.Itoa(ctrl.Port)))
	if err != nil {
		return err
	}
	defer cc.Close()

	err = cc.CreateTopics(kafka.TopicConfig{
		Topic:             name,
		NumPartitions:     s.cfg.Partitions,
		ReplicationFactor: s.cfg.ReplicationFactor,
	})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return err
	}

	s.writer = &kafka.Writer{
		Addr:         kafka.TCP(s.cfg.Brokers...),
		Topic:        name,
		Balancer:     kafkaBalancer(s.cfg.Balancer),
		BatchTimeout: time.Duration(s.cfg.BatchTimeoutMS) * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
		Transport:    &kafka.Transport{ClientID: s.cfg.ClientID},
	}
	return nil
}

func kafkaBalancer(name string) kafka.Balancer {
	switch name {
	case "round_robin":
		return &kafka.RoundRobin{}
	case "hash":
		return &kafka.Hash{}
	default:
		return &kafka.LeastBytes{}
	}
}

func (s *kafkaSession) Publish(ctx context.Context, _ string, msg Message) error {
	if s.writer == nil {
		return errors.New("kafka: writer not open")
	}
	return s.writer.WriteMessages(ctx, kafkaMessage(msg))
}

func kafkaMessage(msg Message) kafka.Message {
	m := kafka.Message{
		Key:   []byte(msg.MessageID),
		Value: msg.Body,
		Time:  msg.Timestamp,
	}
	m.Headers = append(m.Headers, kafka.Header{Key: "content-type", Value: []byte(msg.ContentType)})
	for k, v := range msg.Headers {
		m.Headers = append(m.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return m
}

// Close flushes and closes the writer, then the bootstrap connection.
func (s *kafkaSession) Close() error {
	var errs *multierror.Error
	if s.writer != nil {
		if err := s.writer.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := s.conn.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}
