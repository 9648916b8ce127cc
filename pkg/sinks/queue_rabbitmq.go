package sinks

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joeydtaylor/steeze-relay/pkg/manifest"
	amqp "github.com/rabbitmq/amqp091-go"
)

const amqpDialTimeout = 10 * time.Second

type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type amqpConn interface {
	Channel() (amqpChannel, error)
	Close() error
}

// amqpDialer connects and completes the AMQP handshake within timeout.
type amqpDialer func(url string, timeout time.Duration) (amqpConn, error)

type rabbitBroker struct {
	url  string
	dial amqpDialer
}

func newRabbitBroker(cfg manifest.RabbitMQ) *rabbitBroker {
	return &rabbitBroker{url: rabbitURL(cfg), dial: dialAMQP}
}

// rabbitURL prefers an explicit URL, else assembles one from the parts.
func rabbitURL(cfg manifest.RabbitMQ) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	u := amqp.URI{
		Scheme:   "amqp",
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		Vhost:    cfg.VHost,
	}
	if u.Port == 0 {
		u.Port = 5672
	}
	if u.Username == "" {
		u.Username, u.Password = "guest", "guest"
	}
	if u.Vhost == "" {
		u.Vhost = "/"
	}
	return u.String()
}

type amqpConnection struct{ *amqp.Connection }

func (c amqpConnection) Channel() (amqpChannel, error) { return c.Connection.Channel() }

func dialAMQP(url string, timeout time.Duration) (amqpConn, error) {
	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName("steeze-relay")
	c, err := amqp.DialConfig(url, amqp.Config{
		Dial:       amqp.DefaultDial(timeout),
		Properties: props,
	})
	if err != nil {
		return nil, err
	}
	return amqpConnection{c}, nil
}

func (b *rabbitBroker) Driver() manifest.QueueDriver { return manifest.DriverRabbitMQ }

// dialTimeout is amqpDialTimeout, shortened to whatever is left of ctx.
func dialTimeout(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	timeout := amqpDialTimeout
	if dl, ok := ctx.Deadline(); ok {
		left := time.Until(dl)
		if left <= 0 {
			return 0, context.DeadlineExceeded
		}
		if left < timeout {
			timeout = left
		}
	}
	return timeout, nil
}

func (b *rabbitBroker) Open(ctx context.Context) (brokerSession, error) {
	timeout, err := dialTimeout(ctx)
	if err != nil {
		return nil, err
	}
	conn, err := b.dial(b.url, timeout)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &rabbitSession{conn: conn, ch: ch}, nil
}

type rabbitSession struct {
	conn amqpConn
	ch   amqpChannel
}

func (s *rabbitSession) Declare(_ context.Context, name string) error {
	_, err := s.ch.QueueDeclare(name, true, false, false, false, nil)
	return err
}

func (s *rabbitSession) Publish(ctx context.Context, name string, msg Message) error {
	return s.ch.PublishWithContext(ctx, "", name, false, false, amqpPublishing(msg))
}

func amqpPublishing(msg Message) amqp.Publishing {
	p := amqp.Publishing{
		ContentType:  msg.ContentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.MessageID,
		Timestamp:    msg.Timestamp,
		Body:         msg.Body,
	}
	if len(msg.Headers) > 0 {
		p.Headers = amqp.Table{}
		for k, v := range msg.Headers {
			p.Headers[k] = v
		}
	}
	return p
}

// Close releases the channel, then the connection.
func (s *rabbitSession) Close() error {
	var errs *multierror.Error
	if err := s.ch.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := s.conn.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}
