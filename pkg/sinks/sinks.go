package sinks

import (
	"context"
	"fmt"

	"github.com/joeydtaylor/steeze-relay/pkg/core"
	"github.com/joeydtaylor/steeze-relay/pkg/manifest"
	"go.uber.org/zap"
)

// Build turns the validated sink configuration into the dispatcher's adapter
// set. Absent sections stay nil and answer 503 at dispatch time.
func Build(ctx context.Context, cfg manifest.Sinks, zl *zap.Logger) (core.Sinks, error) {
	if zl == nil {
		zl = zap.NewNop()
	}
	out := core.Sinks{Queues: map[core.Channel]core.Sink{}}

	if cfg.HTTP != nil {
		out.HTTP = NewHTTPForwarder(*cfg.HTTP, nil)
	}

	for ch, q := range map[core.Channel]*manifest.QueueSink{
		core.ChannelAMQP:      cfg.Queue.AMQP,
		core.ChannelAzureAMQP: cfg.Queue.AzureAMQP,
	} {
		if q == nil {
			continue
		}
		b, err := newBroker(*q)
		if err != nil {
			return core.Sinks{}, fmt.Errorf("sinks.queue %s: %w", ch, err)
		}
		out.Queues[ch] = newQueuePublisher(ch, *q, b, zl)
	}

	if cfg.Record != nil {
		out.Record = NewRecordWriter(*cfg.Record, zl)
	}

	if cfg.Nested != nil {
		nf, err := NewNestedForwarder(ctx, *cfg.Nested)
		if err != nil {
			return core.Sinks{}, fmt.Errorf("sinks.nested: %w", err)
		}
		out.Nested = nf
	}
	return out, nil
}

func newBroker(q manifest.QueueSink) (broker, error) {
	switch q.Driver {
	case manifest.DriverRabbitMQ:
		if q.RabbitMQ == nil {
			return nil, fmt.Errorf("rabbitmq settings missing")
		}
		return newRabbitBroker(*q.RabbitMQ), nil
	case manifest.DriverServiceBus:
		if q.ServiceBus == nil {
			return nil, fmt.Errorf("servicebus settings missing")
		}
		return newServiceBusBroker(*q.ServiceBus), nil
	case manifest.DriverKafka:
		if q.Kafka == nil {
			return nil, fmt.Errorf("kafka settings missing")
		}
		return newKafkaBroker(*q.Kafka), nil
	case manifest.DriverNATS:
		if q.NATS == nil {
			return nil, fmt.Errorf("nats settings missing")
		}
		return newNATSBroker(*q.NATS), nil
	case manifest.DriverRedis:
		if q.Redis == nil {
			return nil, fmt.Errorf("redis settings missing")
		}
		return newRedisBroker(*q.Redis), nil
	}
	return nil, fmt.Errorf("unknown driver %q", q.Driver)
}
