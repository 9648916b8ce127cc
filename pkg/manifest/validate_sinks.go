package manifest

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// validateSinks checks presence only; reachability is a delivery-time concern.
func (c *Config) validateSinks() error {
	s := &c.Sinks
	if h := s.HTTP; h != nil {
		if strings.TrimSpace(h.URL) == "" {
			return errors.New("sinks.http: url required")
		}
		u, err := url.Parse(h.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("sinks.http: url %q must be an absolute http(s) URL", h.URL)
		}
		if h.TimeoutMS < 0 {
			return errors.New("sinks.http: timeout_ms must be >= 0")
		}
	}

	for label, q := range map[string]*QueueSink{"amqp": s.Queue.AMQP, "azure_amqp": s.Queue.AzureAMQP} {
		if q == nil {
			continue
		}
		if err := q.validate(); err != nil {
			return fmt.Errorf("sinks.queue.%s: %w", label, err)
		}
	}

	if r := s.Record; r != nil {
		switch r.Dialect {
		case DialectPostgres:
			if r.DSN == "" && (r.Host == "" || r.Database == "" || r.Username == "") {
				return errors.New("sinks.record: postgres needs dsn or host, database and username")
			}
		case DialectSQLite:
			if r.DSN == "" && r.Database == "" {
				return errors.New("sinks.record: sqlite needs dsn or database (file path)")
			}
		default:
			return fmt.Errorf("sinks.record: dialect %q unsupported (postgres|sqlite)", r.Dialect)
		}
	}

	if n := s.Nested; n != nil && strings.TrimSpace(n.FunctionName) == "" {
		return errors.New("sinks.nested: function_name required")
	}
	return nil
}

func (q *QueueSink) validate() error {
	if strings.TrimSpace(q.Name) == "" {
		return errors.New("name required")
	}
	switch q.Driver {
	case DriverRabbitMQ:
		if q.RabbitMQ == nil || (q.RabbitMQ.URL == "" && q.RabbitMQ.Host == "") {
			return errors.New("rabbitmq: url or host required")
		}
	case DriverServiceBus:
		if q.ServiceBus == nil || strings.TrimSpace(q.ServiceBus.ConnectionString) == "" {
			return errors.New("servicebus: connection_string required")
		}
		switch q.ServiceBus.Entity {
		case "topic", "queue":
		default:
			return fmt.Errorf("servicebus: entity %q invalid (topic|queue)", q.ServiceBus.Entity)
		}
	case DriverKafka:
		if q.Kafka == nil || len(q.Kafka.Brokers) == 0 {
			return errors.New("kafka: brokers required")
		}
		switch q.Kafka.Balancer {
		case "least_bytes", "round_robin", "hash":
		default:
			return fmt.Errorf("kafka: balancer %q invalid", q.Kafka.Balancer)
		}
	case DriverNATS:
		if q.NATS == nil || q.NATS.URL == "" || q.NATS.Stream == "" {
			return errors.New("nats: url and stream required")
		}
	case DriverRedis:
		if q.Redis == nil || q.Redis.URL == "" {
			return errors.New("redis: url required")
		}
	default:
		return fmt.Errorf("unknown driver %q", q.Driver)
	}
	return nil
}
