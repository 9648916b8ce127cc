package manifest

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnv overlays the deployment environment onto a decoded manifest. It is
// called once at load time, before Validate; sinks never read the environment.
// An override that names a sink which is absent from the manifest creates it.
func (c *Config) ApplyEnv() {
	c.applyEnv(os.LookupEnv)
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) {
	get := func(k string) (string, bool) {
		v, ok := lookup(k)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("RELAY_LISTEN_ADDRESS"); ok {
		c.Server.ListenAddress = v
	}
	if v, ok := get("SSL_SERVER_CERTIFICATE"); ok {
		c.Server.TLSCert = v
	}
	if v, ok := get("SSL_SERVER_KEY"); ok {
		c.Server.TLSKey = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Logging.Level = v
	}

	if v, ok := get("ONTOLOGY_INGESTOR_URL"); ok {
		if c.Sinks.HTTP == nil {
			c.Sinks.HTTP = &HTTPSink{}
		}
		c.Sinks.HTTP.URL = v
	}

	c.applyAMQPEnv(get)
	c.applyServiceBusEnv(get)
	c.applyRecordEnv(get)

	if v, ok := get("FUNCTION_NAME"); ok {
		if c.Sinks.Nested == nil {
			c.Sinks.Nested = &NestedSink{}
		}
		c.Sinks.Nested.FunctionName = v
	}
	if v, ok := get("AWS_REGION"); ok && c.Sinks.Nested != nil && c.Sinks.Nested.Region == "" {
		c.Sinks.Nested.Region = v
	}
}

func (c *Config) applyAMQPEnv(get lookupFunc) {
	host, hasHost := get("AMQP_HOSTNAME")
	user, hasUser := get("AMQP_USERNAME")
	pass, hasPass := get("AMQP_PASSWORD")
	queue, hasQueue := get("AMQP_QUEUE")
	if !hasHost && !hasUser && !hasPass && !hasQueue {
		return
	}

	q := c.Sinks.Queue.AMQP
	if q == nil {
		q = &QueueSink{Driver: DriverRabbitMQ}
		c.Sinks.Queue.AMQP = q
	}
	if hasQueue {
		q.Name = queue
	}
	if !hasHost && !hasUser && !hasPass {
		return
	}
	if q.RabbitMQ == nil {
		q.RabbitMQ = &RabbitMQ{}
	}
	rb := q.RabbitMQ
	if hasHost {
		rb.Host = host
		if h, p, ok := strings.Cut(host, ":"); ok {
			if n, err := strconv.Atoi(p); err == nil {
				rb.Host, rb.Port = h, n
			}
		}
	}
	if hasUser {
		rb.Username = user
	}
	if hasPass {
		rb.Password = pass
	}
}

func (c *Config) applyServiceBusEnv(get lookupFunc) {
	conn, hasConn := get("AZURE_SERVICE_BUS_CONNECTION_STRING")
	topic, hasTopic := get("AZURE_SERVICE_BUS_TOPIC")
	if !hasConn && !hasTopic {
		return
	}
	q := c.Sinks.Queue.AzureAMQP
	if q == nil {
		q = &QueueSink{Driver: DriverServiceBus}
		c.Sinks.Queue.AzureAMQP = q
	}
	if hasTopic {
		q.Name = topic
	}
	if hasConn {
		if q.ServiceBus == nil {
			q.ServiceBus = &ServiceBus{}
		}
		q.ServiceBus.ConnectionString = conn
	}
}

func (c *Config) applyRecordEnv(get lookupFunc) {
	keys := []string{
		"RDBMS_DIALECT", "RDBMS_HOST", "RDBMS_PORT", "RDBMS_DATABASE_NAME",
		"RDBMS_USERNAME", "RDBMS_PASSWORD", "RDBMS_DSN",
	}
	vals := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := get(k); ok {
			vals[k] = v
		}
	}
	if len(vals) == 0 {
		return
	}

	r := c.Sinks.Record
	if r == nil {
		r = &RecordSink{}
		c.Sinks.Record = r
	}
	if v, ok := vals["RDBMS_DIALECT"]; ok {
		r.Dialect = Dialect(strings.ToLower(v))
	}
	if v, ok := vals["RDBMS_HOST"]; ok {
		r.Host = v
	}
	if v, ok := vals["RDBMS_PORT"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			r.Port = n
		}
	}
	if v, ok := vals["RDBMS_DATABASE_NAME"]; ok {
		r.Database = v
	}
	if v, ok := vals["RDBMS_USERNAME"]; ok {
		r.Username = v
	}
	if v, ok := vals["RDBMS_PASSWORD"]; ok {
		r.Password = v
	}
	if v, ok := vals["RDBMS_DSN"]; ok {
		r.DSN = v
	}
}
