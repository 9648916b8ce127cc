package manifest

// QueueSinks holds one queue configuration per queue channel spelling.
type QueueSinks struct {
	AMQP      *QueueSink `toml:"amqp,omitempty"`       // protocol=AMQP
	AzureAMQP *QueueSink `toml:"azure_amqp,omitempty"` // protocol=AZURE-AMQP
}

// QueueSink is a durable queue/topic on some broker.
type QueueSink struct {
	Driver      QueueDriver `toml:"driver"`   // rabbitmq | servicebus | kafka | nats | redis
	Name        string      `toml:"name"`     // queue, topic, subject or stream key
	GraceMS     int         `toml:"grace_ms"` // flush window before release; 0 means 500, negative disables
	ContentType string      `toml:"content_type"`

	RabbitMQ   *RabbitMQ   `toml:"rabbitmq,omitempty"`
	ServiceBus *ServiceBus `toml:"servicebus,omitempty"`
	Kafka      *Kafka      `toml:"kafka,omitempty"`
	NATS       *NATS       `toml:"nats,omitempty"`
	Redis      *Redis      `toml:"redis,omitempty"`
}

type RabbitMQ struct {
	URL      string `toml:"url"` // wins over host/credentials when set
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	VHost    string `toml:"vhost"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type ServiceBus struct {
	ConnectionString string `toml:"connection_string"`
	Entity           string `toml:"entity"`  // "topic" (default) | "queue"
	Declare          bool   `toml:"declare"` // create the entity when missing (needs Manage rights)
}

type NATS struct {
	URL      string `toml:"url"`
	Stream   string `toml:"stream"` // JetStream stream capturing the subject
	Username string `toml:"username"`
	Password string `toml:"password"`
	Token    string `toml:"token"`
}

type Redis struct {
	URL    string `toml:"url"`     // redis://host:6379/0
	MaxLen int64  `toml:"max_len"` // approximate stream cap, 0 = unbounded
}
