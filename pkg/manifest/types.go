package manifest

// Timing decides whether the inbound caller waits for a sink's resource
// release before receiving its response.
type Timing string

const (
	TimingAwait     Timing = "await"
	TimingImmediate Timing = "immediate"
)

// QueueDriver enumerates the broker clients a queue channel can be backed by.
type QueueDriver string

const (
	DriverRabbitMQ   QueueDriver = "rabbitmq"
	DriverServiceBus QueueDriver = "servicebus"
	DriverKafka      QueueDriver = "kafka"
	DriverNATS       QueueDriver = "nats"
	DriverRedis      QueueDriver = "redis"
)

// Dialect enumerates the relational stores the record writer can target.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)
