package manifest

type Kafka struct {
	Brokers []string `toml:"brokers"` // e.g., ["127.0.0.1:19092"]

	// Client identity
	ClientID string `toml:"client_id"` // default: "steeze-relay"

	// Topic declaration when the topic is missing
	Partitions        int `toml:"partitions"`         // default: 1
	ReplicationFactor int `toml:"replication_factor"` // default: 1

	// kafka-go writer tuning
	BatchTimeoutMS int    `toml:"batch_timeout_ms"` // default: 50
	Balancer       string `toml:"balancer"`         // "least_bytes"(def) | "round_robin" | "hash"
}
