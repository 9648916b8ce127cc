package manifest

// Sinks groups the downstream targets. A nil entry means the protocol that
// selects it answers 503 at runtime.
type Sinks struct {
	HTTP   *HTTPSink   `toml:"http,omitempty"`
	Queue  QueueSinks  `toml:"queue"`
	Record *RecordSink `toml:"record,omitempty"`
	Nested *NestedSink `toml:"nested,omitempty"`
}

// HTTPSink re-POSTs the inbound payload.
type HTTPSink struct {
	URL         string `toml:"url"`
	DropHeaders bool   `toml:"drop_headers"` // do not attach filtered headers
	TimeoutMS   int    `toml:"timeout_ms"`   // default 10000
}

// NestedSink asynchronously invokes a second relay stage (AWS Lambda).
type NestedSink struct {
	FunctionName string `toml:"function_name"`
	Qualifier    string `toml:"qualifier"`
	Region       string `toml:"region"`
	EndpointURL  string `toml:"endpoint_url"` // LocalStack and friends
}

// Enabled lists the protocol spellings that have a sink configured, in
// dispatch order.
func (s Sinks) Enabled() []string {
	var out []string
	if s.HTTP != nil {
		out = append(out, "HTTP")
	}
	if s.Queue.AMQP != nil {
		out = append(out, "AMQP")
	}
	if s.Queue.AzureAMQP != nil {
		out = append(out, "AZURE-AMQP")
	}
	if s.Record != nil {
		out = append(out, "SQL")
	}
	if s.Nested != nil {
		out = append(out, "LAMBDA")
	}
	return out
}
