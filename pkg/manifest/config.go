package manifest

// Config is the top-level relay manifest. It is loaded once at startup and
// handed to the dispatcher and every sink; nothing reads the environment after that.
type Config struct {
	Server   Server   `toml:"server"`
	Logging  Logging  `toml:"logging"`
	Dispatch Dispatch `toml:"dispatch"`
	Routes   []Route  `toml:"route"`
	Sinks    Sinks    `toml:"sinks"`
}

type Server struct {
	ListenAddress  string `toml:"listen_address"` // default ":8080"
	ReadTimeoutMS  int    `toml:"read_timeout_ms"`
	WriteTimeoutMS int    `toml:"write_timeout_ms"`
	IdleTimeoutMS  int    `toml:"idle_timeout_ms"`
	MaxBodyBytes   int64  `toml:"max_body_bytes"` // default 5 MiB
	TLSCert        string `toml:"tls_cert"`
	TLSKey         string `toml:"tls_key"`
}

type Logging struct {
	Level        string   `toml:"level"` // debug|info|warn|error
	Dir          string   `toml:"dir"`   // default "log"
	SystemFile   string   `toml:"system_file"`
	AccessFile   string   `toml:"access_file"`
	BodyLogPaths []string `toml:"body_log_paths"`
}

// Dispatch controls when the caller gets its response relative to delivery.
type Dispatch struct {
	DeliveryTimeoutMS int    `toml:"delivery_timeout_ms"` // default 30000
	DrainTimeoutMS    int    `toml:"drain_timeout_ms"`    // default 10000
	QueueTiming       Timing `toml:"queue_timing"`        // default "await"
	RecordTiming      Timing `toml:"record_timing"`       // default "await"
}

// Validate normalizes defaults and checks that every configured sink carries
// the fields it needs. Sinks that are absent are simply unavailable at runtime.
func (c *Config) Validate() error {
	c.applyDefaults()
	if err := c.validateRoutes(); err != nil {
		return err
	}
	if err := c.validateDispatch(); err != nil {
		return err
	}
	return c.validateSinks()
}
