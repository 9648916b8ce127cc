package manifest

const (
	defaultListenAddress     = ":8080"
	defaultMaxBodyBytes      = 5 << 20
	defaultDeliveryTimeoutMS = 30_000
	defaultDrainTimeoutMS    = 10_000
	defaultQueueGraceMS      = 500
	defaultHTTPTimeoutMS     = 10_000
	defaultRecordTimeoutMS   = 5_000
)

func (c *Config) applyDefaults() {
	sv := &c.Server
	if sv.ListenAddress == "" {
		sv.ListenAddress = defaultListenAddress
	}
	if sv.ReadTimeoutMS == 0 {
		sv.ReadTimeoutMS = 15_000
	}
	if sv.WriteTimeoutMS == 0 {
		sv.WriteTimeoutMS = 30_000
	}
	if sv.IdleTimeoutMS == 0 {
		sv.IdleTimeoutMS = 60_000
	}
	if sv.MaxBodyBytes == 0 {
		sv.MaxBodyBytes = defaultMaxBodyBytes
	}

	lg := &c.Logging
	if lg.Level == "" {
		lg.Level = "info"
	}
	if lg.Dir == "" {
		lg.Dir = "log"
	}
	if lg.SystemFile == "" {
		lg.SystemFile = "system.log"
	}
	if lg.AccessFile == "" {
		lg.AccessFile = "http-access.log"
	}

	d := &c.Dispatch
	if d.DeliveryTimeoutMS == 0 {
		d.DeliveryTimeoutMS = defaultDeliveryTimeoutMS
	}
	if d.DrainTimeoutMS == 0 {
		d.DrainTimeoutMS = defaultDrainTimeoutMS
	}
	if d.QueueTiming == "" {
		d.QueueTiming = TimingAwait
	}
	if d.RecordTiming == "" {
		d.RecordTiming = TimingAwait
	}

	s := &c.Sinks
	if s.HTTP != nil && s.HTTP.TimeoutMS == 0 {
		s.HTTP.TimeoutMS = defaultHTTPTimeoutMS
	}
	if q := s.Queue.AMQP; q != nil {
		q.applyDefaults(DriverRabbitMQ)
	}
	if q := s.Queue.AzureAMQP; q != nil {
		q.applyDefaults(DriverServiceBus)
	}
	if r := s.Record; r != nil {
		if r.Dialect == "" {
			r.Dialect = DialectPostgres
		}
		if r.SSLMode == "" {
			r.SSLMode = "disable"
		}
		if r.TimeoutMS == 0 {
			r.TimeoutMS = defaultRecordTimeoutMS
		}
	}
}

func (q *QueueSink) applyDefaults(driver QueueDriver) {
	if q.Driver == "" {
		q.Driver = driver
	}
	if q.GraceMS == 0 {
		q.GraceMS = defaultQueueGraceMS
	}
	if q.ServiceBus != nil && q.ServiceBus.Entity == "" {
		q.ServiceBus.Entity = "topic"
	}
	if q.Driver == DriverServiceBus && q.ContentType == "" {
		q.ContentType = "application/json"
	}
	if k := q.Kafka; k != nil {
		if k.ClientID == "" {
			k.ClientID = "steeze-relay"
		}
		if k.Partitions == 0 {
			k.Partitions = 1
		}
		if k.ReplicationFactor == 0 {
			k.ReplicationFactor = 1
		}
		if k.BatchTimeoutMS == 0 {
			k.BatchTimeoutMS = 50
		}
		if k.Balancer == "" {
			k.Balancer = "least_bytes"
		}
	}
}
