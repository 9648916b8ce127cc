package core

import "fmt"

// ConfigurationError reports an unusable protocol selector. It is the only
// error the inbound caller ever sees.
type ConfigurationError struct {
	Param   string
	Value   string
	Missing bool
}

func (e *ConfigurationError) Error() string {
	if e.Missing {
		return fmt.Sprintf("missing %s query parameter (want HTTP|AMQP|AZURE-AMQP|SQL|LAMBDA)", e.Param)
	}
	return fmt.Sprintf("unsupported %s %q (want HTTP|AMQP|AZURE-AMQP|SQL|LAMBDA)", e.Param, e.Value)
}

// ValidationError reports a record field that is missing or mistyped.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("webhook record: %s is required", e.Field)
	}
	return fmt.Sprintf("webhook record: %s %s", e.Field, e.Reason)
}

// DeliveryError wraps a failure at one stage of a sink operation
// (connect, declare, publish, insert, invoke, ...).
type DeliveryError struct {
	Sink  string
	Stage string
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Sink, e.Stage, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// ErrSinkNotConfigured is returned when the selected protocol has no sink.
var ErrSinkNotConfigured = errorString("relay: sink not configured")

type errorString string

func (e errorString) Error() string { return string(e) }
