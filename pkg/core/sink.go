package core

import "context"

// Delivery is everything a sink needs for one event.
type Delivery struct {
	Event     InboundEvent
	Headers   map[string]string // filtered
	Selection Selection
	// AppendHeaders asks sinks to merge Headers into JSON object bodies.
	AppendHeaders bool
}

// Forwarding is the per-route policy for what travels with an event.
type Forwarding struct {
	HeaderPrefixes []string
	AppendHeaders  bool
}

// Sink delivers one event downstream. Implementations acquire and release
// their own connections inside Deliver.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, d Delivery) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc struct {
	ID string
	Fn func(ctx context.Context, d Delivery) error
}

func (s SinkFunc) Name() string                                  { return s.ID }
func (s SinkFunc) Deliver(ctx context.Context, d Delivery) error { return s.Fn(ctx, d) }

// Sinks holds the adapters available to the dispatcher. Nil entries are
// unconfigured. Queues is keyed by channel (AMQP, AZURE-AMQP).
type Sinks struct {
	HTTP   Sink
	Queues map[Channel]Sink
	Record Sink
	Nested Sink
}

func (s Sinks) lookup(sel Selection) (Sink, bool) {
	var sk Sink
	switch sel.Protocol {
	case ProtocolHTTP:
		sk = s.HTTP
	case ProtocolQueue:
		sk = s.Queues[sel.Channel]
	case ProtocolRecord:
		sk = s.Record
	case ProtocolNested:
		sk = s.Nested
	}
	return sk, sk != nil
}

// Configured lists the channels that have a sink, for startup logging.
func (s Sinks) Configured() []Channel {
	var out []Channel
	for _, ch := range []Channel{ChannelHTTP, ChannelAMQP, ChannelAzureAMQP, ChannelSQL, ChannelLambda} {
		if _, ok := s.lookup(Selection{Protocol: channels[ch], Channel: ch}); ok {
			out = append(out, ch)
		}
	}
	return out
}
