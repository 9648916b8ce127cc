package core

import "strings"

// ProtocolParam is the query parameter naming the target sink.
const ProtocolParam = "protocol"

// Protocol is the closed set of sink families an event can be relayed to.
type Protocol int

const (
	ProtocolHTTP Protocol = iota + 1
	ProtocolQueue
	ProtocolRecord
	ProtocolNested
)

func (p Protocol) String() string {
	switch p {
	case ProtocolHTTP:
		return "HTTP"
	case ProtocolQueue:
		return "QUEUE"
	case ProtocolRecord:
		return "RECORD"
	case ProtocolNested:
		return "NESTED"
	}
	return "UNKNOWN"
}

// Channel is the canonical spelling the caller used. Two channels (AMQP and
// AZURE-AMQP) share the queue protocol but address different brokers.
type Channel string

const (
	ChannelHTTP      Channel = "HTTP"
	ChannelAMQP      Channel = "AMQP"
	ChannelAzureAMQP Channel = "AZURE-AMQP"
	ChannelSQL       Channel = "SQL"
	ChannelLambda    Channel = "LAMBDA"
)

var channels = map[Channel]Protocol{
	ChannelHTTP:      ProtocolHTTP,
	ChannelAMQP:      ProtocolQueue,
	ChannelAzureAMQP: ProtocolQueue,
	ChannelSQL:       ProtocolRecord,
	ChannelLambda:    ProtocolNested,
}

// Selection is the resolved target of one event.
type Selection struct {
	Protocol Protocol
	Channel  Channel
}

// SelectProtocol resolves the protocol query parameter case-insensitively.
// Absent or unrecognised values fail with *ConfigurationError; nothing is defaulted.
func SelectProtocol(query map[string]string) (Selection, error) {
	raw, ok := query[ProtocolParam]
	if !ok || strings.TrimSpace(raw) == "" {
		return Selection{}, &ConfigurationError{Param: ProtocolParam, Missing: true}
	}
	ch := Channel(strings.ToUpper(strings.TrimSpace(raw)))
	p, ok := channels[ch]
	if !ok {
		return Selection{}, &ConfigurationError{Param: ProtocolParam, Value: raw}
	}
	return Selection{Protocol: p, Channel: ch}, nil
}
