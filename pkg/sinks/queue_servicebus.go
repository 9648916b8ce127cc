package sinks

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus/admin"
	"github.com/hashicorp/go-multierror"
	"github.com/joeydtaylor/steeze-relay/pkg/manifest"
)

const sbCloseTimeout = 5 * time.Second

type serviceBusBroker struct {
	cfg manifest.ServiceBus
}

func newServiceBusBroker(cfg manifest.ServiceBus) *serviceBusBroker {
	return &serviceBusBroker{cfg: cfg}
}

func (b *serviceBusBroker) Driver() manifest.QueueDriver { return manifest.DriverServiceBus }

func (b *serviceBusBroker) Open(context.Context) (brokerSession, error) {
	client, err := azservicebus.NewClientFromConnectionString(b.cfg.ConnectionString, nil)
	if err != nil {
		return nil, err
	}
	s := &serviceBusSession{cfg: b.cfg, client: client}
	if b.cfg.Declare {
		ac, err := admin.NewClientFromConnectionString(b.cfg.ConnectionString, nil)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.admin = ac
	}
	return s, nil
}

type serviceBusSession struct {
	cfg    manifest.ServiceBus
	client *azservicebus.Client
	admin  *admin.Client
	sender *azservicebus.Sender
}

// Declare creates the topic or queue when management rights were granted;
// otherwise the entity is assumed to exist and only the sender is opened.
func (s *serviceBusSession) Declare(ctx context.Context, name string) error {
	if s.admin != nil {
		if err := s.ensureEntity(ctx, name); err != nil {
			return err
		}
	}
	sender, err := s.client.NewSender(name, nil)
	if err != nil {
		return err
	}
	s.sender = sender
	return nil
}

func (s *serviceBusSession) ensureEntity(ctx context.Context, name string) error {
	switch s.cfg.Entity {
	case "queue":
		got, err := s.admin.GetQueue(ctx, name, nil)
		if err != nil {
			return err
		}
		if got == nil {
			_, err = s.admin.CreateQueue(ctx, name, nil)
		}
		return err
	default:
		got, err := s.admin.GetTopic(ctx, name, nil)
		if err != nil {
			return err
		}
		if got == nil {
			_, err = s.admin.CreateTopic(ctx, name, nil)
		}
		return err
	}
}

func (s *serviceBusSession) Publish(ctx context.Context, _ string, msg Message) error {
	if s.sender == nil {
		return fmt.Errorf("servicebus: sender not open")
	}
	return s.sender.SendMessage(ctx, serviceBusMessage(msg), nil)
}

func serviceBusMessage(msg Message) *azservicebus.Message {
	m := &azservicebus.Message{
		Body:        msg.Body,
		ContentType: to.Ptr(msg.ContentType),
	}
	if msg.MessageID != "" {
		m.MessageID = to.Ptr(msg.MessageID)
	}
	if len(msg.Headers) > 0 {
		m.ApplicationProperties = make(map[string]any, len(msg.Headers))
		for k, v := range msg.Headers {
			m.ApplicationProperties[k] = v
		}
	}
	return m
}

// Close closes the sender, then the client.
func (s *serviceBusSession) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), sbCloseTimeout)
	defer cancel()

	var errs *multierror.Error
	if s.sender != nil {
		if err := s.sender.Close(ctx); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := s.client.Close(ctx); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}
