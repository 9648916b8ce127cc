package sinks

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/joeydtaylor/steeze-relay/pkg/codec"
	"github.com/joeydtaylor/steeze-relay/pkg/core"
	"github.com/joeydtaylor/steeze-relay/pkg/manifest"
)

type lambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// NestedForwarder hands the whole event to a second relay stage with an
// asynchronous (Event) invocation. Only submission is observed.
type NestedForwarder struct {
	function  string
	qualifier string
	client    lambdaInvoker
}

func NewNestedForwarder(ctx context.Context, cfg manifest.NestedSink) (*NestedForwarder, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	client := lambda.NewFromConfig(awsCfg, func(o *lambda.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		}
	})
	return newNestedForwarder(cfg, client), nil
}

func newNestedForwarder(cfg manifest.NestedSink, client lambdaInvoker) *NestedForwarder {
	return &NestedForwarder{function: cfg.FunctionName, qualifier: cfg.Qualifier, client: client}
}

func (f *NestedForwarder) Name() string { return "lambda:" + f.function }

func (f *NestedForwarder) Deliver(ctx context.Context, d core.Delivery) error {
	payload, err := codec.JSON.Marshal(newProxyEvent(d.Event))
	if err != nil {
		return &core.DeliveryError{Sink: f.Name(), Stage: "encode", Err: err}
	}

	in := &lambda.InvokeInput{
		FunctionName:   aws.String(f.function),
		InvocationType: types.InvocationTypeEvent,
		Payload:        payload,
	}
	if f.qualifier != "" {
		in.Qualifier = aws.String(f.qualifier)
	}

	out, err := f.client.Invoke(ctx, in)
	if err != nil {
		return &core.DeliveryError{Sink: f.Name(), Stage: "invoke", Err: err}
	}
	if out.FunctionError != nil {
		return &core.DeliveryError{Sink: f.Name(), Stage: "invoke", Err: fmt.Errorf("function error: %s", aws.ToString(out.FunctionError))}
	}
	if out.StatusCode != http.StatusAccepted {
		return &core.DeliveryError{Sink: f.Name(), Stage: "invoke", Err: fmt.Errorf("unexpected status %d", out.StatusCode)}
	}
	return nil
}

// proxyEvent is the API Gateway proxy shape the second stage already parses.
type proxyEvent struct {
	Path                  string              `json:"path"`
	HTTPMethod            string              `json:"httpMethod"`
	Headers               map[string]string   `json:"headers"`
	MultiValueHeaders     map[string][]string `json:"multiValueHeaders"`
	QueryStringParameters map[string]string   `json:"queryStringParameters"`
	Body                  string              `json:"body"`
	IsBase64Encoded       bool                `json:"isBase64Encoded"`
	RequestContext        proxyRequestContext `json:"requestContext"`
}

type proxyRequestContext struct {
	RequestID        string `json:"requestId"`
	RequestTimeEpoch int64  `json:"requestTimeEpoch"`
}

func newProxyEvent(ev core.InboundEvent) proxyEvent {
	pe := proxyEvent{
		Path:                  ev.Path,
		HTTPMethod:            ev.Method,
		Headers:               ev.HeaderMap(),
		MultiValueHeaders:     ev.Headers,
		QueryStringParameters: ev.Query,
		RequestContext: proxyRequestContext{
			RequestID:        ev.ID,
			RequestTimeEpoch: ev.ReceivedAt.UnixMilli(),
		},
	}
	if utf8.Valid(ev.Body) {
		pe.Body = string(ev.Body)
	} else {
		pe.Body = base64.StdEncoding.EncodeToString(ev.Body)
		pe.IsBase64Encoded = true
	}
	return pe
}
