package sinks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/joeydtaylor/steeze-relay/pkg/codec"
	"github.com/joeydtaylor/steeze-relay/pkg/core"
	"github.com/joeydtaylor/steeze-relay/pkg/manifest"
)

// HTTPForwarder re-POSTs the payload to one URL. The response body is
// drained and discarded; anything but 2xx is a failure. Never retried.
type HTTPForwarder struct {
	url         string
	dropHeaders bool
	client      *http.Client
}

func NewHTTPForwarder(cfg manifest.HTTPSink, client *http.Client) *HTTPForwarder {
	if client == nil {
		client = &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond}
	}
	return &HTTPForwarder{
		url:         cfg.URL,
		dropHeaders: cfg.DropHeaders,
		client:      client,
	}
}

func (f *HTTPForwarder) Name() string { return "http" }

func (f *HTTPForwarder) Deliver(ctx context.Context, d core.Delivery) error {
	body, ct := d.Event.Body, d.Event.ContentType()
	if d.AppendHeaders {
		if merged, ok := codec.MergeHeaders(body, d.Headers); ok {
			body, ct = merged, codec.JSON.ContentType()
		}
	}
	if ct == "" {
		ct = codec.JSON.ContentType()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return f.fail("request", err)
	}
	if !f.dropHeaders {
		for k, v := range d.Headers {
			req.Header.Set(k, v)
		}
	}
	req.Header.Set("Content-Type", ct)
	req.Header.Set("User-Agent", "steeze-relay")

	resp, err := f.client.Do(req)
	if err != nil {
		return f.fail("post", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return f.fail("response", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return nil
}

func (f *HTTPForwarder) fail(stage string, err error) error {
	return &core.DeliveryError{Sink: f.Name(), Stage: stage, Err: err}
}
