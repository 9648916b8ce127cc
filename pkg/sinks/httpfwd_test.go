package sinks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joeydtaylor/steeze-relay/pkg/core"
	"github.com/joeydtaylor/steeze-relay/pkg/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method string
	header http.Header
	body   []byte
}

func captureServer(t *testing.T, status int) (*httptest.Server, chan captured) {
	t.Helper()
	got := make(chan captured, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got <- captured{method: r.Method, header: r.Header.Clone(), body: b}
		w.WriteHeader(status)
		_, _ = w.Write([]byte("ignored"))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestHTTPForwarderPostsFilteredHeaders(t *testing.T) {
	srv, got := captureServer(t, http.StatusOK)
	f := NewHTTPForwarder(manifest.HTTPSink{URL: srv.URL, TimeoutMS: 2000}, nil)

	d := delivery(`{"x":1}`, "application/json", map[string]string{"x-github-event": "push"})
	require.NoError(t, f.Deliver(context.Background(), d))

	c := <-got
	assert.Equal(t, http.MethodPost, c.method)
	assert.JSONEq(t, `{"x":1}`, string(c.body))
	assert.Equal(t, "push", c.header.Get("X-Github-Event"))
	assert.Equal(t, "application/json", c.header.Get("Content-Type"))
}

func TestHTTPForwarderOptions(t *testing.T) {
	hdrs := map[string]string{"x-github-event": "push"}

	t.Run("drop headers", func(t *testing.T) {
		srv, got := captureServer(t, http.StatusAccepted)
		f := NewHTTPForwarder(manifest.HTTPSink{URL: srv.URL, DropHeaders: true}, srv.Client())
		require.NoError(t, f.Deliver(context.Background(), delivery(`{"x":1}`, "", hdrs)))
		c := <-got
		assert.Empty(t, c.header.Get("X-Github-Event"))
		assert.Equal(t, "application/json", c.header.Get("Content-Type"))
	})

	t.Run("append headers", func(t *testing.T) {
		srv, got := captureServer(t, http.StatusOK)
		f := NewHTTPForwarder(manifest.HTTPSink{URL: srv.URL}, srv.Client())
		d := delivery(`{"x":1}`, "application/json", hdrs)
		d.AppendHeaders = true
		require.NoError(t, f.Deliver(context.Background(), d))
		c := <-got
		var body map[string]any
		require.NoError(t, json.Unmarshal(c.body, &body))
		assert.EqualValues(t, 1, body["x"])
		assert.Equal(t, map[string]any{"x-github-event": "push"}, body["headers"])
	})
}

func TestHTTPForwarderFailures(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		srv, _ := captureServer(t, http.StatusBadGateway)
		f := NewHTTPForwarder(manifest.HTTPSink{URL: srv.URL}, srv.Client())
		err := f.Deliver(context.Background(), delivery(`{}`, "", nil))
		var de *core.DeliveryError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "response", de.Stage)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("network", func(t *testing.T) {
		srv, _ := captureServer(t, http.StatusOK)
		url := srv.URL
		srv.Close()
		f := NewHTTPForwarder(manifest.HTTPSink{URL: url, TimeoutMS: 1000}, nil)
		err := f.Deliver(context.Background(), delivery(`{}`, "", nil))
		var de *core.DeliveryError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "post", de.Stage)
	})
}
