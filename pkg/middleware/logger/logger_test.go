package logger

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func serve(t *testing.T, m *Middleware, next http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Middleware()(next).ServeHTTP(rec, req)
	return rec
}

func TestAccessLogFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := NewMiddleware(zap.New(core), nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/github?protocol=AMQP", strings.NewReader(`{"a":1}`))
	req.Header.Set("User-Agent", "GitHub-Hookshot/abc")
	rec := serve(t, m, func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(b))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	}, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	entries := logs.All()
	require.Len(t, entries, 1)
	f := entries[0].ContextMap()
	assert.Equal(t, "/webhooks/github", f["uri"])
	assert.Equal(t, "AMQP", f["protocol"])
	assert.Equal(t, http.MethodPost, f["httpMethod"])
	assert.Equal(t, "GitHub-Hookshot/abc", f["userAgent"])
	assert.EqualValues(t, 7, f["requestSize"])
	assert.EqualValues(t, 2, f["responseSize"])
	assert.EqualValues(t, http.StatusAccepted, f["status"])
	assert.NotContains(t, f, "requestData")
}

func TestBodyLoggedOnlyForAllowlistedJSON(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := NewMiddleware(zap.New(core), []string{"/webhooks/webprotege"})
	noop := func(w http.ResponseWriter, r *http.Request) {}

	send := func(path, ct, body string) map[string]any {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", ct)
		serve(t, m, noop, req)
		all := logs.TakeAll()
		require.Len(t, all, 1)
		return all[0].ContextMap()
	}

	assert.Equal(t, `{"p":1}`, send("/webhooks/webprotege", "application/json", `{"p":1}`)["requestData"])
	assert.NotContains(t, send("/webhooks/webprotege", "text/plain", "hi"), "requestData")
	assert.NotContains(t, send("/webhooks/github", "application/json", `{"p":1}`), "requestData")
	assert.NotContains(t, send("/webhooks/webprotege", "application/json", `{"p":"`+strings.Repeat("x", 1<<16)+`"}`), "requestData")

	m.AddBodyLogPaths(" /webhooks/github ")
	assert.Contains(t, send("/webhooks/github", "application/json", `{"p":1}`), "requestData")
}

func TestBodyLimitErrorReachesHandler(t *testing.T) {
	m := NewMiddleware(zap.NewNop(), nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/github", strings.NewReader(strings.Repeat("x", 100)))
	var readErr error
	var got []byte
	inner := m.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, readErr = io.ReadAll(r.Body)
	}))
	limited := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 10)
		inner.ServeHTTP(w, r)
	})
	limited.ServeHTTP(httptest.NewRecorder(), req)

	var tooBig *http.MaxBytesError
	require.True(t, errors.As(readErr, &tooBig))
	assert.Len(t, got, 10)
}

func TestNewLogWritesRotatingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l := NewLog(Options{Dir: dir, File: "system.log", Level: "WARN"})
	l.Info("dropped")
	l.Warn("kept", zap.String("k", "v"))
	require.NoError(t, l.Sync())

	b, err := os.ReadFile(filepath.Join(dir, "system.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "dropped")
	assert.Contains(t, string(b), `"msg":"kept"`)
	assert.Contains(t, string(b), `"k":"v"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel(" debug "))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("ERROR"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("loud"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}
