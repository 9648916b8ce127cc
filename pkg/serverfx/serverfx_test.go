package serverfx

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joeydtaylor/steeze-relay/pkg/core"
	"github.com/joeydtaylor/steeze-relay/pkg/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func TestModuleGraph(t *testing.T) {
	require.NoError(t, fx.ValidateApp(Module(DefaultOptions())))
}

func TestManifestPath(t *testing.T) {
	o := DefaultOptions()
	t.Setenv(o.ManifestEnv, "")
	assert.Equal(t, "relay.toml", o.ManifestPath())

	t.Setenv(o.ManifestEnv, "/etc/relay/prod.toml")
	assert.Equal(t, "/etc/relay/prod.toml", o.ManifestPath())
}

func TestNewServerUsesManifestTimeouts(t *testing.T) {
	srv := newServer(manifest.Server{
		ListenAddress:  "127.0.0.1:9999",
		ReadTimeoutMS:  1500,
		WriteTimeoutMS: 2500,
		IdleTimeoutMS:  3500,
	}, http.NotFoundHandler())

	assert.Equal(t, "127.0.0.1:9999", srv.Addr)
	assert.Equal(t, 1500*time.Millisecond, srv.ReadTimeout)
	assert.Equal(t, 2500*time.Millisecond, srv.WriteTimeout)
	assert.Equal(t, 3500*time.Millisecond, srv.IdleTimeout)
}

type appHandler struct {
	fx.In
	App http.Handler `name:"app"`
}

func TestModuleServesWebhooks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relay.toml")
	src := fmt.Sprintf(`
[server]
listen_address = "127.0.0.1:0"

[logging]
dir = %q
level = "error"

[sinks.record]
dialect = "sqlite"
database = %q
`, filepath.Join(dir, "log"), filepath.Join(dir, "relay.db"))
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	opts := DefaultOptions()
	t.Setenv(opts.ManifestEnv, path)

	var h http.Handler
	app := fxtest.New(t,
		Module(opts),
		fx.Invoke(func(a appHandler) { h = a.App }),
	)
	app.RequireStart()
	defer app.RequireStop()
	require.NotNil(t, h)

	body := `{"projectId":"P1","userId":"U1","revisionNumber":2,"timestamp":1690000000000}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhooks/webprotege?protocol=SQL", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.ConfirmationText, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhooks/github?protocol=HTTP", strings.NewReader("{}")))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
