package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joeydtaylor/steeze-relay/pkg/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, src string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "relay.toml")
	require.NoError(t, os.WriteFile(p, []byte(src), 0o600))
	return p
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RELAY_LISTEN_ADDRESS", "")
	p := writeManifest(t, `
[dispatch]
record_timing = "immediate"

[sinks.record]
dialect = "sqlite"
database = "relay.db"
`)
	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.ListenAddress)
	assert.Equal(t, manifest.TimingImmediate, cfg.Dispatch.RecordTiming)
	assert.Equal(t, manifest.TimingAwait, cfg.Dispatch.QueueTiming)
	assert.Len(t, cfg.Routes, 2)
	require.NotNil(t, cfg.Sinks.Record)
}

func TestLoadConfigEnvWinsOverFile(t *testing.T) {
	t.Setenv("RELAY_LISTEN_ADDRESS", ":7070")
	p := writeManifest(t, "[server]\nlisten_address = \":9090\"\n")
	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.ListenAddress)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Len(t, cfg.Routes, 2)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(writeManifest(t, "[server\n"))
	assert.ErrorContains(t, err, "manifest")

	_, err = LoadConfig(writeManifest(t, "[dispatch]\nqueue_timing = \"later\"\n"))
	assert.ErrorContains(t, err, "queue_timing")
}
