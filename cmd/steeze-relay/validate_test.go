package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relay.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[sinks.http]
url = "http://ingestor.local/ingest"
`), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"validate", "--manifest", path})
	require.NoError(t, rootCmd.Execute())

	s := out.String()
	assert.Contains(t, s, "route:    POST /webhooks/github source=github prefixes=[x-github,x-hub]")
	assert.Contains(t, s, "route:    POST /webhooks/webprotege source=webprotege prefixes=[]")
	assert.Contains(t, s, "sinks:    HTTP")
}
