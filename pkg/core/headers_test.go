package core

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterHeadersGithub(t *testing.T) {
	in := map[string]string{"x-github-event": "push", "accept": "*/*"}
	got := FilterHeaders(in, []string{"x-github", "x-hub"})
	assert.Equal(t, map[string]string{"x-github-event": "push"}, got)
}

func TestFilterHeaders(t *testing.T) {
	in := map[string]string{
		"x-github-event":      "push",
		"x-github-delivery":   "72d3162e",
		"x-hub-signature-256": "sha256=abc",
		"content-type":        "application/json",
		"host":                "relay.local",
	}
	tests := []struct {
		name     string
		prefixes []string
		want     map[string]string
	}{
		{"no prefixes", nil, map[string]string{}},
		{"github only", []string{"x-github"}, map[string]string{
			"x-github-event":    "push",
			"x-github-delivery": "72d3162e",
		}},
		{"overlapping prefixes", []string{"x-", "x-hub"}, map[string]string{
			"x-github-event":      "push",
			"x-github-delivery":   "72d3162e",
			"x-hub-signature-256": "sha256=abc",
		}},
		{"case sensitive prefix", []string{"X-GitHub"}, map[string]string{}},
		{"empty prefix keeps all", []string{""}, in},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterHeaders(in, tt.prefixes)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Empty(t, FilterHeaders(nil, []string{"x-github"}))
}

// Exactness and idempotence over random header sets.
func TestFilterHeadersProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pool := []string{"x-github-", "x-hub-", "x-gitlab-", "accept", "content-", "user-agent", "x-"}

	for i := 0; i < 200; i++ {
		in := map[string]string{}
		for j := 0; j < rng.Intn(12); j++ {
			k := fmt.Sprintf("%s%d", pool[rng.Intn(len(pool))], rng.Intn(5))
			in[k] = fmt.Sprintf("v%d", rng.Int())
		}
		var prefixes []string
		for j := 0; j < rng.Intn(3); j++ {
			prefixes = append(prefixes, pool[rng.Intn(len(pool))])
		}

		out := FilterHeaders(in, prefixes)
		for k, v := range in {
			matches := false
			for _, p := range prefixes {
				if strings.HasPrefix(k, p) {
					matches = true
				}
			}
			got, kept := out[k]
			assert.Equal(t, matches, kept, "key %q prefixes %v", k, prefixes)
			if kept {
				assert.Equal(t, v, got)
			}
		}
		for k := range out {
			assert.Contains(t, in, k)
		}

		assert.Equal(t, out, FilterHeaders(out, prefixes))
	}
}
