package manifest

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
)

// Route describes one inbound webhook surface.
type Route struct {
	Path           string   `toml:"path"`
	Method         string   `toml:"method"`
	Source         string   `toml:"source"`          // "github", "webprotege", ... (logging only)
	HeaderPrefixes []string `toml:"header_prefixes"` // allow-list forwarded downstream
	// AppendHeaders merges the filtered headers into JSON object bodies as
	// {"headers": {...}}. Unset means on for source "github", off otherwise.
	AppendHeaders *bool    `toml:"append_headers"`
	Policy        Policy   `toml:"policy"`
	Tags          []string `toml:"tags"`
}

type Policy struct {
	TimeoutMS int `toml:"timeout_ms"`
}

// DefaultRoutes mirrors the two webhook subscribers the relay replaces.
func DefaultRoutes() []Route {
	return []Route{
		{
			Path:           "/webhooks/github",
			Method:         http.MethodPost,
			Source:         "github",
			HeaderPrefixes: []string{"x-github", "x-hub"},
			AppendHeaders:  boolPtr(true),
		},
		{
			Path:          "/webhooks/webprotege",
			Method:        http.MethodPost,
			Source:        "webprotege",
			AppendHeaders: boolPtr(false),
		},
	}
}

// normalize path/method/prefixes
func (r *Route) normalize() error {
	if r.Path == "" {
		return errors.New("path is required")
	}
	if !strings.HasPrefix(r.Path, "/") {
		r.Path = "/" + r.Path
	}
	if r.Path != "/" {
		r.Path = path.Clean(r.Path)
	}
	r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
	if r.Method == "" {
		r.Method = http.MethodPost
	}
	r.Source = strings.ToLower(strings.TrimSpace(r.Source))
	if r.AppendHeaders == nil {
		r.AppendHeaders = boolPtr(r.Source == "github")
	}

	prefixes := make([]string, 0, len(r.HeaderPrefixes))
	for _, p := range r.HeaderPrefixes {
		if p = strings.TrimSpace(p); p != "" {
			prefixes = append(prefixes, p)
		}
	}
	r.HeaderPrefixes = prefixes
	return nil
}

func (r *Route) validate() error {
	switch r.Method {
	case http.MethodPost, http.MethodPut:
	default:
		return fmt.Errorf("method %q not supported for webhooks", r.Method)
	}
	if r.Policy.TimeoutMS < 0 {
		return errors.New("policy.timeout_ms must be >= 0")
	}
	return nil
}

// MergesHeaders reports whether bodies from this route carry the filtered
// headers inline.
func (r Route) MergesHeaders() bool { return r.AppendHeaders != nil && *r.AppendHeaders }

func boolPtr(b bool) *bool { return &b }
