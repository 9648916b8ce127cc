package logger

import (
	"net/http"
	"strings"
	"sync"
)

// allowList holds the paths whose small JSON bodies may be logged.
type allowList struct {
	mu    sync.RWMutex
	paths map[string]struct{}
}

func newAllowList(paths []string) *allowList {
	a := &allowList{paths: map[string]struct{}{}}
	a.add(paths...)
	return a
}

func (a *allowList) add(paths ...string) {
	a.mu.Lock()
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p != "" {
			a.paths[p] = struct{}{}
		}
	}
	a.mu.Unlock()
}

// AddBodyLogPaths extends the allow-list at runtime.
func (m *Middleware) AddBodyLogPaths(paths ...string) { m.bodies.add(paths...) }

// Only log small JSON request bodies on allowlisted routes.
func (a *allowList) shouldLogBody(r *http.Request, body []byte) bool {
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		return false
	}
	if len(body) == 0 || len(body) > 1<<16 { // 64 KiB cap
		return false
	}
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "application/json") {
		return false
	}
	a.mu.RLock()
	_, ok := a.paths[r.URL.Path]
	a.mu.RUnlock()
	return ok
}
