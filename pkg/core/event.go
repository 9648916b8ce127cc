package core

import (
	"net/http"
	"strings"
	"time"
)

// InboundEvent is one received webhook notification. It is built once by the
// router and never mutated afterwards; sinks receive it by value.
type InboundEvent struct {
	ID         string
	Source     string // route source tag, e.g. "github"
	Method     string
	Path       string
	Headers    map[string][]string // lower-cased names
	Body       []byte
	Query      map[string]string // first value per key
	ReceivedAt time.Time
}

// NewInboundEvent captures r (whose body has already been read into body).
// The Host header, which net/http lifts out of r.Header, is restored under "host".
func NewInboundEvent(r *http.Request, id, source string, body []byte) InboundEvent {
	hdr := make(map[string][]string, len(r.Header)+1)
	for k, vs := range r.Header {
		name := strings.ToLower(k)
		hdr[name] = append(hdr[name], vs...)
	}
	if r.Host != "" {
		hdr["host"] = []string{r.Host}
	}

	q := map[string]string{}
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 {
			q[k] = vs[0]
		}
	}

	return InboundEvent{
		ID:         id,
		Source:     source,
		Method:     r.Method,
		Path:       r.URL.Path,
		Headers:    hdr,
		Body:       body,
		Query:      q,
		ReceivedAt: time.Now().UTC(),
	}
}

// HeaderMap flattens the headers, joining repeated values with ", ".
func (e InboundEvent) HeaderMap() map[string]string {
	out := make(map[string]string, len(e.Headers))
	for k, vs := range e.Headers {
		out[k] = strings.Join(vs, ", ")
	}
	return out
}

// Header returns the first value of the named header.
func (e InboundEvent) Header(name string) string {
	if vs := e.Headers[strings.ToLower(name)]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func (e InboundEvent) ContentType() string { return e.Header("Content-Type") }
