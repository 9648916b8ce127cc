package core

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	manifest "github.com/joeydtaylor/steeze-relay/pkg/manifest"
)

// EventIDHeader echoes the relay's event id back to the caller.
const EventIDHeader = "X-Relay-Event-Id"

func wrapRoute(rt manifest.Route, d BuildDeps) http.HandlerFunc {
	fw := Forwarding{
		HeaderPrefixes: append([]string(nil), rt.HeaderPrefixes...),
		AppendHeaders:  rt.MergesHeaders(),
	}
	source := rt.Source

	return func(w http.ResponseWriter, r *http.Request) {
		if d.Dispatcher == nil {
			http.Error(w, "relay unavailable", http.StatusServiceUnavailable)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				writeText(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			writeText(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}

		ev := NewInboundEvent(r, uuid.NewString(), source, body)
		w.Header().Set(EventIDHeader, ev.ID)

		resp := d.Dispatcher.Dispatch(r.Context(), ev, fw)
		writeText(w, resp.Body, resp.Status)
	}
}
