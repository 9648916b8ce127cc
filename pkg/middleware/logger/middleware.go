package logger

import (
	"bytes"
	"io"
	"net/http"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Middleware struct {
	access *zap.Logger
	bodies *allowList
}

// NewMiddleware builds the access-log middleware writing to l.
func NewMiddleware(l *zap.Logger, bodyPaths []string) *Middleware {
	if l == nil {
		l = zap.NewNop()
	}
	return &Middleware{access: l, bodies: newAllowList(bodyPaths)}
}

// errReader replays a body read error after the buffered prefix, so a
// MaxBytesError still reaches the handler.
type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }

func (m *Middleware) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimd.NewWrapResponseWriter(w, r.ProtoMajor)

			// Read and RESTORE request body so downstream can consume it
			var body []byte
			if r.Body != nil {
				b, err := io.ReadAll(r.Body)
				body = b
				r.Body.Close()
				if err != nil {
					r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(b), errReader{err}))
				} else {
					r.Body = io.NopCloser(bytes.NewReader(b))
				}
			}

			scheme := "http"
			if r.TLS != nil {
				scheme = "https"
			}

			start := time.Now()
			defer func() {
				lat := time.Since(start)

				log := m.access.With(
					zap.String("dateTime", start.UTC().Format(time.RFC1123)),
					zap.String("requestId", chimd.GetReqID(r.Context())),
					zap.String("httpScheme", scheme),
					zap.String("httpProto", r.Proto),
					zap.String("httpMethod", r.Method),
					zap.String("remoteAddr", r.RemoteAddr),
					zap.String("uri", r.URL.Path),
					zap.String("protocol", r.URL.Query().Get("protocol")),
					zap.String("userAgent", r.UserAgent()),
					zap.Duration("lat", lat),
					zap.Int("requestSize", len(body)),
					zap.Int("responseSize", ww.BytesWritten()),
					zap.Int("status", ww.Status()),
				)

				// Redact by default; allowlist small JSON bodies only.
				if m.bodies.shouldLogBody(r, body) {
					log.Info("", zap.ByteString("requestData", body))
				} else {
					log.Info("")
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
