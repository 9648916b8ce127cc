package core

import "strings"

// FilterHeaders keeps the headers whose name starts with one of prefixes.
// Prefixes match case-sensitively as configured; inbound names are already
// lower-cased. Values pass through untouched. The result is always non-nil.
func FilterHeaders(headers map[string]string, prefixes []string) map[string]string {
	out := make(map[string]string)
	if len(prefixes) == 0 {
		return out
	}
	for name, v := range headers {
		for _, p := range prefixes {
			if strings.HasPrefix(name, p) {
				out[name] = v
				break
			}
		}
	}
	return out
}

const redacted = "[redacted]"

// sensitiveHeaders never reach the logs with their values.
var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"cookie":              {},
	"set-cookie":          {},
	"x-api-key":           {},
	"x-gitlab-token":      {},
}

// redactHeaders copies headers for logging with credential values masked.
func redactHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for name, v := range headers {
		if _, ok := sensitiveHeaders[name]; ok {
			v = redacted
		}
		out[name] = v
	}
	return out
}
