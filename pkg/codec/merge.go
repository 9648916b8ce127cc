package codec

import (
	"bytes"
	"encoding/json"
)

// HeadersKey is the field MergeHeaders writes into a JSON object body.
const HeadersKey = "headers"

// MergeHeaders returns body with a "headers" member set to headers. Only JSON
// objects are reshaped; for anything else it returns body unchanged and false.
// Existing members keep their raw encoding; a prior "headers" member is replaced.
func MergeHeaders(body []byte, headers map[string]string) ([]byte, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return body, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return body, false
	}
	if headers == nil {
		headers = map[string]string{}
	}
	h, err := JSON.Marshal(headers)
	if err != nil {
		return body, false
	}
	obj[HeadersKey] = h
	out, err := JSON.Marshal(obj)
	if err != nil {
		return body, false
	}
	return out, true
}
