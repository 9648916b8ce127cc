package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeHeadersObject(t *testing.T) {
	body := []byte(`{"ref":"refs/heads/main","size":12345678901234567890,"html":"<a>"}`)
	out, ok := MergeHeaders(body, map[string]string{"x-github-event": "push"})
	require.True(t, ok)

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &got))
	assert.JSONEq(t, `{"x-github-event":"push"}`, string(got["headers"]))
	assert.Equal(t, `"refs/heads/main"`, string(got["ref"]))
	// big numbers survive untouched
	assert.Equal(t, `12345678901234567890`, string(got["size"]))
	assert.Contains(t, string(out), `"<a>"`)
}

func TestMergeHeadersReplacesExisting(t *testing.T) {
	out, ok := MergeHeaders([]byte(`{"headers":"old"}`), nil)
	require.True(t, ok)
	assert.JSONEq(t, `{"headers":{}}`, string(out))
}

func TestMergeHeadersLeavesNonObjects(t *testing.T) {
	for _, in := range []string{`"hello"`, `[1,2]`, `hello`, ``, `{broken`} {
		out, ok := MergeHeaders([]byte(in), map[string]string{"a": "b"})
		assert.False(t, ok, in)
		assert.Equal(t, in, string(out))
	}
}

func TestUnmarshalSingleValue(t *testing.T) {
	type target struct {
		A int `json:"a"`
	}
	tests := []struct {
		name     string
		in       string
		ok       bool
		trailing bool
	}{
		{"declared only", `{"a":1}`, true, false},
		{"trailing whitespace", "{\"a\":1}\n\t ", true, false},
		{"unknown member", `{"a":1,"b":2}`, true, false},
		{"second value", `{"a":1} {}`, false, true},
		{"trailing garbage", `{"a":1} x`, false, true},
		{"malformed", `{"a":`, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v target
			err := JSON.Unmarshal([]byte(tt.in), &v)
			assert.Equal(t, tt.ok, err == nil, "JSON: %v", err)
			if tt.ok {
				assert.Equal(t, 1, v.A)
			}
			if tt.trailing {
				assert.ErrorIs(t, err, ErrTrailingData)
			}
		})
	}
}

func TestMarshalKeepsHTML(t *testing.T) {
	out, err := JSON.Marshal(map[string]string{"html": "<a href=\"x\">&</a>"})
	require.NoError(t, err)
	assert.Equal(t, `{"html":"<a href=\"x\">&</a>"}`, string(out))
}
