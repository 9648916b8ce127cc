package core

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/joeydtaylor/steeze-relay/pkg/codec"
)

// WebhookRecord is the row written by the record sink for a project update.
// ID is assigned by the store.
type WebhookRecord struct {
	ID             int64
	ProjectID      string
	UserID         string
	RevisionNumber int
	Timestamp      int64 // epoch millis
	OntologyID     *int
}

type webhookPayload struct {
	ProjectID      *string         `json:"projectId"`
	UserID         *string         `json:"userId"`
	RevisionNumber json.RawMessage `json:"revisionNumber"`
	Timestamp      json.RawMessage `json:"timestamp"`
	OntologyID     json.RawMessage `json:"ontologyId"`
}

// ParseWebhookRecord extracts a WebhookRecord from a JSON object body. Unknown
// fields are ignored. Integers may arrive as JSON numbers or numeric strings.
func ParseWebhookRecord(body []byte) (WebhookRecord, error) {
	var p webhookPayload
	if err := codec.JSON.Unmarshal(body, &p); err != nil {
		return WebhookRecord{}, &ValidationError{Field: "body", Reason: "must be a JSON object: " + err.Error()}
	}

	var rec WebhookRecord
	if p.ProjectID == nil {
		return rec, &ValidationError{Field: "projectId"}
	}
	if p.UserID == nil {
		return rec, &ValidationError{Field: "userId"}
	}
	rec.ProjectID, rec.UserID = *p.ProjectID, *p.UserID

	rev, ok, err := intField(p.RevisionNumber, 32)
	if err != nil {
		return rec, &ValidationError{Field: "revisionNumber", Reason: err.Error()}
	}
	if !ok {
		return rec, &ValidationError{Field: "revisionNumber"}
	}
	rec.RevisionNumber = int(rev)

	ts, ok, err := intField(p.Timestamp, 64)
	if err != nil {
		return rec, &ValidationError{Field: "timestamp", Reason: err.Error()}
	}
	if !ok {
		return rec, &ValidationError{Field: "timestamp"}
	}
	rec.Timestamp = ts

	oid, ok, err := intField(p.OntologyID, 32)
	if err != nil {
		return rec, &ValidationError{Field: "ontologyId", Reason: err.Error()}
	}
	if ok {
		v := int(oid)
		rec.OntologyID = &v
	}
	return rec, nil
}

// intField reports ok=false for absent or null values.
func intField(raw json.RawMessage, bits int) (int64, bool, error) {
	s := string(bytes.TrimSpace(raw))
	if s == "" || s == "null" {
		return 0, false, nil
	}
	if s[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false, err
		}
	}
	n, err := strconv.ParseInt(s, 10, bits)
	if err != nil {
		return 0, false, errorString("must be an integer, got " + strconv.Quote(s))
	}
	return n, true, nil
}
