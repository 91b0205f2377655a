package domain

import "time"

// AuditEntry records one processing action against a document.
type AuditEntry struct {
	Scope     string         `json:"scope"`
	Action    string         `json:"action"`
	RecordID  string         `json:"record_id"`
	OrgID     string         `json:"org_id,omitempty"`
	Diff      map[string]any `json:"diff,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
