package model

import "ondc-conformance/internal/verr"

// ValidationReport is the result of one validation call. It is returned by
// the HTTP API, published to the result topic and, when not valid, appended
// to the report store.
type ValidationReport struct {
	ID        string                 `json:"report_id"`
	Kind      Kind                   `json:"kind"`
	Stage     string                 `json:"stage,omitempty"` // lifecycle stage for on_status
	Context   ContextMeta            `json:"context"`
	Valid     bool                   `json:"valid"`
	Errors    []verr.ValidationError `json:"errors"`
	CheckedAt string                 `json:"checked_at"`
}
