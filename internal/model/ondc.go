package model

import "fmt"

// Kind selects which message schema a document is validated against.
type Kind string

const (
	KindOnSearch Kind = "on_search"
	KindOnStatus Kind = "on_status"
)

// ParseKind maps a selector string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindOnSearch, KindOnStatus:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown message kind %q", s)
	}
}

// Envelope literals enforced per message kind.
type Envelope struct {
	Domain      string
	Action      string
	Country     string
	CoreVersion string
}

// EnvelopeFor returns the fixed context literals for kind.
func EnvelopeFor(kind Kind) Envelope {
	switch kind {
	case KindOnStatus:
		return Envelope{Domain: "ONDC:RET10", Action: "on_status", Country: "IND", CoreVersion: "1.2.0"}
	default:
		return Envelope{Domain: "ONDC:RET12", Action: "on_search", Country: "IND", CoreVersion: "1.2.0"}
	}
}

// Order states accepted in message.order.state.
var OrderStates = []string{"Created", "Accepted", "In-progress", "Completed", "Cancelled"}

// StateCancelled requires a cancellation object on the order.
const StateCancelled = "Cancelled"

// DefaultLifecycle is the canonical order of fulfilment stages used for the
// monotonic timestamp check across on_status messages.
var DefaultLifecycle = []string{
	"Created",
	"Accepted",
	"Packed",
	"Agent-assigned",
	"Order-picked-up",
	"Out-for-delivery",
	"Delivered",
}

// StageCancelled may follow any stage, so it is not ordered against them.
const StageCancelled = "Cancelled"

// ContextMeta is the routing metadata lifted from a context for reporting.
// Values are copied only when they are strings; validation happens elsewhere.
type ContextMeta struct {
	Domain        string `json:"domain,omitempty"`
	Action        string `json:"action,omitempty"`
	City          string `json:"city,omitempty"`
	BapID         string `json:"bap_id,omitempty"`
	BppID         string `json:"bpp_id,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	MessageID     string `json:"message_id,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
}
