// Package anchor provides the confirmed-order snapshot (the on_confirm
// message) that every later on_status message of the same order is checked
// against.
package anchor

import (
	"context"
	"errors"
	"fmt"

	"ondc-conformance/internal/document"
	"ondc-conformance/internal/verr"
)

// ErrNotFound means no confirmed order has been recorded for the lookup key.
var ErrNotFound = errors.New("anchor: confirmed order not found")

// Anchor is the subset of an on_confirm message the order rules consult.
type Anchor struct {
	TransactionID string
	OrderID       string
	ProviderID    string
	// Timestamp is the on_confirm context timestamp, the lower bound for
	// every later lifecycle event.
	Timestamp string
	Billing   document.Node
	Raw       []byte
}

// Parse extracts an Anchor from a raw on_confirm document.
func Parse(raw []byte) (*Anchor, error) {
	root, err := document.Parse(raw)
	if err != nil {
		return nil, err
	}
	env := document.Envelope{Node: root}
	ctx := env.Context()
	order := env.Message().Get("order")
	if !order.IsObject() {
		return nil, fmt.Errorf("%w: on_confirm has no message.order object", verr.ErrParse)
	}
	a := &Anchor{
		TransactionID: ctx.Get("transaction_id").Text(),
		OrderID:       order.Get("id").Text(),
		ProviderID:    order.Get("provider").Get("id").Text(),
		Timestamp:     ctx.Get("timestamp").Text(),
		Billing:       order.Get("billing"),
		Raw:           append([]byte(nil), raw...),
	}
	return a, nil
}

// Source looks up the confirmed order for a transaction.
type Source interface {
	Get(ctx context.Context, transactionID string) (*Anchor, error)
}

// Sink records a confirmed order so later lookups find it.
type Sink interface {
	Put(ctx context.Context, raw []byte) (*Anchor, error)
}
