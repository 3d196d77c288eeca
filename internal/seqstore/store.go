// Package seqstore keeps the last seen timestamp of every lifecycle stage of
// an order and checks that the stages arrive in non-decreasing time order.
//
// Each on_status message is validated on its own, possibly out of order and
// with earlier stages never seen. The persisted map is the only state that
// outlives a call; every backend applies the read-modify-write of one call
// atomically so concurrent validations of the same order cannot lose updates.
package seqstore

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// Timestamps maps a lifecycle stage name to its ISO-8601 timestamp.
type Timestamps map[string]string

// Clone returns a copy safe to hand to callers.
func (t Timestamps) Clone() Timestamps {
	out := make(Timestamps, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// ErrConflict is returned when an optimistic write kept losing to concurrent writers.
var ErrConflict = errors.New("seqstore: concurrent update conflict")

// Store persists one Timestamps map per scope (normally an order id).
type Store interface {
	// Load returns the persisted map, empty when nothing was written yet.
	Load(ctx context.Context, scope string) (Timestamps, error)
	// Update loads the map, applies fn and writes the result back before
	// returning it. The whole cycle is atomic with respect to other Updates
	// of the same scope.
	Update(ctx context.Context, scope string, fn func(Timestamps) error) (Timestamps, error)
}

const DefaultScope = "default"

var unsafeScope = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeScope makes a scope safe to use as a file name or key suffix.
func SanitizeScope(scope string) string {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return DefaultScope
	}
	scope = unsafeScope.ReplaceAllString(scope, "_")
	if strings.Trim(scope, ".") == "" {
		return DefaultScope
	}
	return scope
}
