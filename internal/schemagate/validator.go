// Package schemagate holds the ONDC retail rule set: the context, descriptor
// and per-entity validators. Every check is evaluated independently and
// violations are accumulated, never returned as Go errors.
package schemagate

import (
	"fmt"

	"ondc-conformance/internal/document"
	"ondc-conformance/internal/refdata"
	"ondc-conformance/internal/verr"
)

// DefaultFanOutLimit bounds concurrent sibling branches per collection.
const DefaultFanOutLimit = 16

// Validator runs the rule set against reference data. It is safe for
// concurrent use; all per-call state lives in collectors.
type Validator struct {
	ref   refdata.Provider
	limit int
}

// Option configures a Validator.
type Option func(*Validator)

// WithFanOutLimit caps concurrent sibling validation. n <= 0 keeps the default.
func WithFanOutLimit(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.limit = n
		}
	}
}

// New returns a Validator over the reference tables ref.
func New(ref refdata.Provider, opts ...Option) *Validator {
	v := &Validator{ref: ref, limit: DefaultFanOutLimit}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func missing(c *verr.Collector, p verr.Path) {
	c.Recordf(p, "missing required field %s", p.Human())
}

func invalid(c *verr.Collector, p verr.Path, format string, args ...any) {
	c.Recordf(p, "%s: %s", p.Human(), fmt.Sprintf(format, args...))
}

// requireString records a missing-field violation unless n is a non-empty string.
func requireString(c *verr.Collector, n document.Node, p verr.Path) (string, bool) {
	s, ok := n.NonEmptyStr()
	if !ok {
		missing(c, p)
	}
	return s, ok
}

// requireObject records a missing-field violation unless n is an object.
func requireObject(c *verr.Collector, n document.Node, p verr.Path) bool {
	if !n.IsObject() {
		missing(c, p)
		return false
	}
	return true
}

// requireElements records a missing-field violation unless n is a non-empty array.
func requireElements(c *verr.Collector, n document.Node, p verr.Path) ([]document.Node, bool) {
	els, ok := n.NonEmptyElements()
	if !ok {
		missing(c, p)
	}
	return els, ok
}

// requireBool records a violation unless n is a JSON boolean.
func requireBool(c *verr.Collector, n document.Node, p verr.Path) {
	if _, ok := n.Bool(); !ok {
		invalid(c, p, "must be present and a boolean")
	}
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}
