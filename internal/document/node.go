// Package document models a decoded ONDC payload as a tree of tagged nodes.
//
// Payloads are validated before they can be trusted to match any Go struct,
// so decoding goes to an untyped tree first and every access reports whether
// the value had the expected JSON kind.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/goccy/go-json"

	"ondc-conformance/internal/verr"
)

// Kind is the JSON type tag of a Node.
type Kind int

const (
	Missing Kind = iota
	Null
	Object
	Array
	String
	Number
	Bool
)

func (k Kind) String() string {
	switch k {
	case Missing:
		return "missing"
	case Null:
		return "null"
	case Object:
		return "object"
	case Array:
		return "array"
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is one value in a decoded document.
type Node struct {
	kind Kind
	v    any
}

// Parse decodes raw into a Node. The top level must be a JSON object.
func Parse(raw []byte) (Node, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&v); err != nil {
		return Node{}, fmt.Errorf("%w: %v", verr.ErrParse, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Node{}, fmt.Errorf("%w: trailing data after document", verr.ErrParse)
	}
	n := From(v)
	if n.kind != Object {
		return Node{}, fmt.Errorf("%w: top level is %s", verr.ErrParse, n.kind)
	}
	return n, nil
}

// From wraps an already decoded value (as produced by encoding/json into any).
func From(v any) Node {
	switch t := v.(type) {
	case nil:
		return Node{kind: Null}
	case map[string]any:
		return Node{kind: Object, v: t}
	case []any:
		return Node{kind: Array, v: t}
	case string:
		return Node{kind: String, v: t}
	case float64, json.Number, int, int64:
		return Node{kind: Number, v: t}
	case bool:
		return Node{kind: Bool, v: t}
	default:
		return Node{kind: Missing}
	}
}

// Kind returns the type tag.
func (n Node) Kind() Kind { return n.kind }

// Raw returns the underlying decoded value.
func (n Node) Raw() any { return n.v }

// Exists is true for any value other than missing or null.
func (n Node) Exists() bool { return n.kind != Missing && n.kind != Null }

// IsObject reports whether n is a JSON object.
func (n Node) IsObject() bool { return n.kind == Object }

// Get returns the member at key, or a Missing node.
func (n Node) Get(key string) Node {
	if n.kind != Object {
		return Node{kind: Missing}
	}
	v, ok := n.v.(map[string]any)[key]
	if !ok {
		return Node{kind: Missing}
	}
	return From(v)
}

// Has reports whether key is present, null included.
func (n Node) Has(key string) bool {
	if n.kind != Object {
		return false
	}
	_, ok := n.v.(map[string]any)[key]
	return ok
}

// Keys returns object keys in sorted order so traversal is deterministic.
func (n Node) Keys() []string {
	if n.kind != Object {
		return nil
	}
	m := n.v.(map[string]any)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Str returns the string value and whether n is a string.
func (n Node) Str() (string, bool) {
	if n.kind != String {
		return "", false
	}
	return n.v.(string), true
}

// Text returns the string value, or "" when n is not a string.
func (n Node) Text() string {
	s, _ := n.Str()
	return s
}

// NonEmptyStr returns the value when n is a string other than "".
func (n Node) NonEmptyStr() (string, bool) {
	s, ok := n.Str()
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Bool returns the boolean value and whether n is a bool.
func (n Node) Bool() (bool, bool) {
	if n.kind != Bool {
		return false, false
	}
	return n.v.(bool), true
}

// Elements returns array members and whether n is an array.
func (n Node) Elements() ([]Node, bool) {
	if n.kind != Array {
		return nil, false
	}
	raw := n.v.([]any)
	out := make([]Node, len(raw))
	for i, v := range raw {
		out[i] = From(v)
	}
	return out, true
}

// NonEmptyElements is Elements but also rejects an empty array.
func (n Node) NonEmptyElements() ([]Node, bool) {
	els, ok := n.Elements()
	if !ok || len(els) == 0 {
		return nil, false
	}
	return els, true
}
