package verr

import (
	"errors"
	"strconv"
	"strings"
)

// Fatal failure kinds. Rule violations are never Go errors; these only abort a call.
var (
	// ErrParse means the input could not be decoded as a JSON object.
	ErrParse = errors.New("document is not a valid JSON object")
	// ErrReference means a reference table could not be read or decoded.
	ErrReference = errors.New("reference data unavailable")
)

// ValidationError is a single rule violation.
type ValidationError struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// Path is an ordered list of segments identifying a location in a document.
// Paths are values: every method returns a new Path and never touches the receiver.
type Path struct {
	segs []string
}

// Root starts a path from the given segments.
func Root(segs ...string) Path {
	return Path{segs: append([]string(nil), segs...)}
}

// Key appends an object key.
func (p Path) Key(k string) Path {
	out := make([]string, len(p.segs), len(p.segs)+1)
	copy(out, p.segs)
	return Path{segs: append(out, k)}
}

// Index appends a collection element, rendered as <name><i>.
func (p Path) Index(name string, i int) Path {
	return p.Key(name + strconv.Itoa(i))
}

// Segments returns a copy of the path segments.
func (p Path) Segments() []string {
	return append([]string(nil), p.segs...)
}

// String renders the path joined by "_".
func (p Path) String() string {
	return strings.Join(p.segs, "_")
}

// Human renders the path the way messages print it: "message > catalog > ...".
func (p Path) Human() string {
	return strings.Join(p.segs, " > ")
}
