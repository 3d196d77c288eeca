package verr

import "fmt"

// Collector accumulates violations in discovery order. It is not safe for
// concurrent use: fan-out branches each own a Collector and are merged with
// Merge once they finish.
type Collector struct {
	errs []ValidationError
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{errs: []ValidationError{}}
}

// Record appends one violation at path p.
func (c *Collector) Record(p Path, message string) {
	c.errs = append(c.errs, ValidationError{Key: p.String(), Message: message})
}

// Recordf is Record with a format string.
func (c *Collector) Recordf(p Path, format string, args ...any) {
	c.Record(p, fmt.Sprintf(format, args...))
}

// RecordKey appends a violation under a literal key.
func (c *Collector) RecordKey(key, message string) {
	c.errs = append(c.errs, ValidationError{Key: key, Message: message})
}

// Merge appends everything other has collected.
func (c *Collector) Merge(other *Collector) {
	if other == nil {
		return
	}
	c.errs = append(c.errs, other.errs...)
}

// All returns the collected violations.
func (c *Collector) All() []ValidationError {
	out := make([]ValidationError, len(c.errs))
	copy(out, c.errs)
	return out
}

// IsEmpty reports whether nothing was recorded.
func (c *Collector) IsEmpty() bool {
	return len(c.errs) == 0
}

// Len is the number of recorded violations.
func (c *Collector) Len() int {
	return len(c.errs)
}
