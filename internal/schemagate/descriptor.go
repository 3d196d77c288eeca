package schemagate

import (
	"ondc-conformance/internal/document"
	"ondc-conformance/internal/verr"
)

// ValidateDescriptor checks every key present on a descriptor node: images
// and tags must be arrays, an item descriptor's code must look like "1:..",
// and everything else must be a non-empty string. p is the descriptor's own
// path; it is used only to build keys.
func ValidateDescriptor(c *verr.Collector, d document.Node, p verr.Path, itemDescriptor bool) {
	for _, key := range d.Keys() {
		val := d.Get(key)
		kp := p.Key(key)
		switch {
		case key == "images" || key == "tags":
			if val.Kind() != document.Array {
				invalid(c, kp, "must be an array")
			}
		case itemDescriptor && key == "code":
			if s, _ := val.Str(); !descriptorCode.MatchString(s) {
				invalid(c, kp, "code should look like <1-5>:<value>")
			}
		default:
			if _, ok := val.NonEmptyStr(); !ok {
				missing(c, kp)
			}
		}
	}
}

// checkDescriptor requires the descriptor object at n and validates it.
func checkDescriptor(c *verr.Collector, n document.Node, p verr.Path, itemDescriptor bool) {
	if requireObject(c, n, p) {
		ValidateDescriptor(c, n, p, itemDescriptor)
	}
}
