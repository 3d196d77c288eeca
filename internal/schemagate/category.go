package schemagate

import (
	"strings"

	"ondc-conformance/internal/document"
	"ondc-conformance/internal/verr"
)

func (v *Validator) validateCategory(c *verr.Collector, cat document.Category, p verr.Path) {
	requireString(c, cat.Get("id"), p.Key("id"))
	checkDescriptor(c, cat.Get("descriptor"), p.Key("descriptor"), false)

	tags, ok := cat.Tags()
	if !ok {
		missing(c, p.Key("tags"))
		return
	}
	// seq values must be unique across all tags of this category.
	seen := map[string]struct{}{}
	for i, tag := range tags {
		v.checkCategoryTag(c, tag, p.Index("tags", i), seen)
	}
}

func (v *Validator) checkCategoryTag(c *verr.Collector, tag document.Tag, p verr.Path, seen map[string]struct{}) {
	code, ok := requireString(c, tag.Get("code"), p.Key("code"))
	if ok && !oneOf(code, CategoryTagCodes) {
		invalid(c, p.Key("code"), "code should be one of (%s)", strings.Join(CategoryTagCodes, ", "))
	}

	list, ok := tag.List()
	if !ok {
		invalid(c, p.Key("list"), "list should be a non-empty array")
		return
	}
	for i, entry := range list {
		ep := p.Index("list", i)
		entryCode, codeOK := requireString(c, entry.Get("code"), ep.Key("code"))
		if codeOK && !oneOf(entryCode, CategoryListCode) {
			invalid(c, ep.Key("code"), "code should be one of (%s)", strings.Join(CategoryListCode, ", "))
			codeOK = false
		}
		value, valueOK := requireString(c, entry.Get("value"), ep.Key("value"))
		if !codeOK || !valueOK {
			continue
		}
		vp := ep.Key("value")
		switch entryCode {
		case "type":
			if code == "type" && value != variantGroup {
				invalid(c, vp, "value should be %q when code is type", variantGroup)
			}
		case "name":
			if strings.Contains(value, "item.tags") && !v.isAttributeReference(value) {
				invalid(c, vp, "value should be item.tags.attribute.<known attribute>")
			}
		case "seq":
			if _, ok := numeric(value); !ok {
				invalid(c, vp, "seq should be a number")
			}
			if _, dup := seen[value]; dup {
				invalid(c, vp, "seq %s is already used in this category", value)
			}
			seen[value] = struct{}{}
		}
	}
}

// isAttributeReference accepts exactly item.tags.attribute.<attr>.
func (v *Validator) isAttributeReference(value string) bool {
	parts := strings.Split(value, ".")
	return len(parts) == 4 &&
		parts[0] == "item" && parts[1] == "tags" && parts[2] == "attribute" &&
		v.ref.IsAttribute(parts[3])
}
