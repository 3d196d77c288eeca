package schemagate

import (
	"strings"

	"go.uber.org/zap"

	"ondc-conformance/internal/document"
	"ondc-conformance/internal/refdata"
	"ondc-conformance/internal/verr"
)

type itemTagScope struct {
	categoryID    string
	validCategory bool
}

func (v *Validator) checkItemTag(c *verr.Collector, tag document.Tag, p verr.Path, scope itemTagScope) {
	code, codeOK := requireString(c, tag.Get("code"), p.Key("code"))
	if codeOK && !oneOf(code, ItemTagCodes) {
		invalid(c, p.Key("code"), "code should be one of (%s)", strings.Join(ItemTagCodes, ", "))
		codeOK = false
	}

	lp := p.Key("list")
	list, ok := tag.List()
	if !ok {
		missing(c, lp)
		return
	}

	attributes := codeOK && code == "attribute"
	if attributes {
		if !scope.validCategory {
			invalid(c, lp, "item category_id should be valid before attribute tags can be checked")
			attributes = false
		} else {
			v.checkMandatoryAttributes(c, list, scope.categoryID, lp)
		}
	}

	for i, entry := range list {
		ep := p.Index("list", i)
		if !entry.IsObject() {
			invalid(c, ep, "each list entry should be an object")
			continue
		}
		entryCode, hasCode := requireString(c, entry.Get("code"), ep.Key("code"))
		value, hasValue := requireString(c, entry.Get("value"), ep.Key("value"))
		if codeOK && code == "origin" && entryCode != originCountryCode {
			invalid(c, ep.Key("code"), "code should be %q when tag code is origin", originCountryCode)
		}
		if attributes && hasCode && hasValue {
			v.checkAttributeValue(c, refdata.Normalize(entryCode), scope.categoryID, value, ep.Key("value"))
		}
	}
}

// checkMandatoryAttributes reports, as a single violation, every attribute
// the matrix marks mandatory for categoryID that the list does not carry.
func (v *Validator) checkMandatoryAttributes(c *verr.Collector, list []document.Node, categoryID string, p verr.Path) {
	mandatory := v.ref.MandatoryAttributes(categoryID)
	if len(mandatory) == 0 {
		return
	}
	present := make(map[string]struct{}, len(list))
	for _, entry := range list {
		if code, ok := entry.Get("code").Str(); ok {
			present[refdata.Normalize(code)] = struct{}{}
		}
	}
	var absent []string
	for _, attr := range mandatory {
		if _, ok := present[refdata.Normalize(attr)]; !ok {
			absent = append(absent, attr)
		}
	}
	if len(absent) > 0 {
		invalid(c, p, "missing mandatory attributes %s for category %s", strings.Join(absent, ", "), categoryID)
	}
}

func (v *Validator) checkAttributeValue(c *verr.Collector, attr, categoryID, value string, p verr.Path) {
	domain, ok, err := v.ref.ValueDomain(attr)
	if err != nil {
		zap.S().Errorw("schemagate: value domain lookup failed", "attribute", attr, "error", err)
		invalid(c, p, "value domain for attribute %s could not be loaded", attr)
		return
	}
	if !ok {
		if v.ref.Policy() == refdata.PolicyStrict {
			invalid(c, p, "no value domain registered for attribute %s", attr)
		}
		return
	}
	if domain.Empty() || domain.Allows(attr, categoryID, value) {
		return
	}
	switch attr {
	case "colour":
		invalid(c, p, "colour %q should match a registered colour name or code", value)
	case "size":
		invalid(c, p, "size %q is not registered for category %s", value, categoryID)
	default:
		invalid(c, p, "value %q is not allowed for attribute %s", value, attr)
	}
}
