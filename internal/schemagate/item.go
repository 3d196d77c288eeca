package schemagate

import (
	"strings"

	"ondc-conformance/internal/document"
	"ondc-conformance/internal/verr"
)

func (v *Validator) validateItem(c *verr.Collector, item document.Item, p verr.Path, categoryIDs map[string]struct{}, tb timeBound) {
	requireString(c, item.Get("id"), p.Key("id"))

	if t := item.Get("time"); requireObject(c, t, p.Key("time")) {
		checkTimeBlock(c, t, p.Key("time"), tb)
	}

	if parent, ok := requireString(c, item.Get("parent_item_id"), p.Key("parent_item_id")); ok {
		if _, known := categoryIDs[parent]; !known {
			invalid(c, p.Key("parent_item_id"), "parent_item_id %q does not match any category id", parent)
		}
	}

	checkDescriptor(c, item.Get("descriptor"), p.Key("descriptor"), true)

	if q := item.Get("quantity"); requireObject(c, q, p.Key("quantity")) {
		checkQuantity(c, q, p.Key("quantity"))
	}
	if pr := item.Get("price"); requireObject(c, pr, p.Key("price")) {
		checkPrice(c, pr, p.Key("price"))
	}

	// A category outside the enumeration disables the attribute checks below.
	categoryID, validCategory := requireString(c, item.Get("category_id"), p.Key("category_id"))
	if validCategory && !v.ref.IsCategory(categoryID) {
		invalid(c, p.Key("category_id"), "category_id %q is not a valid category", categoryID)
		validCategory = false
	}

	requireString(c, item.Get("fulfillment_id"), p.Key("fulfillment_id"))
	requireString(c, item.Get("location_id"), p.Key("location_id"))

	checkExtensionFlags(c, item, p)

	tags, ok := item.Tags()
	if !ok {
		missing(c, p.Key("tags"))
		return
	}
	scope := itemTagScope{categoryID: categoryID, validCategory: validCategory}
	c.Merge(v.fanOut(len(tags), func(i int, tc *verr.Collector) {
		v.checkItemTag(tc, tags[i], p.Index("tags", i), scope)
	}))
}

func checkExtensionFlags(c *verr.Collector, item document.Item, p verr.Path) {
	for _, f := range []string{fieldReturnable, fieldCancellable, fieldSellerPickupReturn, fieldAvailableOnCOD} {
		requireBool(c, item.Get(f), p.Key(f))
	}
	for _, f := range []string{fieldReturnWindow, fieldTimeToShip} {
		requireString(c, item.Get(f), p.Key(f))
	}

	if care, ok := requireString(c, item.Get(fieldConsumerCare), p.Key(fieldConsumerCare)); ok {
		checkConsumerCare(c, care, p.Key(fieldConsumerCare))
	}

	if pc := item.Get(fieldPackagedCommodity); requireObject(c, pc, p.Key(fieldPackagedCommodity)) {
		pp := p.Key(fieldPackagedCommodity)
		for _, f := range packagedCommodityFields {
			requireString(c, pc.Get(f), pp.Key(f))
		}
	}
}

// checkConsumerCare expects "name,email,phone". All findings share one key.
func checkConsumerCare(c *verr.Collector, care string, p verr.Path) {
	parts := strings.Split(care, ",")
	if len(parts) != consumerCareFields {
		invalid(c, p, "should be name,email,mobile")
		return
	}
	if email := strings.TrimSpace(parts[1]); email == "" || !isEmail(email) {
		invalid(c, p, "email %q is not valid", email)
	}
	if phone := strings.TrimSpace(parts[2]); phone == "" || !isPhone(phone) {
		invalid(c, p, "mobile %q should have 10 digits", phone)
	}
}

func checkQuantity(c *verr.Collector, q document.Node, p verr.Path) {
	unitized := q.Get("unitized")
	up := p.Key("unitized")
	if requireObject(c, unitized, up) {
		measure := unitized.Get("measure")
		mp := up.Key("measure")
		if requireObject(c, measure, mp) {
			requireString(c, measure.Get("unit"), mp.Key("unit"))
			if !positiveCount(measure.Get("value")) {
				invalid(c, mp.Key("value"), "value should be a numeric string greater than 0")
			}
		}
	}
	for _, k := range []string{"available", "maximum"} {
		n := q.Get(k)
		if !requireObject(c, n, p.Key(k)) {
			continue
		}
		if !positiveCount(n.Get("count")) {
			invalid(c, p.Key(k).Key("count"), "count should be a numeric string greater than 0")
		}
	}
}

func positiveCount(n document.Node) bool {
	s, ok := n.NonEmptyStr()
	if !ok {
		return false
	}
	f, ok := numeric(s)
	return ok && f >= 1
}

func checkPrice(c *verr.Collector, price document.Node, p verr.Path) {
	cp := p.Key("currency")
	if cur, ok := requireString(c, price.Get("currency"), cp); ok && cur != currencyINR {
		invalid(c, cp, "currency should be %s", currencyINR)
	}
	for _, k := range []string{"value", "maximum_value"} {
		s, ok := price.Get(k).NonEmptyStr()
		if _, num := numeric(s); !ok || !num {
			invalid(c, p.Key(k), "%s should be a numeric string", k)
		}
	}
}
