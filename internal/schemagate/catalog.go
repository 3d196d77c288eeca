package schemagate

import (
	"strings"
	"time"

	"ondc-conformance/internal/document"
	"ondc-conformance/internal/verr"
)

// ValidateCatalog checks message.catalog of an on_search message.
// contextTimestamp bounds every time block in the catalog; when it is not a
// valid timestamp that bound is not applied.
func (v *Validator) ValidateCatalog(message document.Node, contextTimestamp string) *verr.Collector {
	c := verr.NewCollector()
	root := verr.Root("message", "catalog")
	catNode := message.Get("catalog")
	if !requireObject(c, catNode, root) {
		return c
	}
	cat := document.Catalog{Node: catNode}
	bound, hasBound := ParseTimestamp(contextTimestamp)
	tb := timeBound{at: bound, ok: hasBound}

	fp := root.Key("bpp/fulfillments")
	if els, ok := requireElements(c, cat.Fulfillments(), fp); ok {
		for _, el := range els {
			if !oneOf(el.Get("type").Text(), FulfillmentTypes) {
				invalid(c, fp.Key("type"), "every type should be one of (%s)", strings.Join(FulfillmentTypes, ", "))
				break
			}
		}
	}

	checkDescriptor(c, cat.Descriptor(), root.Key("bpp/descriptor"), false)

	pp := root.Key("bpp/providers")
	providers, ok := cat.ProviderList()
	if !ok {
		missing(c, pp)
		return c
	}
	c.Merge(v.fanOut(len(providers), func(i int, pc *verr.Collector) {
		v.validateProvider(pc, providers[i], root.Index("bpp/providers", i), tb)
	}))
	return c
}

// timeBound is the context timestamp every nested time block must not exceed.
type timeBound struct {
	at time.Time
	ok bool
}

func (v *Validator) validateProvider(c *verr.Collector, p document.Provider, path verr.Path, tb timeBound) {
	requireString(c, p.Get("id"), path.Key("id"))

	if requireObject(c, p.Get("time"), path.Key("time")) {
		checkTimeBlock(c, p.Get("time"), path.Key("time"), tb)
	}

	if fs, ok := p.Fulfillments(); !ok {
		missing(c, path.Key("fulfillments"))
	} else {
		for i, f := range fs {
			checkProviderFulfillment(c, f, path.Index("fulfillments", i))
		}
	}

	checkDescriptor(c, p.Get("descriptor"), path.Key("descriptor"), false)
	requireString(c, p.Get("ttl"), path.Key("ttl"))

	// Locations, categories and items are independent of each other; a
	// missing collection only skips its own branch.
	if locs, ok := p.Locations(); !ok {
		missing(c, path.Key("locations"))
	} else {
		c.Merge(v.fanOut(len(locs), func(i int, lc *verr.Collector) {
			v.validateLocation(lc, locs[i], path.Index("locations", i), tb)
		}))
	}

	if cats, ok := p.Categories(); !ok {
		missing(c, path.Key("categories"))
	} else {
		c.Merge(v.fanOut(len(cats), func(i int, cc *verr.Collector) {
			v.validateCategory(cc, cats[i], path.Index("categories", i))
		}))
	}

	if items, ok := p.Items(); !ok {
		missing(c, path.Key("items"))
	} else {
		categoryIDs := p.CategoryIDs()
		c.Merge(v.fanOut(len(items), func(i int, ic *verr.Collector) {
			v.validateItem(ic, items[i], path.Index("items", i), categoryIDs, tb)
		}))
	}
}

func checkProviderFulfillment(c *verr.Collector, f document.Fulfillment, p verr.Path) {
	if t := f.Get("type"); t.Exists() && !oneOf(t.Text(), FulfillmentTypes) {
		invalid(c, p.Key("type"), "type should be one of (%s)", strings.Join(FulfillmentTypes, ", "))
	}
	contact := f.Get("contact")
	cp := p.Key("contact")
	if !requireObject(c, contact, cp) {
		return
	}
	if phone, ok := contact.Get("phone").NonEmptyStr(); !ok || !isPhone(phone) {
		invalid(c, cp.Key("phone"), "phone should be a 10 digit number")
	}
	if email, ok := contact.Get("email").NonEmptyStr(); !ok || !isEmail(email) {
		invalid(c, cp.Key("email"), "email should be a valid address")
	}
}

// checkTimeBlock validates time.label and time.timestamp. p is the path of
// the time object itself.
func checkTimeBlock(c *verr.Collector, t document.Node, p verr.Path, tb timeBound) {
	lp := p.Key("label")
	if label, ok := requireString(c, t.Get("label"), lp); ok && !oneOf(label, TimeLabels) {
		invalid(c, lp, "label should be one of (%s)", strings.Join(TimeLabels, ", "))
	}
	tp := p.Key("timestamp")
	ts, ok := ParseTimestamp(t.Get("timestamp").Text())
	if !ok {
		invalid(c, tp, "timestamp should be a valid YYYY-MM-DDThh:mm:ss.sssZ value")
		return
	}
	if tb.ok && ts.After(tb.at) {
		invalid(c, tp, "timestamp can't be later than context.timestamp")
	}
}
