package schemagate

import (
	"reflect"
	"strings"

	"ondc-conformance/internal/anchor"
	"ondc-conformance/internal/document"
	"ondc-conformance/internal/model"
	"ondc-conformance/internal/verr"
)

// ValidateOrder checks message.order of an on_status message. With a nil
// confirmed order the cross-message checks (id, provider, billing) are skipped.
func (v *Validator) ValidateOrder(message document.Node, confirmed *anchor.Anchor) *verr.Collector {
	c := verr.NewCollector()
	root := verr.Root("message", "order")
	order := document.Order{Node: message.Get("order")}
	if !requireObject(c, order.Node, root) {
		return c
	}

	if id, ok := requireString(c, order.Get("id"), root.Key("id")); ok && confirmed != nil && id != confirmed.OrderID {
		invalid(c, root.Key("id"), "order id should match the on_confirm order id %q", confirmed.OrderID)
	}

	state, stateOK := requireString(c, order.Get("state"), root.Key("state"))
	if stateOK && !oneOf(state, model.OrderStates) {
		invalid(c, root.Key("state"), "state should be one of (%s)", strings.Join(model.OrderStates, ", "))
	}

	cancellation := order.Get("cancellation")
	switch {
	case state == model.StateCancelled && !cancellation.IsObject():
		missing(c, root.Key("cancellation"))
	case state != model.StateCancelled && cancellation.Exists():
		invalid(c, root.Key("cancellation"), "cancellation is only expected when state is %s", model.StateCancelled)
	}

	if provider := order.Get("provider"); requireObject(c, provider, root.Key("provider")) && confirmed != nil && confirmed.ProviderID != "" {
		if id := provider.Get("id").Text(); id != confirmed.ProviderID {
			invalid(c, root.Key("provider").Key("id"), "provider id should match the on_confirm provider id %q", confirmed.ProviderID)
		}
	}

	if billing := order.Get("billing"); requireObject(c, billing, root.Key("billing")) && confirmed != nil {
		if diff := billingMismatches(confirmed.Billing, billing); len(diff) > 0 {
			invalid(c, root.Key("billing"), "%s mismatch the on_confirm billing", strings.Join(diff, ", "))
		}
	}

	requireElements(c, order.Get("items"), root.Key("items"))
	requireElements(c, order.Get("fulfillments"), root.Key("fulfillments"))
	requireObject(c, order.Get("quote"), root.Key("quote"))
	requireObject(c, order.Get("payment"), root.Key("payment"))

	for _, k := range []string{"created_at", "updated_at"} {
		if !IsValidTimestamp(order.Get(k).Text()) {
			invalid(c, root.Key(k), "%s should be a valid timestamp", k)
		}
	}
	return c
}

// billingMismatches lists the keys of base whose values differ in got. The
// address object is compared one level deep and reported as address.<key>.
func billingMismatches(base, got document.Node) []string {
	if !base.IsObject() {
		return nil
	}
	var diff []string
	for _, k := range base.Keys() {
		b, g := base.Get(k), got.Get(k)
		if k == "address" && b.IsObject() {
			for _, ak := range b.Keys() {
				if !reflect.DeepEqual(b.Get(ak).Raw(), g.Get(ak).Raw()) {
					diff = append(diff, "address."+ak)
				}
			}
			continue
		}
		if !reflect.DeepEqual(b.Raw(), g.Raw()) {
			diff = append(diff, k)
		}
	}
	return diff
}
