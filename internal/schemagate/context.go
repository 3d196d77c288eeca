package schemagate

import (
	"strings"

	"ondc-conformance/internal/document"
	"ondc-conformance/internal/model"
	"ondc-conformance/internal/verr"
)

// ContextRules parameterises the envelope checks for one message kind.
type ContextRules struct {
	Kind model.Kind
	// AnchorTimestamp is the confirmed order's context timestamp. When set
	// (on_status) the incoming timestamp must be strictly later.
	AnchorTimestamp string
}

// ValidateContext checks the protocol envelope. Every rule is evaluated on
// its own; nothing short-circuits.
func (v *Validator) ValidateContext(ctx document.Node, rules ContextRules) *verr.Collector {
	c := verr.NewCollector()
	root := verr.Root("context")
	env := model.EnvelopeFor(rules.Kind)

	if ctx.Get("domain").Text() != env.Domain {
		invalid(c, root.Key("domain"), "domain should be %s", env.Domain)
	}
	if ctx.Get("action").Text() != env.Action {
		invalid(c, root.Key("action"), "only %q is acceptable", env.Action)
	}
	if ctx.Get("country").Text() != env.Country {
		invalid(c, root.Key("country"), "country should be %s", env.Country)
	}
	if ctx.Get("core_version").Text() != env.CoreVersion {
		invalid(c, root.Key("core_version"), "core_version should be %s", env.CoreVersion)
	}

	if rules.Kind == model.KindOnStatus {
		for _, k := range []string{"transaction_id", "message_id", "ttl"} {
			requireString(c, ctx.Get(k), root.Key(k))
		}
	}

	v.checkCity(c, ctx.Get("city"), root.Key("city"))

	for _, k := range []string{"bap_id", "bpp_id"} {
		if id, ok := requireString(c, ctx.Get(k), root.Key(k)); ok && forbiddenIDMarker.MatchString(id) {
			invalid(c, root.Key(k), "must not contain http, https or www")
		}
	}
	for _, k := range []string{"bap_uri", "bpp_uri"} {
		if uri, ok := requireString(c, ctx.Get(k), root.Key(k)); ok && !strings.Contains(uri, "https") {
			invalid(c, root.Key(k), "must include https")
		}
	}

	tsPath := root.Key("timestamp")
	ts, ok := ParseTimestamp(ctx.Get("timestamp").Text())
	if !ok {
		invalid(c, tsPath, "timestamp should be a valid YYYY-MM-DDThh:mm:ss.sssZ value")
		return c
	}
	if rules.AnchorTimestamp != "" {
		anchorTS, ok := ParseTimestamp(rules.AnchorTimestamp)
		switch {
		case !ok:
			invalid(c, tsPath, "on_confirm timestamp %q is not valid", rules.AnchorTimestamp)
		case !ts.After(anchorTS):
			invalid(c, tsPath, "timestamp should be later than the on_confirm timestamp %s", rules.AnchorTimestamp)
		}
	}
	return c
}

// checkCity applies the std:<code> rule. A malformed value yields one
// violation; a well formed one can fail on prefix and code independently.
func (v *Validator) checkCity(c *verr.Collector, city document.Node, p verr.Path) {
	s, ok := city.NonEmptyStr()
	if !ok {
		missing(c, p)
		return
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		invalid(c, p, "city format should be std:XXX")
		return
	}
	if parts[0] != "std" {
		invalid(c, p, "city prefix should be 'std'")
	}
	if !v.ref.StdCodeExists(parts[1]) {
		invalid(c, p, "std code %q is not registered", parts[1])
	}
}
