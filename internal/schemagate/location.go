package schemagate

import (
	"strings"

	"ondc-conformance/internal/document"
	"ondc-conformance/internal/verr"
)

func (v *Validator) validateLocation(c *verr.Collector, l document.Location, p verr.Path, tb timeBound) {
	requireString(c, l.Get("id"), p.Key("id"))

	if t := l.Get("time"); requireObject(c, t, p.Key("time")) {
		checkLocationTime(c, t, p.Key("time"), tb)
	}

	if gps, ok := requireString(c, l.Get("gps"), p.Key("gps")); ok && !isGPS(gps) {
		invalid(c, p.Key("gps"), "gps should be lat,lng with at least 6 decimals each")
	}

	if addr := l.Get("address"); requireObject(c, addr, p.Key("address")) {
		v.checkAddress(c, addr, p.Key("address"))
	}

	if circle := l.Get("circle"); requireObject(c, circle, p.Key("circle")) {
		checkCircle(c, circle, p.Key("circle"))
	}
}

// checkLocationTime covers the label/timestamp block plus days, holidays
// and the opening schedule. The schedule is either a range or a
// frequency/times pair; exactly one alternative must be supplied.
func checkLocationTime(c *verr.Collector, t document.Node, p verr.Path, tb timeBound) {
	checkTimeBlock(c, t, p, tb)

	dp := p.Key("days")
	if days, ok := requireString(c, t.Get("days"), dp); ok && !validDays(days) {
		invalid(c, dp, "days should be a comma separated list of 1..7")
	}

	schedule := t.Get("schedule")
	sp := p.Key("schedule")
	if h := schedule.Get("holidays"); h.Exists() {
		els, isArray := h.Elements()
		good := isArray
		for _, el := range els {
			if !isDate(el.Text()) {
				good = false
				break
			}
		}
		if !good {
			invalid(c, sp.Key("holidays"), "holidays should be yyyy-mm-dd dates")
		}
	}

	rng := t.Get("range")
	freq, times := schedule.Get("frequency"), schedule.Get("times")
	switch {
	case rng.Exists():
		rp := p.Key("range")
		start, end := rng.Get("start").Text(), rng.Get("end").Text()
		okStart, okEnd := isHHmm(start), isHHmm(end)
		if !okStart {
			invalid(c, rp.Key("start"), "range.start should be HHmm")
		}
		if !okEnd {
			invalid(c, rp.Key("end"), "range.end should be HHmm")
		}
		if okStart && okEnd && hhmmValue(start) >= hhmmValue(end) {
			invalid(c, rp, "range.end should be later than range.start")
		}
	case freq.Exists() && times.Exists():
		if _, ok := freq.NonEmptyStr(); !ok {
			missing(c, sp.Key("frequency"))
		}
		if !validTimesPair(times) {
			invalid(c, sp.Key("times"), "times should be two HHmm values with the second later than the first")
		}
	default:
		invalid(c, p, "either range or schedule frequency and times should be included")
	}
}

func validTimesPair(times document.Node) bool {
	els, ok := times.Elements()
	if !ok || len(els) != 2 {
		return false
	}
	first, second := els[0].Text(), els[1].Text()
	if !isHHmm(first) || !isHHmm(second) {
		return false
	}
	return hhmmValue(second) > hhmmValue(first)
}

func (v *Validator) checkAddress(c *verr.Collector, addr document.Node, p verr.Path) {
	locality, okLocality := requireString(c, addr.Get("locality"), p.Key("locality"))
	street, okStreet := requireString(c, addr.Get("street"), p.Key("street"))
	if okLocality && okStreet {
		if strings.TrimSpace(locality) == "" || strings.TrimSpace(street) == "" || locality == street {
			invalid(c, p, "locality and street should be distinct and non-blank")
		}
	}
	requireString(c, addr.Get("city"), p.Key("city"))
	if code, ok := requireString(c, addr.Get("area_code"), p.Key("area_code")); ok && !v.ref.PincodeExists(code) {
		invalid(c, p.Key("area_code"), "area_code %q is not a known pincode", code)
	}
	requireString(c, addr.Get("state"), p.Key("state"))
}

func checkCircle(c *verr.Collector, circle document.Node, p verr.Path) {
	if gps, ok := requireString(c, circle.Get("gps"), p.Key("gps")); ok && !isGPS(gps) {
		invalid(c, p.Key("gps"), "gps should be lat,lng with at least 6 decimals each")
	}
	radius := circle.Get("radius")
	rp := p.Key("radius")
	if !requireObject(c, radius, rp) {
		return
	}
	if unit, ok := requireString(c, radius.Get("unit"), rp.Key("unit")); ok && !oneOf(unit, DistanceUnits) {
		invalid(c, rp.Key("unit"), "unit should be one of (%s)", strings.Join(DistanceUnits, ", "))
	}
	if val, ok := requireString(c, radius.Get("value"), rp.Key("value")); ok && !isDecimal(val) {
		invalid(c, rp.Key("value"), "value should be numeric")
	}
}
