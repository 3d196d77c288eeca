package schemagate

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	timestampPattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`)
	datePattern       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	hhmmPattern       = regexp.MustCompile(`^(0[0-9]|1[0-9]|2[0-3])[0-5][0-9]$`)
	gpsPattern        = regexp.MustCompile(`^\d+\.\d{6,}\s*,\s*\d+\.\d{6,}$`)
	emailPattern      = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)
	decimalPattern    = regexp.MustCompile(`^-?\d*\.?\d+$`)
	descriptorCode    = regexp.MustCompile(`^[1-5]:.+`)
	forbiddenIDMarker = regexp.MustCompile(`(?i)http|https|www`)
	nonDigit          = regexp.MustCompile(`\D`)
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// ParseTimestamp parses a context style timestamp (YYYY-MM-DDThh:mm:ss.sssZ).
// It fails for anything not matching that exact shape, for impossible
// calendar dates and for years before 1970.
func ParseTimestamp(s string) (time.Time, bool) {
	if !timestampPattern.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(timestampLayout, s)
	if err != nil || t.Year() < 1970 {
		return time.Time{}, false
	}
	return t, true
}

// IsValidTimestamp reports whether s is a usable context timestamp.
func IsValidTimestamp(s string) bool {
	_, ok := ParseTimestamp(s)
	return ok
}

func isHHmm(s string) bool { return hhmmPattern.MatchString(s) }

func isGPS(s string) bool { return gpsPattern.MatchString(s) }

func isDate(s string) bool { return datePattern.MatchString(s) }

func isEmail(s string) bool { return emailPattern.MatchString(s) }

func isDecimal(s string) bool { return decimalPattern.MatchString(s) }

// isPhone is true when s holds exactly ten digits once everything else is stripped.
func isPhone(s string) bool {
	return len(nonDigit.ReplaceAllString(s, "")) == 10
}

// numeric parses a numeric string the way a lenient JSON producer writes
// them ("5", " 5 ", "2.50"). NaN and infinities are rejected.
func numeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// validDays accepts a comma separated list of weekdays, each in 1..7.
func validDays(s string) bool {
	for _, part := range strings.Split(s, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || d < 1 || d > 7 {
			return false
		}
	}
	return true
}

// hhmmValue returns the minutes-comparable integer of an HHmm string.
func hhmmValue(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
