package parse

import (
	"strconv"
	"strings"
	"time"
)

// dateFormats are the layouts tried when normalizing transaction dates,
// most common first.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"01-02-2006",
	"02-01-2006",
	"01/02/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

var timeFormats = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"3:04:05PM",
	"3:04PM",
}

// coerceNumber normalizes a model-reported value into a float. Strings
// with currency symbols or thousands separators ("$1,042.25") are
// accepted; anything else fails coercion.
func coerceNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimLeft(s, "$£€ ")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "unknown") {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// coerceDate normalizes a date string to ISO YYYY-MM-DD.
func coerceDate(v string) (string, bool) {
	s := strings.TrimSpace(v)
	if s == "" {
		return "", false
	}
	for _, layout := range dateFormats {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format("2006-01-02"), true
		}
	}
	return "", false
}

// coerceTime normalizes a time string to 24-hour HH:MM. A missing space
// before AM/PM ("05:52PM") is tolerated.
func coerceTime(v string) (string, bool) {
	s := strings.TrimSpace(v)
	if s == "" {
		return "", false
	}
	for _, layout := range timeFormats {
		if tm, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return tm.Format("15:04"), true
		}
	}
	return "", false
}

// coerceString trims a value and reports whether anything readable remains.
func coerceString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "unknown") {
		return "", false
	}
	return s, true
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
