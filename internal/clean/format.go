package clean

import (
	"strconv"
	"strings"
	"time"
)

// NumberFormat describes one locale's numeric notation. A raw string is
// accepted by the format when, after dropping grouping separators and
// normalizing the decimal separator, it parses as a float.
type NumberFormat struct {
	DecimalSep  rune `yaml:"decimal_sep"`
	GroupingSep rune `yaml:"grouping_sep"`
}

// nbsp is the no-break space some portals use as a thousands separator.
const nbsp = '\u00a0'

// PlainNumber accepts "1234.5" style values with no grouping.
var PlainNumber = NumberFormat{DecimalSep: '.'}

// ParseNumber tries each format in declaration order and returns the first
// successful parse. The second return is false when no format accepts raw.
func ParseNumber(raw string, formats []NumberFormat) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	for _, f := range formats {
		if v, ok := f.parse(raw); ok {
			return v, true
		}
	}
	return 0, false
}

// ParseInt parses raw with ParseNumber and requires an integral result.
func ParseInt(raw string, formats []NumberFormat) (int, bool) {
	v, ok := ParseNumber(raw, formats)
	if !ok || v != float64(int(v)) {
		return 0, false
	}
	return int(v), true
}

func (f NumberFormat) parse(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r == f.GroupingSep && f.GroupingSep != 0:
			// dropped
		case r == ' ' || r == nbsp:
			// Non-breaking and plain spaces act as grouping in sources that
			// group with spaces; anywhere else they invalidate the parse.
			if f.GroupingSep != ' ' && f.GroupingSep != nbsp {
				return 0, false
			}
		case r == f.DecimalSep:
			b.WriteRune('.')
		case r >= '0' && r <= '9' || r == '-' || r == '+':
			b.WriteRune(r)
		default:
			return 0, false
		}
	}

	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseDate tries each layout in declaration order and returns the first
// date that parses. Layouts are Go reference layouts.
func ParseDate(raw string, layouts []string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseBool recognizes normalized boolean literals. Source-specific hooks
// are expected to rewrite locale words (oui/non, ano/ne) to true/false
// before this runs.
func ParseBool(raw string) (bool, bool) {
	v, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return false, false
	}
	return v, true
}
