package schema

import (
	"strconv"
	"strings"
	"time"
)

// Tokens treated as a missing value regardless of column type
var missingTokens = map[string]bool{
	"":     true,
	"null": true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"none": true,
	"-":    true,
}

// IsMissing reports whether a raw cell should be treated as null
func IsMissing(raw string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(raw))]
}

// ParseNumeric attempts to parse a cell as a real number. Accounting
// notation (parentheses negatives), currency prefixes and thousands
// separators are tolerated.
func ParseNumeric(raw string) (float64, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	cleaned = strings.TrimLeft(cleaned, "$€£")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// Epoch magnitude fences: values above epochMillisFloor are millisecond
// epochs, values above epochSecondsFloor (and at most epochMillisFloor)
// are second epochs.
const (
	epochSecondsFloor = 1e9
	epochMillisFloor  = 1e12
)

// IsEpoch reports whether a parsed number's magnitude indicates a timestamp
func IsEpoch(v float64) bool {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	return abs > epochSecondsFloor
}

// epochToSeconds normalizes an epoch-magnitude number to epoch seconds
func epochToSeconds(v float64) float64 {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	if abs > epochMillisFloor {
		return v / 1000
	}
	return v
}

// Calendar layouts tried in order when parsing date strings
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate attempts to interpret a cell as a calendar date or an epoch
// number, returning the value as epoch seconds for use as a sort key.
func ParseDate(raw string) (float64, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return float64(t.Unix()), true
		}
	}

	if v, ok := ParseNumeric(cleaned); ok && IsEpoch(v) {
		return epochToSeconds(v), true
	}

	return 0, false
}
