// Package reconcile implements the travel/invoice reconciliation engine: it
// turns heterogeneous, imperfect AI-extracted records into a consistent,
// auditable expense claim. Everything in this package is synchronous,
// stateless computation over in-memory data; data-quality problems degrade
// to defaults instead of errors.
package reconcile

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/haolinpeng/claimflow/internal/domain/entity"
)

// Field-name fallback chains, probed in priority order. Different providers
// and document types use different vocabularies, so a missing synonym must
// not be confused with a missing value.
var (
	amountKeys = []string{"amount", "totalAmount", "total", "price", "fare", "totalAmountWithoutTax"}
	dateKeys   = []string{"date", "invoiceDate", "billingDate", "departureDate", "time", "datetime"}
)

// ParseAmount coerces a raw field value into a non-negative best-effort
// amount. Native numbers pass through; strings are parsed after stripping
// currency symbols and both half- and full-width thousands separators.
// Unparseable input yields 0.
func ParseAmount(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		s := strings.TrimSpace(n)
		for _, cut := range []string{",", "，", "¥", "￥", "元"} {
			s = strings.ReplaceAll(s, cut, "")
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// dateLayouts are tried in order for generic date parsing.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2006.01.02",
	"2006年01月02日",
	"2006年1月2日",
	"20060102",
}

// ParseDate coerces a raw field value into a YYYY-MM-DD string. ISO dates
// pass through, datetimes keep only the date portion, other formats go
// through generic parsing, and anything unparseable falls back to fallback.
// Downstream components assume every date field is a valid YYYY-MM-DD
// string; this is the single point where that invariant is enforced.
func ParseDate(v any, fallback time.Time) string {
	s, _ := v.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback.Format("2006-01-02")
	}

	// Fast path: already canonical, or an ISO datetime with a date prefix.
	if len(s) >= 10 && s[4] == '-' && s[7] == '-' {
		if _, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return s[:10]
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return fallback.Format("2006-01-02")
}

// AmountField extracts a best-effort amount from a field bag using the
// given fallback chain, or the default amount chain when none is given.
func AmountField(bag entity.FieldBag, keys ...string) float64 {
	if len(keys) == 0 {
		keys = amountKeys
	}
	v, ok := bag.First(keys...)
	if !ok {
		return 0
	}
	return ParseAmount(v)
}

// DateField extracts a best-effort YYYY-MM-DD date from a field bag using
// the given fallback chain, or the default date chain when none is given.
func DateField(bag entity.FieldBag, fallback time.Time, keys ...string) string {
	if len(keys) == 0 {
		keys = dateKeys
	}
	v, ok := bag.First(keys...)
	if !ok {
		return fallback.Format("2006-01-02")
	}
	return ParseDate(v, fallback)
}

// TextField extracts the first non-empty string value from a field bag
// along the given fallback chain. Non-string scalars are stringified.
func TextField(bag entity.FieldBag, keys ...string) string {
	for _, key := range keys {
		if !bag.Has(key) {
			continue
		}
		switch s := bag.Get(key).(type) {
		case string:
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(s)
		}
	}
	return ""
}

// IntField extracts a best-effort integer from a field bag along the given
// fallback chain, defaulting to 0.
func IntField(bag entity.FieldBag, keys ...string) int {
	v, ok := bag.First(keys...)
	if !ok {
		return 0
	}
	return int(ParseAmount(v))
}
