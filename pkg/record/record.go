// Package record holds the loosely typed rows returned by the intake API and
// the code lookup tables that travel alongside them.
package record

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Field names shared by every intake resource.
const (
	FieldAssetNo = "ASSETNO"
	FieldPlate   = "CARNO"
	FieldGubun   = "GUBUN"
)

// Record is a single row keyed by field name. Values are passed through from
// the decoded JSON untouched: strings, float64/json.Number, bools or nil.
type Record map[string]any

// String renders the value stored under key for display. Numbers print without
// exponent or trailing zeros so 31704 stays "31704".
func (r Record) String(key string) string {
	if r == nil {
		return ""
	}
	return Format(r[key])
}

// Format renders a decoded JSON scalar the way String does.
func Format(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// AssetNo returns the record identifier.
func (r Record) AssetNo() string {
	return strings.TrimSpace(r.String(FieldAssetNo))
}

// Has reports whether key is present with a non-nil value.
func (r Record) Has(key string) bool {
	if r == nil {
		return false
	}
	value, ok := r[key]
	return ok && value != nil
}

// Find returns the first record whose identifier equals assetNo.
func Find(records []Record, assetNo string) (Record, bool) {
	assetNo = strings.TrimSpace(assetNo)
	if assetNo == "" {
		return nil, false
	}
	for _, rec := range records {
		if rec.AssetNo() == assetNo {
			return rec, true
		}
	}
	return nil, false
}

// Contains reports whether assetNo identifies one of records.
func Contains(records []Record, assetNo string) bool {
	_, ok := Find(records, assetNo)
	return ok
}

// Lookups maps a code category (for example HR58) to its ordered options.
type Lookups map[string][]string

// Options returns the options for category, or nil when absent.
func (l Lookups) Options(category string) []string {
	if l == nil {
		return nil
	}
	return l[category]
}

// Has reports whether category carries at least one option.
func (l Lookups) Has(category string) bool {
	return len(l.Options(category)) > 0
}

// Allows reports whether value is one of the options listed for category.
func (l Lookups) Allows(category, value string) bool {
	for _, option := range l.Options(category) {
		if option == value {
			return true
		}
	}
	return false
}

// Categories returns the lookup categories in sorted order.
func (l Lookups) Categories() []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for key := range l {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
