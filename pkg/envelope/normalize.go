package envelope

import (
	"sort"

	"github.com/goliatone/go-intakeqc/pkg/record"
)

// Response is the normalised form of an envelope.
type Response struct {
	Records []record.Record
	Lookups record.Lookups
}

// Find returns the record identified by assetNo.
func (r Response) Find(assetNo string) (record.Record, bool) {
	return record.Find(r.Records, assetNo)
}

// Normalize collects the records stored under keys (every record array when
// keys is empty) and the lookup tables of raw.
func Normalize(raw Raw, keys ...string) Response {
	return Response{
		Records: AppendRecords(nil, raw, keys...),
		Lookups: LookupsOf(raw),
	}
}

// AppendRecords appends the records found under keys to dst and returns the
// extended slice. With no keys every record array except reqCode is read, in
// key order. Missing keys and non-object entries are skipped. Values are not
// transformed, so applying it twice into fresh slices gives equal results.
func AppendRecords(dst []record.Record, raw Raw, keys ...string) []record.Record {
	if len(raw) == 0 {
		return dst
	}
	if len(keys) == 0 {
		keys = raw.Keys()
	}
	for _, key := range keys {
		if key == KeyLookups {
			continue
		}
		items, ok := raw[key].([]any)
		if !ok {
			continue
		}
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			dst = append(dst, record.Record(obj))
		}
	}
	return dst
}

// LookupsOf merges every reqCode table into one lookup map. Array values become
// option lists; the first occurrence of a category wins.
func LookupsOf(raw Raw) record.Lookups {
	tables, ok := raw[KeyLookups].([]any)
	if !ok || len(tables) == 0 {
		return record.Lookups{}
	}

	out := make(record.Lookups)
	for _, table := range tables {
		obj, ok := table.(map[string]any)
		if !ok {
			continue
		}
		for _, category := range sortedKeys(obj) {
			if _, exists := out[category]; exists {
				continue
			}
			values, ok := obj[category].([]any)
			if !ok {
				continue
			}
			options := make([]string, 0, len(values))
			for _, value := range values {
				if value == nil {
					continue
				}
				options = append(options, record.Format(value))
			}
			out[category] = options
		}
	}
	return out
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sortStrings(keys)
	return keys
}

func sortStrings(values []string) {
	sort.Strings(values)
}
