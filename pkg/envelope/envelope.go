// Package envelope decodes the JSON envelopes returned by the intake API and
// normalises them into records plus code lookups.
//
// An envelope is a JSON object holding one or more arrays of records under
// resource specific keys, plus an optional reqCode array of lookup tables:
//
//	{"list": [{"ASSETNO": "A1", "CARNO": "12가3456"}], "reqCode": [{"HR58": ["A-1"]}]}
//
// Decode validates that shape once at the boundary so downstream code can rely
// on it.
package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// KeyLookups is the envelope key carrying lookup tables.
const KeyLookups = "reqCode"

// ErrEmpty is returned when the payload carries no JSON document.
var ErrEmpty = errors.New("envelope: empty payload")

// Raw is a decoded, boundary-validated envelope.
type Raw map[string]any

// Keys returns the envelope keys holding record arrays, excluding reqCode.
func (r Raw) Keys() []string {
	var keys []string
	for key, value := range r {
		if key == KeyLookups {
			continue
		}
		if _, ok := value.([]any); ok {
			keys = append(keys, key)
		}
	}
	sortStrings(keys)
	return keys
}

// Error describes an envelope that failed boundary validation.
type Error struct {
	Pointer string
	Reason  string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "envelope: invalid payload"
	}
	if e.Pointer == "" {
		return fmt.Sprintf("envelope: %s", e.Reason)
	}
	return fmt.Sprintf("envelope: %s at %s", e.Reason, e.Pointer)
}

func (e *Error) Unwrap() error { return e.Err }

// Decode parses data and validates it against the envelope shape: a top level
// object whose array values (reqCode included) are arrays of objects.
func Decode(data []byte) (Raw, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmpty
	}

	var doc any
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, &Error{Reason: "malformed json", Err: err}
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &Error{Reason: "top level value must be an object"}
	}

	if err := schemaFor(obj).VisitJSON(doc, openapi3.MultiErrors()); err != nil {
		return nil, translateSchemaError(err)
	}
	return Raw(obj), nil
}

func schemaFor(doc map[string]any) *openapi3.Schema {
	rows := openapi3.NewArraySchema().WithItems(openapi3.NewObjectSchema())

	schema := openapi3.NewObjectSchema()
	schema.WithProperty(KeyLookups, rows)
	for key, value := range doc {
		if _, ok := value.([]any); ok {
			schema.WithProperty(key, rows)
		}
	}
	return schema
}

func translateSchemaError(err error) error {
	var multi openapi3.MultiError
	if errors.As(err, &multi) && len(multi) > 0 {
		err = multi[0]
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return &Error{
			Pointer: "/" + strings.Join(schemaErr.JSONPointer(), "/"),
			Reason:  schemaErr.Reason,
			Err:     err,
		}
	}
	return &Error{Reason: err.Error(), Err: err}
}
