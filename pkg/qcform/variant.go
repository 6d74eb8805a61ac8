package qcform

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/goliatone/go-intakeqc/pkg/record"
)

// NewVehicle is the GUBUN value marking a new vehicle.
const NewVehicle = "신차"

// Variant selects which rule set applies to a record.
type Variant string

const (
	// Base applies to every record that is not a new vehicle.
	Base Variant = "base"
	// Extended adds the key count fields required for new vehicles.
	Extended Variant = "extended"
)

// SelectVariant picks the rule set for rec. A nil record selects Base.
// The comparison runs on NFC-normalised, trimmed text so decomposed Hangul
// from legacy systems still matches.
func SelectVariant(rec record.Record) Variant {
	if rec == nil {
		return Base
	}
	gubun := norm.NFC.String(strings.TrimSpace(rec.String(record.FieldGubun)))
	if gubun == NewVehicle {
		return Extended
	}
	return Base
}
