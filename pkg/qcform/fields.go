package qcform

import (
	"fmt"
	"strings"
)

// Form field names as submitted to the intake API.
const (
	FieldMileage        = "MILEAGE"
	FieldEntryLocation  = "ENTRYLOCATION"
	FieldDetailLocation = "DETAILLOCATION"
	FieldKeyQuant       = "KEYQUANT"
	FieldKeyTotal       = "KEYTOTAL"
	FieldKeyLocation    = "KEYLOCATION"
	FieldImages         = "IMGLIST"
)

// LookupEntryLocation is the reqCode category listing permitted entry locations.
const LookupEntryLocation = "HR58"

// Profile names the set of fields a resource edits.
type Profile string

const (
	// ProfileInspection edits mileage, locations, keys and photos.
	ProfileInspection Profile = "inspection"
	// ProfileLocation only reassigns the entry location and photos.
	ProfileLocation Profile = "location"
)

// ParseProfile validates a configured profile name. Empty selects inspection.
func ParseProfile(raw string) (Profile, error) {
	switch Profile(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ProfileInspection:
		return ProfileInspection, nil
	case ProfileLocation:
		return ProfileLocation, nil
	default:
		return "", fmt.Errorf("qcform: unknown profile %q", raw)
	}
}

// Fields lists the field names shown for p under variant, in display order.
func (p Profile) Fields(variant Variant) []string {
	switch p {
	case ProfileLocation:
		return []string{FieldEntryLocation, FieldDetailLocation, FieldImages}
	default:
		fields := []string{FieldMileage, FieldEntryLocation, FieldDetailLocation}
		if variant == Extended {
			fields = append(fields, FieldKeyQuant, FieldKeyTotal)
		}
		return append(fields, FieldKeyLocation, FieldImages)
	}
}

// SubmitFields lists every scalar part of the multipart payload, in order.
// Fields the active form does not show are still sent, empty.
func SubmitFields() []string {
	return []string{
		FieldMileage,
		FieldEntryLocation,
		FieldDetailLocation,
		FieldKeyQuant,
		FieldKeyTotal,
		FieldKeyLocation,
	}
}

// prefillFields are copied from the record into the initial draft.
var prefillFields = []string{FieldMileage, FieldKeyQuant, FieldKeyTotal, FieldKeyLocation}

const digitsPattern = `^[0-9]+$`

const (
	msgMileage       = "주행 거리는 0 이상의 정수만 입력할 수 있습니다."
	msgEntryLocation = "차량 입고 위치를 선택해 주세요."
	msgKeyLocation   = "차 키의 보관 위치를 입력해 주세요."
	msgKeyQuant      = "키 개수는 0 이상의 정수만 입력할 수 있습니다."
	msgKeyTotal      = "총 키 개수는 0 이상의 정수만 입력할 수 있습니다."
)
