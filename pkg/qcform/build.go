// Package qcform builds the intake QC form for a record: it selects the rule
// variant from the record's GUBUN and assembles a model.FormModel carrying the
// validation rules, UI hints and prefilled values.
package qcform

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-intakeqc/pkg/model"
	"github.com/goliatone/go-intakeqc/pkg/record"
)

var (
	// ErrRecordNotFound is returned when the selected record is not loaded.
	ErrRecordNotFound = errors.New("qcform: record not found")
	// ErrMissingLookup is returned when the entry location codes are absent.
	ErrMissingLookup = errors.New("qcform: entry location lookup missing")
)

// Request describes the form to build.
type Request struct {
	Resource string
	Title    string
	Endpoint string
	Profile  Profile
	Record   record.Record
	Lookups  record.Lookups
}

// Build assembles the form for req. It fails with ErrRecordNotFound when no
// record is given and with ErrMissingLookup when the profile needs entry
// locations that the envelope did not carry.
func Build(req Request) (model.FormModel, error) {
	if req.Record == nil {
		return model.FormModel{}, ErrRecordNotFound
	}
	if !req.Lookups.Has(LookupEntryLocation) {
		return model.FormModel{}, ErrMissingLookup
	}

	profile := req.Profile
	if profile == "" {
		profile = ProfileInspection
	}
	variant := SelectVariant(req.Record)

	form := model.FormModel{
		OperationID: req.Resource,
		Endpoint:    strings.TrimRight(req.Endpoint, "/") + "/" + req.Record.AssetNo(),
		Method:      http.MethodPost,
		Summary:     req.Title,
		Metadata: map[string]string{
			"profile": string(profile),
			"variant": string(variant),
			"assetNo": req.Record.AssetNo(),
		},
	}
	for _, name := range profile.Fields(variant) {
		form.Fields = append(form.Fields, fieldFor(name, req.Lookups))
	}
	return form, nil
}

// Defaults returns the initial draft values for form taken from rec.
func Defaults(form model.FormModel, rec record.Record) map[string]string {
	out := make(map[string]string, len(form.Fields))
	for _, field := range form.Fields {
		if field.Type == model.FieldTypeFile {
			continue
		}
		out[field.Name] = field.Default
	}
	for _, name := range prefillFields {
		if _, shown := form.Field(name); !shown {
			continue
		}
		if rec.Has(name) {
			out[name] = rec.String(name)
		}
	}
	return out
}

func fieldFor(name string, lookups record.Lookups) model.Field {
	switch name {
	case FieldMileage:
		return numericField(name, "주행 거리", "km", msgMileage)
	case FieldKeyQuant:
		return numericField(name, "키 개수", "개", msgKeyQuant)
	case FieldKeyTotal:
		return numericField(name, "총 키 개수", "개", msgKeyTotal)
	case FieldEntryLocation:
		return model.Field{
			Name:     name,
			Type:     model.FieldTypeString,
			Required: true,
			Label:    "입고 위치",
			Enum:     append([]string(nil), lookups.Options(LookupEntryLocation)...),
			Validations: []model.ValidationRule{
				{Kind: model.ValidationRuleRequired, Message: msgEntryLocation},
				{Kind: model.ValidationRuleEnum, Message: msgEntryLocation},
			},
		}
	case FieldDetailLocation:
		return model.Field{
			Name:        name,
			Type:        model.FieldTypeString,
			Label:       "상세 위치",
			Placeholder: "예) 2층 B구역",
		}
	case FieldKeyLocation:
		return model.Field{
			Name:     name,
			Type:     model.FieldTypeString,
			Required: true,
			Label:    "키 보관 위치",
			Validations: []model.ValidationRule{
				{Kind: model.ValidationRuleRequired, Message: msgKeyLocation},
			},
		}
	case FieldImages:
		return model.Field{
			Name:     name,
			Type:     model.FieldTypeFile,
			Label:    "사진",
			Multiple: true,
			Metadata: map[string]string{"accept": "image/*"},
		}
	default:
		return model.Field{Name: name, Type: model.FieldTypeString, Label: name}
	}
}

func numericField(name, label, unit, message string) model.Field {
	return model.Field{
		Name:     name,
		Type:     model.FieldTypeInteger,
		Required: true,
		Label:    label,
		Metadata: map[string]string{"unit": unit, "inputmode": "numeric"},
		Validations: []model.ValidationRule{
			{Kind: model.ValidationRuleRequired, Message: message},
			{Kind: model.ValidationRulePattern, Params: map[string]string{"pattern": digitsPattern}, Message: message},
		},
	}
}
