// Package listing filters loaded records and tracks the single selected row of
// a list view.
package listing

import (
	"strings"

	"github.com/goliatone/go-intakeqc/pkg/record"
)

// Filter returns the records whose field contains query. Matching is
// case-sensitive; an empty query keeps every record. The input is not modified.
func Filter(records []record.Record, field, query string) []record.Record {
	out := make([]record.Record, 0, len(records))
	for _, rec := range records {
		if query == "" || strings.Contains(rec.String(field), query) {
			out = append(out, rec)
		}
	}
	return out
}

// Action is the outcome of a row click.
type Action int

const (
	// ActionNone means the click was ignored.
	ActionNone Action = iota
	// ActionSelect means the row is now selected.
	ActionSelect
	// ActionNavigate means the already selected row was clicked again.
	ActionNavigate
)

// Selection holds at most one selected identifier. The zero value is empty.
type Selection struct {
	selected string
}

// NewSelection restores a selection, dropping it when assetNo is not loaded.
func NewSelection(assetNo string, loaded []record.Record) Selection {
	s := Selection{selected: strings.TrimSpace(assetNo)}
	s.Sync(loaded)
	return s
}

// Selected returns the selected identifier, or "".
func (s Selection) Selected() string { return s.selected }

// Click arms a row on the first click and navigates on the second. Identifiers
// missing from loaded are ignored.
func (s *Selection) Click(assetNo string, loaded []record.Record) Action {
	assetNo = strings.TrimSpace(assetNo)
	if !record.Contains(loaded, assetNo) {
		return ActionNone
	}
	if s.selected == assetNo {
		return ActionNavigate
	}
	s.selected = assetNo
	return ActionSelect
}

// Confirm returns the selected identifier; ok is false when nothing is
// selected and the confirm action should be disabled.
func (s Selection) Confirm() (string, bool) {
	return s.selected, s.selected != ""
}

// Sync clears the selection when it no longer references a loaded record.
func (s *Selection) Sync(loaded []record.Record) {
	if s.selected != "" && !record.Contains(loaded, s.selected) {
		s.selected = ""
	}
}

// Clear drops the selection.
func (s *Selection) Clear() { s.selected = "" }
