package render

import (
	"time"

	"github.com/goliatone/go-intakeqc/pkg/form"
)

// Kind identifies the page layout.
type Kind string

const (
	KindIndex   Kind = "index"
	KindList    Kind = "list"
	KindDetail  Kind = "detail"
	KindMessage Kind = "message"
	KindSession Kind = "session"
)

// Page is the renderer-agnostic view of one screen.
type Page struct {
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	// Status is the HTTP status the page is served with.
	Status  int          `json:"status,omitempty"`
	Links   []Link       `json:"links,omitempty"`
	List    *ListView    `json:"list,omitempty"`
	Detail  *DetailView  `json:"detail,omitempty"`
	Message string       `json:"message,omitempty"`
	Session *SessionView `json:"session,omitempty"`
}

// Link points at a resource list.
type Link struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Href  string `json:"href"`
}

// Column is a table header.
type Column struct {
	Field string `json:"field"`
	Label string `json:"label"`
}

// Row is one list entry.
type Row struct {
	AssetNo  string   `json:"assetNo"`
	Cells    []string `json:"cells"`
	Href     string   `json:"href"`
	Selected bool     `json:"selected,omitempty"`
}

// ListView describes a filtered record table. Confirm links the selected
// record's detail page and is empty, disabling the control, when nothing is
// selected.
type ListView struct {
	Resource     string    `json:"resource"`
	Action       string    `json:"action"`
	Query        string    `json:"query"`
	Columns      []Column  `json:"columns"`
	Rows         []Row     `json:"rows"`
	Total        int       `json:"total"`
	Selected     string    `json:"selected,omitempty"`
	Confirm      string    `json:"confirm,omitempty"`
	Loading      bool      `json:"loading,omitempty"`
	Revalidating bool      `json:"revalidating,omitempty"`
	FetchedAt    time.Time `json:"fetchedAt,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// SummaryItem is a read-only label/value pair.
type SummaryItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DetailView describes the edit form of a single record.
type DetailView struct {
	Resource   string         `json:"resource"`
	AssetNo    string         `json:"assetNo"`
	Variant    string         `json:"variant"`
	Summary    []SummaryItem  `json:"summary,omitempty"`
	Fields     []form.Binding `json:"fields"`
	Action     string         `json:"action"`
	Back       string         `json:"back"`
	FormErrors []string       `json:"formErrors,omitempty"`
	CanSubmit  bool           `json:"canSubmit"`
}

// SessionView describes the sign-in screen.
type SessionView struct {
	Action    string    `json:"action"`
	Logout    string    `json:"logout"`
	SignedIn  bool      `json:"signedIn"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	Next      string    `json:"next,omitempty"`
}

// ApplyErrors returns a copy of bindings with errors merged in. Messages are
// trimmed and de-duplicated per field.
func ApplyErrors(bindings []form.Binding, errors map[string][]string) []form.Binding {
	if len(bindings) == 0 {
		return nil
	}
	out := make([]form.Binding, len(bindings))
	copy(out, bindings)
	if len(errors) == 0 {
		return out
	}
	for i := range out {
		if extra, ok := errors[out[i].Name]; ok {
			out[i].Errors = MergeFormErrors(out[i].Errors, extra...)
		}
	}
	return out
}
