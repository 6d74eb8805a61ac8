// Package form holds the transient state of one form editing session: field
// values, per-field errors, selected files and the in-flight flag.
package form

import (
	"io"
	"sync"

	"github.com/goliatone/go-intakeqc/pkg/model"
	"github.com/goliatone/go-intakeqc/pkg/validation"
)

// File is an upload selected by the user. Open is called once per submission.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Binding exposes one field to a renderer.
type Binding struct {
	Name        string            `json:"name"`
	Label       string            `json:"label"`
	Kind        model.FieldType   `json:"type"`
	Value       string            `json:"value"`
	Errors      []string          `json:"errors,omitempty"`
	Required    bool              `json:"required"`
	Options     []string          `json:"options,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Description string            `json:"description,omitempty"`
	Multiple    bool              `json:"multiple,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Draft validates on every change. It is safe for concurrent use.
type Draft struct {
	mu       sync.Mutex
	form     model.FormModel
	values   map[string]string
	errors   map[string][]string
	touched  map[string]bool
	files    []File
	inFlight bool
}

// NewDraft seeds a draft with initial values. Initial values are validated so
// Valid reflects them, but their errors stay hidden until the field changes or
// ValidateAll runs.
func NewDraft(form model.FormModel, initial map[string]string) *Draft {
	d := &Draft{
		form:    form,
		values:  make(map[string]string, len(form.Fields)),
		errors:  make(map[string][]string),
		touched: make(map[string]bool),
	}
	for _, field := range form.Fields {
		if field.Type == model.FieldTypeFile {
			continue
		}
		d.values[field.Name] = initial[field.Name]
	}
	return d
}

// Form returns the model the draft edits.
func (d *Draft) Form() model.FormModel {
	return d.form
}

// Set stores value for name and returns the field's current errors. Unknown
// names are ignored.
func (d *Draft) Set(name, value string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	field, ok := d.form.Field(name)
	if !ok || field.Type == model.FieldTypeFile {
		return nil
	}
	d.values[name] = value
	d.touched[name] = true
	d.validateLocked(field)
	return cloneStrings(d.errors[name])
}

// SetAll applies every known key of values.
func (d *Draft) SetAll(values map[string]string) {
	for _, field := range d.form.Fields {
		if value, ok := values[field.Name]; ok {
			d.Set(field.Name, value)
		}
	}
}

// SetFiles replaces the selected files.
func (d *Draft) SetFiles(files []File) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files = append([]File(nil), files...)
}

// Files returns the selected files.
func (d *Draft) Files() []File {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]File(nil), d.files...)
}

// Value returns the current value of name.
func (d *Draft) Value(name string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.values[name]
}

// Values returns a copy of every scalar value.
func (d *Draft) Values() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]string, len(d.values))
	for key, value := range d.values {
		out[key] = value
	}
	return out
}

// ValidateAll marks every field touched and returns the full result.
func (d *Draft) ValidateAll() validation.Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, field := range d.form.Fields {
		if field.Type == model.FieldTypeFile {
			continue
		}
		d.touched[field.Name] = true
		d.validateLocked(field)
	}
	return validation.Validate(d.form, d.values)
}

// Errors returns the visible errors keyed by field.
func (d *Draft) Errors() map[string][]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.errors) == 0 {
		return nil
	}
	out := make(map[string][]string, len(d.errors))
	for key, messages := range d.errors {
		out[key] = cloneStrings(messages)
	}
	return out
}

// Valid reports whether the current values pass every rule, touched or not.
func (d *Draft) Valid() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return validation.Validate(d.form, d.values).Valid
}

// InFlight reports whether a submission is running.
func (d *Draft) InFlight() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inFlight
}

// CanSubmit reports whether the submit action should be enabled.
func (d *Draft) CanSubmit() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.inFlight && validation.Validate(d.form, d.values).Valid
}

// Begin marks the draft in flight. It fails when the draft is invalid or a
// submission is already running; otherwise the returned func clears the flag.
func (d *Draft) Begin() (finish func(), ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inFlight || !validation.Validate(d.form, d.values).Valid {
		return func() {}, false
	}
	d.inFlight = true

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			d.inFlight = false
			d.mu.Unlock()
		})
	}, true
}

// Bindings returns one binding per field in form order.
func (d *Draft) Bindings() []Binding {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Binding, 0, len(d.form.Fields))
	for _, field := range d.form.Fields {
		out = append(out, Binding{
			Name:        field.Name,
			Label:       field.Label,
			Kind:        field.Type,
			Value:       d.values[field.Name],
			Errors:      cloneStrings(d.errors[field.Name]),
			Required:    field.Required,
			Options:     cloneStrings(field.Enum),
			Placeholder: field.Placeholder,
			Description: field.Description,
			Multiple:    field.Multiple,
			Metadata:    field.Metadata,
		})
	}
	return out
}

func (d *Draft) validateLocked(field model.Field) {
	if !d.touched[field.Name] {
		return
	}
	issues := validation.Field(field, d.values[field.Name])
	if len(issues) == 0 {
		delete(d.errors, field.Name)
		return
	}
	messages := make([]string, 0, len(issues))
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	d.errors[field.Name] = messages
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return append([]string(nil), in...)
}
