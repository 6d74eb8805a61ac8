// Package json renders intakeqc pages as JSON documents for API consumers.
package json

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-intakeqc/pkg/render"
)

// Name is the registry name of the renderer.
const Name = "json"

type Option func(*Renderer)

// WithIndent pretty prints the output using indent.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "application/json; charset=utf-8"
}

type document struct {
	render.Page
	Flash  []render.Flash    `json:"flash,omitempty"`
	Hidden map[string]string `json:"hidden,omitempty"`
	Theme  *documentTheme    `json:"theme,omitempty"`
}

type documentTheme struct {
	Name    string `json:"name"`
	Variant string `json:"variant"`
}

// Render encodes page with field errors from options merged into the detail
// bindings.
func (r *Renderer) Render(_ context.Context, page render.Page, options render.RenderOptions) ([]byte, error) {
	if page.Detail != nil {
		detail := *page.Detail
		detail.Fields = render.ApplyErrors(detail.Fields, options.Errors)
		page.Detail = &detail
	}

	doc := document{
		Page:   page,
		Flash:  options.Flash,
		Hidden: render.MergeHiddenFields(options.Hidden),
	}
	if options.Theme != nil {
		doc.Theme = &documentTheme{Name: options.Theme.Theme, Variant: options.Theme.Variant}
	}

	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(doc, "", r.indent)
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("json renderer: encode %s page: %w", page.Kind, err)
	}
	return out, nil
}
