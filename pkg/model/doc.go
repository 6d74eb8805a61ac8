// Package model defines the typed form model shared by the web and terminal
// front-ends. A FormModel lists its fields in display order; each Field carries
// the validation rules (required, pattern, minLength/maxLength, enum) that the
// validation package evaluates and the UI hints (label, placeholder,
// description, default) renderers surface next to the control.
package model
