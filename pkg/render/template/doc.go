// Package template defines the template engine contract page renderers rely
// on. The pongo subpackage provides the pongo2 implementation.
package template
