package render

import (
	theme "github.com/goliatone/go-theme"
)

// Flash levels.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot notice shown above the page body.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the page itself.
type RenderOptions struct {
	// Hidden carries inputs emitted inside every form on the page, typically
	// the CSRF token.
	Hidden map[string]string
	// Errors overrides field level messages keyed by field name. Entries are
	// merged over the bindings of a detail page.
	Errors map[string][]string
	// Flash notices pulled from the session.
	Flash []Flash
	// Theme resolved for the request, when any.
	Theme *theme.RendererConfig
}
