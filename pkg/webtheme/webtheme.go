// Package webtheme resolves go-theme manifests into the renderer
// configuration used by the HTML pages.
package webtheme

import (
	"errors"
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
)

const (
	DefaultTheme   = "intakeqc"
	DefaultVariant = "light"
)

var (
	// ErrUnknownTheme is returned when no manifest carries the requested name.
	ErrUnknownTheme = errors.New("webtheme: unknown theme")
	// ErrUnknownVariant is returned for variants the manifest does not declare.
	ErrUnknownVariant = errors.New("webtheme: unknown variant")
)

// Builtin returns the manifest shipped with the HTML renderer assets.
func Builtin(assetPrefix string) *theme.Manifest {
	if assetPrefix == "" {
		assetPrefix = "/assets"
	}
	return &theme.Manifest{
		Name:    DefaultTheme,
		Version: "1.0.0",
		Tokens: map[string]string{
			"iqc-brand":   "#1f5fbf",
			"iqc-surface": "#ffffff",
			"iqc-text":    "#1c1f24",
			"iqc-muted":   "#6b7280",
		},
		Assets: theme.Assets{
			Prefix: assetPrefix,
			Files: map[string]string{
				"stylesheet": "intakeqc.css",
				"script":     "intakeqc.js",
			},
		},
		Variants: map[string]theme.Variant{
			"light": {},
			"dark": {
				Tokens: map[string]string{
					"iqc-surface": "#15171a",
					"iqc-text":    "#e8eaed",
					"iqc-muted":   "#9aa0a6",
				},
			},
		},
	}
}

// Selector picks a manifest and variant, falling back to its defaults for
// empty names.
type Selector struct {
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

// New validates manifests through a go-theme registry and returns a selector
// over them.
func New(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) (*Selector, error) {
	registry := theme.NewRegistry()
	s := &Selector{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
	}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("webtheme: register %q: %w", manifest.Name, err)
		}
		s.manifests[manifest.Name] = manifest
	}
	if s.defaultTheme == "" {
		s.defaultTheme = DefaultTheme
	}
	if _, ok := s.manifests[s.defaultTheme]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, s.defaultTheme)
	}
	return s, nil
}

// Select resolves name and variant. Empty values use the selector defaults.
func (s *Selector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if s == nil {
		return nil, ErrUnknownTheme
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultTheme
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}

	variant = strings.TrimSpace(variant)
	if variant == "" && name == s.defaultTheme {
		variant = s.defaultVariant
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("%w: %q for theme %q", ErrUnknownVariant, variant, name)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// RendererConfig resolves name and variant into tokens, CSS variables,
// partials and an asset resolver. Variant values override the base manifest.
func (s *Selector) RendererConfig(name, variant string) (*theme.RendererConfig, error) {
	selection, err := s.Select(name, variant)
	if err != nil {
		return nil, err
	}
	return Resolve(selection), nil
}

// Resolve flattens a selection.
func Resolve(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	overlay := manifest.Variants[selection.Variant]

	tokens := merge(manifest.Tokens, overlay.Tokens)
	files := merge(manifest.Assets.Files, overlay.Assets.Files)
	prefix := manifest.Assets.Prefix
	if overlay.Assets.Prefix != "" {
		prefix = overlay.Assets.Prefix
	}

	vars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		vars["--"+key] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: merge(manifest.Templates, overlay.Templates),
		Tokens:   tokens,
		CSSVars:  vars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
				return file
			}
			return strings.TrimRight(prefix, "/") + "/" + file
		},
	}
}

func merge(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range overlay {
		out[key] = value
	}
	return out
}
