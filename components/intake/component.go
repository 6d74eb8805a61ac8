package intake

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goliatone/go-intakeqc"
	"github.com/goliatone/go-intakeqc/pkg/render"
	"github.com/goliatone/go-intakeqc/pkg/renderers/html"
	jsonrenderer "github.com/goliatone/go-intakeqc/pkg/renderers/json"
	"github.com/goliatone/go-intakeqc/pkg/webtheme"
)

// ErrMissingSealer is returned by New when no session sealer is configured.
var ErrMissingSealer = errors.New("intake: session sealer is required")

// Component serves one App over HTTP.
type Component struct {
	app     *intakeqc.App
	opts    Options
	handler http.Handler
}

// New builds the component. Without WithRenderers the html and json renderers
// are registered; without WithThemes the built-in theme is used.
func New(app *intakeqc.App, fns ...OptionFn) (*Component, error) {
	if app == nil {
		return nil, fmt.Errorf("intake: missing app")
	}
	opts := NewOptions(fns...)
	if opts.Sealer == nil {
		return nil, ErrMissingSealer
	}

	if opts.Renderers == nil {
		registry, err := defaultRenderers(opts.AssetPrefix)
		if err != nil {
			return nil, err
		}
		opts.Renderers = registry
	}
	if !opts.Renderers.Has(opts.DefaultFormat) {
		return nil, fmt.Errorf("intake: default renderer %q not registered", opts.DefaultFormat)
	}

	if opts.Themes == nil {
		selector, err := webtheme.New(opts.ThemeName, opts.ThemeVariant, webtheme.Builtin(opts.AssetPrefix))
		if err != nil {
			return nil, fmt.Errorf("intake: theme: %w", err)
		}
		opts.Themes = selector
	}

	c := &Component{app: app, opts: opts}
	c.handler = c.router()
	return c, nil
}

func defaultRenderers(assetPrefix string) (*render.Registry, error) {
	page, err := html.New(html.WithAssetPrefix(assetPrefix))
	if err != nil {
		return nil, fmt.Errorf("intake: %w", err)
	}
	registry := render.NewRegistry()
	if err := registry.Register(page); err != nil {
		return nil, err
	}
	if err := registry.Register(jsonrenderer.New(jsonrenderer.WithIndent("  "))); err != nil {
		return nil, err
	}
	return registry, nil
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return c.opts
}

// Handler returns the component router.
func (c *Component) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return c.handler
}

// RegisterRoutes mounts the component under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("intake: missing component")
	}
	return RegisterRoutes(mux, basePath, c.handler)
}
