// Package html renders intakeqc pages as server side HTML documents using the
// pongo2 template engine.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-intakeqc/pkg/render"
	rendertemplate "github.com/goliatone/go-intakeqc/pkg/render/template"
	"github.com/goliatone/go-intakeqc/pkg/render/template/pongo"
)

// Name is the registry name of the renderer.
const Name = "html"

// Asset keys resolved through the theme.
const (
	AssetStylesheet = "stylesheet"
	AssetScript     = "script"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	assetPrefix      string
	lang             string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithAssetPrefix sets the URL prefix the embedded assets are served under
// when no theme resolves them. Defaults to /assets.
func WithAssetPrefix(prefix string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimRight(strings.TrimSpace(prefix), "/"); trimmed != "" {
			cfg.assetPrefix = trimmed
		}
	}
}

// WithLang sets the document language. Defaults to ko.
func WithLang(lang string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(lang); trimmed != "" {
			cfg.lang = trimmed
		}
	}
}

type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	assetPrefix string
	lang        string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:  TemplatesFS(),
		assetPrefix: "/assets",
		lang:        "ko",
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(pongo.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:   renderer,
		assetPrefix: cfg.assetPrefix,
		lang:        cfg.lang,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render executes the template named after the page kind.
func (r *Renderer) Render(_ context.Context, page render.Page, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if page.Kind == "" {
		return nil, fmt.Errorf("html renderer: page kind is required")
	}

	view := r.view(page, options)
	result, err := r.templates.Render(string(page.Kind), view)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render %s page: %w", page.Kind, err)
	}
	return []byte(result), nil
}

type pageView struct {
	Lang            string               `json:"lang"`
	Page            render.Page          `json:"page"`
	DescriptionHTML string               `json:"descriptionHTML"`
	Hidden          []render.HiddenField `json:"hidden"`
	Flash           []render.Flash       `json:"flash"`
	Theme           themeView            `json:"theme"`
}

type themeView struct {
	Name       string            `json:"name"`
	Variant    string            `json:"variant"`
	CSSVars    map[string]string `json:"cssVars"`
	Stylesheet string            `json:"stylesheet"`
	Script     string            `json:"script"`
}

func (r *Renderer) view(page render.Page, options render.RenderOptions) pageView {
	if page.Detail != nil {
		detail := *page.Detail
		detail.Fields = render.ApplyErrors(detail.Fields, options.Errors)
		for i := range detail.Fields {
			detail.Fields[i].Description = sanitizeProse(detail.Fields[i].Description)
		}
		page.Detail = &detail
	}

	return pageView{
		Lang:            r.lang,
		Page:            page,
		DescriptionHTML: sanitizeProse(page.Description),
		Hidden:          render.SortedHiddenFields(options.Hidden),
		Flash:           options.Flash,
		Theme:           r.themeView(options.Theme),
	}
}

func (r *Renderer) themeView(cfg *theme.RendererConfig) themeView {
	view := themeView{
		Stylesheet: r.assetPrefix + "/" + StylesheetName,
		Script:     r.assetPrefix + "/" + ScriptName,
	}
	if cfg == nil {
		return view
	}
	view.Name = cfg.Theme
	view.Variant = cfg.Variant
	view.CSSVars = cfg.CSSVars
	if cfg.AssetURL != nil {
		if url := cfg.AssetURL(AssetStylesheet); url != "" {
			view.Stylesheet = url
		}
		if url := cfg.AssetURL(AssetScript); url != "" {
			view.Script = url
		}
	}
	return view
}
