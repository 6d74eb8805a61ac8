// Package intakeqc wires the intake QC core from configuration: per-token list
// fetchers and one submission pipeline per configured resource, plus the page
// builders shared by the web and terminal front-ends.
package intakeqc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goliatone/go-intakeqc/internal/config"
	"github.com/goliatone/go-intakeqc/pkg/credentials"
	"github.com/goliatone/go-intakeqc/pkg/fetch"
	"github.com/goliatone/go-intakeqc/pkg/metrics"
	"github.com/goliatone/go-intakeqc/pkg/render"
	"github.com/goliatone/go-intakeqc/pkg/routes"
	"github.com/goliatone/go-intakeqc/pkg/submit"
)

// User-facing messages shared by the front-ends.
const (
	MessageNotFound    = "해당 데이터가 없습니다."
	MessageFetchFailed = "데이터를 불러오지 못했습니다."
)

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger handed to every fetcher and pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithHTTPClient overrides the client built from api.timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(a *App) {
		if client != nil {
			a.client = client
		}
	}
}

// WithMetrics records fetch and submission outcomes on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(a *App) {
		a.metrics = c
	}
}

// WithCredentials sets the provider used for list fetches. Defaults to
// credentials.FromContext so each request carries its own token.
func WithCredentials(p credentials.Provider) Option {
	return func(a *App) {
		if p != nil {
			a.creds = p
		}
	}
}

// App holds the configured resources.
type App struct {
	cfg       config.Config
	client    *http.Client
	logger    *slog.Logger
	metrics   *metrics.Collector
	creds     credentials.Provider
	resources []*Resource
	byRoute   map[string]*Resource
}

// New validates cfg and builds every resource.
func New(cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		creds:  credentials.FromContext,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	if a.client == nil {
		a.client = &http.Client{Timeout: cfg.API.Timeout}
	}

	a.byRoute = make(map[string]*Resource, len(cfg.Resources))
	for _, rc := range cfg.Resources {
		res := a.buildResource(rc)
		a.resources = append(a.resources, res)
		a.byRoute[routeKey(res.Route())] = res
	}
	return a, nil
}

func (a *App) buildResource(rc config.Resource) *Resource {
	logger := a.logger.With("resource", rc.Name)

	fetchOpts := []fetch.Option{
		fetch.WithName(rc.Name),
		fetch.WithClient(a.client),
		fetch.WithLogger(logger),
		fetch.WithCredentials(a.creds),
		fetch.WithMaxAge(a.cfg.API.CacheMaxAge),
	}
	submitOpts := []submit.Option{
		submit.WithName(rc.Name),
		submit.WithClient(a.client),
		submit.WithLogger(logger),
		submit.WithListRoute(routes.List(rc.Route)),
	}
	if a.metrics != nil {
		fetchOpts = append(fetchOpts, fetch.WithObserver(a.metrics))
		submitOpts = append(submitOpts, submit.WithObserver(a.metrics))
	}

	listURL := a.cfg.Endpoint(rc.ListEndpoint)
	return &Resource{
		cfg: rc,
		lists: newLists(a.cfg.API.ListCacheSize, a.creds, func() *fetch.Fetcher {
			return fetch.New(listURL, fetchOpts...)
		}),
		pipeline: submit.New(a.cfg.API.BaseURL, rc.SubmitEndpoint, submitOpts...).WithCredentials(a.creds),
		metrics:  a.metrics,
	}
}

// Config returns the configuration the app was built from.
func (a *App) Config() config.Config { return a.cfg }

// Logger returns the app logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Metrics returns the collector, which may be nil.
func (a *App) Metrics() *metrics.Collector { return a.metrics }

// Resources returns the resources in configuration order.
func (a *App) Resources() []*Resource {
	return append([]*Resource(nil), a.resources...)
}

// Resource finds a resource by route, ignoring case and surrounding slashes.
func (a *App) Resource(route string) (*Resource, bool) {
	res, ok := a.byRoute[routeKey(route)]
	return res, ok
}

// Lookup finds a resource by name or route.
func (a *App) Lookup(nameOrRoute string) (*Resource, error) {
	for _, res := range a.resources {
		if strings.EqualFold(res.Name(), nameOrRoute) {
			return res, nil
		}
	}
	if res, ok := a.Resource(nameOrRoute); ok {
		return res, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownResource, nameOrRoute)
}

// ErrUnknownResource is returned by Lookup.
var ErrUnknownResource = errors.New("intakeqc: unknown resource")

// IndexPage links every resource list.
func (a *App) IndexPage() render.Page {
	page := render.Page{Kind: render.KindIndex, Title: "입고 QC"}
	for _, res := range a.resources {
		page.Links = append(page.Links, render.Link{
			Name:  res.Name(),
			Title: res.Title(),
			Href:  routes.List(res.Route()),
		})
	}
	return page
}

// MessagePage is a standalone notice served with status.
func MessagePage(title, message string, status int, links ...render.Link) render.Page {
	return render.Page{
		Kind:    render.KindMessage,
		Title:   title,
		Message: message,
		Status:  status,
		Links:   links,
	}
}

func routeKey(route string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(route), "/"))
}
