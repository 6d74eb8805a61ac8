package intake

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-intakeqc/pkg/renderers/html"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Route names, usable with mux.Router.Get.
const (
	RouteIndex   = "index"
	RouteList    = "list"
	RouteDetail  = "detail"
	RouteSubmit  = "submit"
	RouteSession = "session"
	RouteLogin   = "login"
	RouteLogout  = "logout"
	RouteHealth  = "healthz"
	RouteMetrics = "metrics"
	RouteAssets  = "assets"
)

// Fixed paths. Resource routes share the first path segment, so a resource
// must not be routed at one of these.
const (
	PathSession = "/session"
	PathLogout  = "/session/logout"
	PathHealth  = "/healthz"
	PathMetrics = "/metrics"
)

// RegisterRoutes mounts handler under basePath on m. Links rendered by the
// component are absolute, so non-root mounts are expected behind a proxy that
// strips basePath.
func RegisterRoutes(m Mux, basePath string, handler http.Handler) (string, error) {
	if m == nil {
		return "", fmt.Errorf("intake: missing mux")
	}
	if handler == nil {
		return "", fmt.Errorf("intake: missing handler")
	}
	pattern := mountPath(basePath)
	if pattern == "/" {
		m.Handle(pattern, handler)
		return pattern, nil
	}
	m.Handle(pattern, http.StripPrefix(strings.TrimRight(pattern, "/"), handler))
	return pattern, nil
}

func mountPath(basePath string) string {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" || basePath == "/" {
		return "/"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	return strings.TrimRight(basePath, "/") + "/"
}

func (c *Component) router() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = c.instrument(http.HandlerFunc(c.notFound))
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	r.HandleFunc(PathHealth, c.healthz).Methods(http.MethodGet, http.MethodHead).Name(RouteHealth)
	r.Handle(PathMetrics, c.app.Metrics().Handler()).Methods(http.MethodGet).Name(RouteMetrics)

	prefix := "/" + strings.Trim(c.opts.AssetPrefix, "/") + "/"
	r.PathPrefix(prefix).
		Handler(http.StripPrefix(prefix, http.FileServer(http.FS(html.AssetsFS())))).
		Methods(http.MethodGet, http.MethodHead).
		Name(RouteAssets)

	pages := r.NewRoute().Subrouter()
	pages.Use(c.instrument, c.guard)
	pages.HandleFunc(PathSession, c.sessionForm).Methods(http.MethodGet).Name(RouteSession)
	pages.HandleFunc(PathSession, c.sessionSave).Methods(http.MethodPost).Name(RouteLogin)
	pages.HandleFunc(PathLogout, c.sessionLogout).Methods(http.MethodPost).Name(RouteLogout)
	pages.HandleFunc("/", c.index).Methods(http.MethodGet).Name(RouteIndex)
	pages.HandleFunc("/{route}", c.list).Methods(http.MethodGet).Name(RouteList)
	pages.HandleFunc("/{route}/{assetId}", c.detail).Methods(http.MethodGet).Name(RouteDetail)
	pages.HandleFunc("/{route}/{assetId}", c.submit).Methods(http.MethodPost).Name(RouteSubmit)
	return r
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
