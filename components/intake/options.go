package intake

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-intakeqc/pkg/credentials"
	"github.com/goliatone/go-intakeqc/pkg/render"
	"github.com/goliatone/go-intakeqc/pkg/webtheme"
)

// GuardFunc rejects a request before any handler runs. Errors implementing
// HTTPError choose the status; anything else answers 403.
type GuardFunc func(r *http.Request) error

type Options struct {
	SessionCookie  string
	CSRFCookie     string
	FlashCookie    string
	CSRFField      string
	FormatParam    string
	DefaultFormat  string
	AssetPrefix    string
	SecureCookies  bool
	SessionTTL     time.Duration
	MaxUploadBytes int64
	ThemeName      string
	ThemeVariant   string
	Guard          GuardFunc

	Sealer    *credentials.Sealer
	Renderers *render.Registry
	Themes    *webtheme.Selector
	Logger    *slog.Logger
	Now       func() time.Time
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		SessionCookie:  "iqc_session",
		CSRFCookie:     "iqc_csrf",
		FlashCookie:    "iqc_flash",
		CSRFField:      "_csrf",
		FormatParam:    "format",
		DefaultFormat:  "html",
		AssetPrefix:    "/assets",
		SessionTTL:     12 * time.Hour,
		MaxUploadBytes: 32 << 20,
		ThemeName:      webtheme.DefaultTheme,
		ThemeVariant:   webtheme.DefaultVariant,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	defaults := DefaultOptions()
	if opts.SessionCookie == "" {
		opts.SessionCookie = defaults.SessionCookie
	}
	if opts.CSRFCookie == "" {
		opts.CSRFCookie = defaults.CSRFCookie
	}
	if opts.FlashCookie == "" {
		opts.FlashCookie = defaults.FlashCookie
	}
	if opts.CSRFField == "" {
		opts.CSRFField = defaults.CSRFField
	}
	if opts.FormatParam == "" {
		opts.FormatParam = defaults.FormatParam
	}
	if opts.DefaultFormat == "" {
		opts.DefaultFormat = defaults.DefaultFormat
	}
	if opts.AssetPrefix == "" {
		opts.AssetPrefix = defaults.AssetPrefix
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaults.SessionTTL
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

func WithSealer(sealer *credentials.Sealer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Sealer = sealer
	}
}

func WithRenderers(registry *render.Registry) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Renderers = registry
	}
}

func WithThemes(selector *webtheme.Selector) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Themes = selector
	}
}

// WithTheme picks the theme and variant used when a request names none.
func WithTheme(name, variant string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ThemeName = name
		o.ThemeVariant = variant
	}
}

func WithSecureCookies(secure bool) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SecureCookies = secure
	}
}

func WithSessionTTL(ttl time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SessionTTL = ttl
	}
}

func WithMaxUploadBytes(limit int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxUploadBytes = limit
	}
}

func WithAssetPrefix(prefix string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.AssetPrefix = prefix
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func WithClock(now func() time.Time) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Now = now
	}
}
