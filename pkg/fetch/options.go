package fetch

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-intakeqc/pkg/credentials"
)

// Observer receives one call per completed request.
type Observer interface {
	ObserveFetch(resource, outcome string, elapsed time.Duration)
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient overrides the HTTP client.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithCredentials attaches a bearer token to every request when available.
func WithCredentials(p credentials.Provider) Option {
	return func(f *Fetcher) {
		f.creds = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithObserver records request outcomes, typically a *metrics.Collector.
func WithObserver(o Observer) Option {
	return func(f *Fetcher) {
		f.observer = o
	}
}

// WithName labels logs and metrics.
func WithName(name string) Option {
	return func(f *Fetcher) {
		if name != "" {
			f.name = name
		}
	}
}

// WithMaxAge makes Load revalidate once the cached state is older than d.
// Zero keeps the first result until Revalidate is called.
func WithMaxAge(d time.Duration) Option {
	return func(f *Fetcher) {
		if d >= 0 {
			f.maxAge = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
