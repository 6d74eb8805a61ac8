package submit

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Observer receives one call per finished submission.
type Observer interface {
	ObserveSubmit(resource, outcome string, elapsed time.Duration)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClient overrides the HTTP client.
func WithClient(client *http.Client) Option {
	return func(p *Pipeline) {
		if client != nil {
			p.client = client
		}
	}
}

// WithLogger sets the logger. Failure details are logged, never shown.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithObserver records submission outcomes.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// WithRevalidator sets the list reloaded after a successful submission.
func WithRevalidator(r Revalidator) Option {
	return func(p *Pipeline) {
		p.revalidator = r
	}
}

// WithListRoute sets the route navigated to after success.
func WithListRoute(route string) Option {
	return func(p *Pipeline) {
		p.listRoute = route
	}
}

// WithFields overrides the scalar parts sent, in order.
func WithFields(fields ...string) Option {
	return func(p *Pipeline) {
		if len(fields) > 0 {
			p.fields = append([]string(nil), fields...)
		}
	}
}

// WithFileField overrides the part name shared by uploaded files.
func WithFileField(name string) Option {
	return func(p *Pipeline) {
		if name != "" {
			p.fileField = name
		}
	}
}

// WithName labels logs and metrics. Defaults to the endpoint.
func WithName(name string) Option {
	return func(p *Pipeline) {
		if name != "" {
			p.name = name
		}
	}
}

// WithIdempotencyKeys overrides the Idempotency-Key generator.
func WithIdempotencyKeys(next func() string) Option {
	return func(p *Pipeline) {
		if next != nil {
			p.newKey = next
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

func defaultKey() string {
	return uuid.NewString()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
