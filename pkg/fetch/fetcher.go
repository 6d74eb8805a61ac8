// Package fetch loads an intake list envelope over HTTP and keeps the latest
// {data, loading, error} state for it.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-intakeqc/pkg/credentials"
	"github.com/goliatone/go-intakeqc/pkg/envelope"
)

const maxBodyBytes = 32 << 20

// State is a snapshot of the fetcher. Loading stays true until the first
// request resolves. After a failure Raw is nil and Err is set.
type State struct {
	Raw          envelope.Raw
	Loading      bool
	Revalidating bool
	Err          error
	FetchedAt    time.Time
}

// Response normalises the snapshot's envelope.
func (s State) Response(keys ...string) envelope.Response {
	return envelope.Normalize(s.Raw, keys...)
}

// Ready reports whether data is available.
func (s State) Ready() bool {
	return !s.Loading && s.Err == nil && s.Raw != nil
}

// Fetcher issues GET requests against one URL. Every request gets its own
// cancellable context and generation; starting a request cancels the previous
// one and responses from superseded generations are dropped.
type Fetcher struct {
	url      string
	name     string
	client   *http.Client
	creds    credentials.Provider
	logger   *slog.Logger
	observer Observer
	maxAge   time.Duration
	now      func() time.Time

	group singleflight.Group

	mu       sync.Mutex
	state    State
	resolved bool
	gen      uint64
	cancel   context.CancelFunc
	settled  chan struct{}
}

// New constructs a fetcher for url.
func New(url string, opts ...Option) *Fetcher {
	f := &Fetcher{
		url:    strings.TrimSpace(url),
		name:   "list",
		client: http.DefaultClient,
		logger: discardLogger(),
		now:    time.Now,
		state:  State{Loading: true},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f
}

// URL returns the endpoint.
func (f *Fetcher) URL() string { return f.url }

// Name returns the label used in logs and metrics.
func (f *Fetcher) Name() string { return f.name }

// State returns the current snapshot without issuing a request.
func (f *Fetcher) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Load returns the cached state once resolved, issuing the first request
// otherwise. Concurrent first callers share one request, which is detached
// from any single caller's cancellation.
func (f *Fetcher) Load(ctx context.Context) State {
	f.mu.Lock()
	if f.resolved && !f.expiredLocked() {
		state := f.state
		f.mu.Unlock()
		return state
	}
	f.mu.Unlock()

	ch := f.group.DoChan("load", func() (any, error) {
		return f.run(context.WithoutCancel(ctx)), nil
	})
	select {
	case res := <-ch:
		return res.Val.(State)
	case <-ctx.Done():
		state := f.State()
		state.Err = ctx.Err()
		return state
	}
}

// Revalidate always issues a new request, cancelling any request in flight.
func (f *Fetcher) Revalidate(ctx context.Context) State {
	return f.run(ctx)
}

func (f *Fetcher) expiredLocked() bool {
	if f.maxAge <= 0 || f.state.FetchedAt.IsZero() {
		return false
	}
	return f.now().Sub(f.state.FetchedAt) > f.maxAge
}

func (f *Fetcher) run(ctx context.Context) State {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
		close(f.settled)
	}
	f.gen++
	gen := f.gen
	reqCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.settled = make(chan struct{})
	if f.resolved {
		f.state.Revalidating = true
	}
	f.mu.Unlock()
	defer cancel()

	start := f.now()
	raw, err := f.do(reqCtx)
	elapsed := f.now().Sub(start)

	f.mu.Lock()
	if gen != f.gen {
		f.observe("stale", elapsed)
		f.logger.Debug("fetch: dropped superseded response", "resource", f.name, "generation", gen)
		f.mu.Unlock()
		return f.await(ctx)
	}
	defer f.mu.Unlock()
	f.cancel = nil
	close(f.settled)

	if err != nil && (ctx.Err() != nil || errors.Is(err, context.Canceled)) {
		f.state.Revalidating = false
		f.observe("canceled", elapsed)
		state := f.state
		state.Err = err
		return state
	}

	f.resolved = true
	f.state = State{FetchedAt: f.now()}
	if err != nil {
		f.state.Err = err
		f.observe("error", elapsed)
		f.logger.Warn("fetch: request failed", "resource", f.name, "url", f.url, "error", err)
		return f.state
	}
	f.state.Raw = raw
	f.observe("ok", elapsed)
	f.logger.Debug("fetch: loaded", "resource", f.name, "elapsed", elapsed)
	return f.state
}

// await returns the state left by the request that superseded the caller's.
// Until the list has resolved once it waits for that request, so a
// superseded caller never sees the loading placeholder.
func (f *Fetcher) await(ctx context.Context) State {
	for {
		f.mu.Lock()
		if f.resolved || f.cancel == nil {
			state := f.state
			f.mu.Unlock()
			return state
		}
		settled := f.settled
		f.mu.Unlock()

		select {
		case <-settled:
		case <-ctx.Done():
			state := f.State()
			state.Err = ctx.Err()
			return state
		}
	}
}

func (f *Fetcher) observe(outcome string, elapsed time.Duration) {
	if f.observer != nil {
		f.observer.ObserveFetch(f.name, outcome, elapsed)
	}
}

func (f *Fetcher) do(ctx context.Context) (envelope.Raw, error) {
	if f.url == "" {
		return nil, ErrNoURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if f.creds != nil {
		header, err := credentials.Bearer(ctx, f.creds, f.now())
		switch {
		case err == nil:
			req.Header.Set("Authorization", header)
		case errors.Is(err, credentials.ErrNoToken):
		default:
			return nil, err
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, StatusError{Code: resp.StatusCode, Err: ErrStatus}
	}

	body, err := decodeBody(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}
	return envelope.Decode(data)
}

// decodeBody converts bodies declaring a non UTF-8 charset (EUC-KR from older
// intake servers) to UTF-8.
func decodeBody(body io.Reader, contentType string) (io.Reader, error) {
	if contentType == "" {
		return body, nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body, nil
	}
	label := strings.TrimSpace(params["charset"])
	if label == "" || strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "utf8") {
		return body, nil
	}
	reader, err := charset.NewReaderLabel(label, body)
	if err != nil {
		return nil, fmt.Errorf("fetch: charset %q: %w", label, err)
	}
	return reader, nil
}
