// Package submit posts a completed intake form to the API as multipart data
// and drives the follow-up: one notification, a list reload and navigation
// back to the listing on success.
package submit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-intakeqc/pkg/credentials"
	"github.com/goliatone/go-intakeqc/pkg/form"
	"github.com/goliatone/go-intakeqc/pkg/model"
	"github.com/goliatone/go-intakeqc/pkg/qcform"
	"github.com/goliatone/go-intakeqc/pkg/validation"
)

// HeaderIdempotencyKey is sent with every submission.
const HeaderIdempotencyKey = "Idempotency-Key"

// Request is one submission.
type Request struct {
	AssetNo string
	Values  map[string]string
	Files   []form.File
	// Form, when set, is validated before anything is sent.
	Form model.FormModel
}

// Pipeline submits forms for one resource.
type Pipeline struct {
	client      *http.Client
	baseURL     string
	endpoint    string
	name        string
	listRoute   string
	fields      []string
	fileField   string
	creds       credentials.Provider
	revalidator Revalidator
	observer    Observer
	logger      *slog.Logger
	newKey      func() string
	now         func() time.Time

	inflight *inflightSet
}

// New builds a pipeline posting to {baseURL}/{endpoint}/{assetNo}.
func New(baseURL, endpoint string, opts ...Option) *Pipeline {
	p := &Pipeline{
		client:    http.DefaultClient,
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		endpoint:  strings.Trim(strings.TrimSpace(endpoint), "/"),
		fields:    qcform.SubmitFields(),
		fileField: qcform.FieldImages,
		logger:    discardLogger(),
		newKey:    defaultKey,
		now:       time.Now,
		inflight:  &inflightSet{keys: make(map[string]struct{})},
	}
	p.name = p.endpoint
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

// WithCredentials returns a copy bound to creds. Copies share the in-flight
// guard of the original.
func (p *Pipeline) WithCredentials(creds credentials.Provider) *Pipeline {
	clone := *p
	clone.creds = creds
	return &clone
}

// WithList returns a copy that revalidates r after success instead of the
// configured revalidator. Copies share the in-flight guard of the original.
func (p *Pipeline) WithList(r Revalidator) *Pipeline {
	clone := *p
	clone.revalidator = r
	return &clone
}

// URL returns the submission endpoint for assetNo.
func (p *Pipeline) URL(assetNo string) string {
	return p.baseURL + "/" + p.endpoint + "/" + url.PathEscape(assetNo)
}

// ListRoute returns the route navigated to after success.
func (p *Pipeline) ListRoute() string { return p.listRoute }

// Submit sends req. Invalid values return *ValidationError before any side
// effect. A second call for the same record while one is running returns
// ErrInFlight. Any other failure shows exactly one error notification and
// returns an error matching ErrSubmitFailed; the caller keeps its values.
// Success shows one success notification, revalidates the list once and
// navigates to the list route.
func (p *Pipeline) Submit(ctx context.Context, req Request, hooks Hooks) error {
	assetNo := strings.TrimSpace(req.AssetNo)
	if assetNo == "" {
		return ErrAssetRequired
	}
	if len(req.Form.Fields) > 0 {
		if result := validation.Validate(req.Form, req.Values); !result.Valid {
			return &ValidationError{Result: result}
		}
	}

	key := p.endpoint + "/" + assetNo
	if !p.inflight.acquire(key) {
		p.observe("rejected", 0)
		return ErrInFlight
	}
	defer p.inflight.release(key)

	start := p.now()
	status, err := p.send(ctx, assetNo, req)
	elapsed := p.now().Sub(start)

	if err != nil {
		p.observe("error", elapsed)
		p.logger.Warn("submit: request failed",
			"resource", p.name,
			"asset", assetNo,
			"status", status,
			"error", err,
		)
		hooks.notify(ctx, LevelError, MessageFailure)
		return &Error{Status: status, Err: err}
	}

	p.observe("ok", elapsed)
	p.logger.Info("submit: stored", "resource", p.name, "asset", assetNo, "elapsed", elapsed)
	hooks.notify(ctx, LevelSuccess, MessageSuccess)
	if p.revalidator != nil {
		p.revalidator.Revalidate(context.WithoutCancel(ctx))
	}
	hooks.navigate(ctx, p.listRoute)
	return nil
}

func (p *Pipeline) send(ctx context.Context, assetNo string, req Request) (int, error) {
	authorization, err := credentials.Bearer(ctx, p.creds, p.now())
	if err != nil {
		return 0, err
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := writeParts(writer, p.fields, p.fileField, req.Values, req.Files)
		if err == nil {
			err = writer.Close()
		}
		pw.CloseWithError(err)
		return err
	})

	var status int
	g.Go(func() error {
		httpReq, err := http.NewRequestWithContext(gctx, http.MethodPost, p.URL(assetNo), pr)
		if err != nil {
			pr.CloseWithError(err)
			return fmt.Errorf("submit: build request: %w", err)
		}
		httpReq.Header.Set("Content-Type", writer.FormDataContentType())
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set("Authorization", authorization)
		httpReq.Header.Set(HeaderIdempotencyKey, p.newKey())

		resp, err := p.client.Do(httpReq)
		if err != nil {
			pr.CloseWithError(err)
			return fmt.Errorf("submit: %w", err)
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

		status = resp.StatusCode
		if status < 200 || status > 299 {
			return fmt.Errorf("submit: unexpected status %d", status)
		}
		return nil
	})

	err = g.Wait()
	return status, err
}

// WritePayload writes the multipart body for values and files to w and
// returns its content type. Every field in fields gets a part, empty when
// unset; files share the fileField part name.
func WritePayload(w io.Writer, fields []string, fileField string, values map[string]string, files []form.File) (string, error) {
	writer := multipart.NewWriter(w)
	if err := writeParts(writer, fields, fileField, values, files); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("submit: close payload: %w", err)
	}
	return writer.FormDataContentType(), nil
}

func writeParts(writer *multipart.Writer, fields []string, fileField string, values map[string]string, files []form.File) error {
	for _, name := range fields {
		if err := writer.WriteField(name, values[name]); err != nil {
			return fmt.Errorf("submit: write field %s: %w", name, err)
		}
	}
	for _, file := range files {
		if err := writeFile(writer, fileField, file); err != nil {
			return err
		}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(writer *multipart.Writer, field string, file form.File) error {
	if file.Open == nil {
		return fmt.Errorf("submit: file %q has no content", file.Name)
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(file.Name)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("submit: create part %s: %w", file.Name, err)
	}
	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("submit: open %s: %w", file.Name, err)
	}
	defer rc.Close()
	if _, err := io.Copy(part, rc); err != nil {
		return fmt.Errorf("submit: copy %s: %w", file.Name, err)
	}
	return nil
}

func (p *Pipeline) observe(outcome string, elapsed time.Duration) {
	if p.observer != nil {
		p.observer.ObserveSubmit(p.name, outcome, elapsed)
	}
}

type inflightSet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func (s *inflightSet) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.keys[key]; busy {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

func (s *inflightSet) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
}

// IsInvalid reports whether err is a *ValidationError and returns it.
func IsInvalid(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
