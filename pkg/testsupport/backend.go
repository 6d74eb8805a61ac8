package testsupport

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// UploadedFile is a file part received by Backend.
type UploadedFile struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Submission is one multipart POST received by Backend.
type Submission struct {
	Path           string
	Authorization  string
	IdempotencyKey string
	FieldOrder     []string
	Fields         map[string]string
	Files          []UploadedFile
}

// Backend fakes the intake API: GET serves configured envelopes, POST records
// multipart submissions and answers with the configured status.
type Backend struct {
	Server *httptest.Server

	mu           sync.Mutex
	envelopes    map[string]string
	listStatus   map[string]int
	listHits     map[string]int
	listToken    string
	submitStatus int
	submissions  []Submission
}

// NewBackend starts a backend closed at test cleanup.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		envelopes:    make(map[string]string),
		listStatus:   make(map[string]int),
		listHits:     make(map[string]int),
		submitStatus: http.StatusOK,
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the base URL.
func (b *Backend) URL() string { return b.Server.URL }

// Client returns a client for the backend.
func (b *Backend) Client() *http.Client { return b.Server.Client() }

// SetEnvelope serves body for GET path.
func (b *Backend) SetEnvelope(path, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.envelopes[path] = body
}

// SetListStatus makes GET path fail with code.
func (b *Backend) SetListStatus(path string, code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listStatus[path] = code
}

// SetSubmitStatus sets the status answered to POSTs.
func (b *Backend) SetSubmitStatus(code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submitStatus = code
}

// RequireToken makes list requests without "Bearer token" answer 401.
func (b *Backend) RequireToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listToken = token
}

// ListHits returns how often GET path was served.
func (b *Backend) ListHits(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listHits[path]
}

// Submissions returns the POSTs received so far.
func (b *Backend) Submissions() []Submission {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Submission(nil), b.submissions...)
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		b.serveList(w, r)
	case http.MethodPost:
		b.serveSubmit(w, r)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (b *Backend) serveList(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.listHits[r.URL.Path]++
	body, ok := b.envelopes[r.URL.Path]
	status := b.listStatus[r.URL.Path]
	token := b.listToken
	b.mu.Unlock()

	if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = io.WriteString(w, body)
}

func (b *Backend) serveSubmit(w http.ResponseWriter, r *http.Request) {
	sub := Submission{
		Path:           r.URL.Path,
		Authorization:  r.Header.Get("Authorization"),
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
		Fields:         make(map[string]string),
	}

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		http.Error(w, "expected multipart body", http.StatusBadRequest)
		return
	}
	reader := multipart.NewReader(r.Body, params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(part)
		if part.FileName() != "" {
			sub.Files = append(sub.Files, UploadedFile{
				Field:       part.FormName(),
				Name:        part.FileName(),
				ContentType: part.Header.Get("Content-Type"),
				Data:        data,
			})
			continue
		}
		sub.FieldOrder = append(sub.FieldOrder, part.FormName())
		sub.Fields[part.FormName()] = string(data)
	}

	b.mu.Lock()
	b.submissions = append(b.submissions, sub)
	status := b.submitStatus
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, `{"ok":true}`)
}
