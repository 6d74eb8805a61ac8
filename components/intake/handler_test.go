package intake

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intakeqc"
	"github.com/goliatone/go-intakeqc/internal/config"
	"github.com/goliatone/go-intakeqc/pkg/credentials"
	"github.com/goliatone/go-intakeqc/pkg/metrics"
	"github.com/goliatone/go-intakeqc/pkg/submit"
	"github.com/goliatone/go-intakeqc/pkg/testsupport"
)

const (
	compQCListPath = "/CompQC/D"
	csrfValue      = "csrf-test-token"
)

type fixture struct {
	backend *testsupport.Backend
	handler http.Handler
}

func newFixture(t *testing.T, fns ...OptionFn) fixture {
	t.Helper()
	backend := testsupport.NewBackend(t)
	backend.SetEnvelope(compQCListPath, testsupport.CompQCEnvelope)

	cfg := config.Default()
	cfg.API.BaseURL = backend.URL()
	app, err := intakeqc.New(cfg,
		intakeqc.WithHTTPClient(backend.Client()),
		intakeqc.WithMetrics(metrics.New(metrics.DefaultConfig())),
	)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	sealer, err := credentials.NewSealer([]byte("0123456789abcdef-session"))
	if err != nil {
		t.Fatalf("sealer: %v", err)
	}
	component, err := New(app, append([]OptionFn{WithSealer(sealer)}, fns...)...)
	if err != nil {
		t.Fatalf("new component: %v", err)
	}
	return fixture{backend: backend, handler: component.Handler()}
}

func (f fixture) do(req *http.Request, cookies ...*http.Cookie) *http.Response {
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec.Result()
}

func (f fixture) get(target string, cookies ...*http.Cookie) (*http.Response, string) {
	res := f.do(httptest.NewRequest(http.MethodGet, target, nil), cookies...)
	return res, readBody(res)
}

func readBody(res *http.Response) string {
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(res.Body)
	return buf.String()
}

func cookieNamed(res *http.Response, name string) *http.Cookie {
	for _, cookie := range res.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func csrfCookie() *http.Cookie {
	return &http.Cookie{Name: DefaultOptions().CSRFCookie, Value: csrfValue}
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for name, content := range files {
		part, err := writer.CreateFormFile("IMGLIST", name)
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		_, _ = part.Write([]byte(content))
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// signIn stores token through the session form and returns the session cookie.
func signIn(t *testing.T, f fixture, token string) *http.Cookie {
	t.Helper()
	res := f.do(formRequest("/session", url.Values{"_csrf": {csrfValue}, "token": {token}}), csrfCookie())
	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("sign in: expected 303, got %d: %s", res.StatusCode, readBody(res))
	}
	cookie := cookieNamed(res, DefaultOptions().SessionCookie)
	if cookie == nil || cookie.Value == "" {
		t.Fatalf("sign in: expected session cookie")
	}
	if strings.Contains(cookie.Value, token) {
		t.Fatalf("session cookie must not carry the raw token")
	}
	return cookie
}

func TestIndexLinksResources(t *testing.T) {
	f := newFixture(t)

	res, body := f.get("/")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	for _, want := range []string{`href="/compqc"`, `href="/inqcold"`, `href="/LOCSET"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in index:\n%s", want, body)
		}
	}
}

func TestListRendersRows(t *testing.T) {
	f := newFixture(t)

	res, body := f.get("/compqc?q=3456")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html, got %q", ct)
	}
	if !strings.Contains(body, "12가3456") || strings.Contains(body, "34나7890") {
		t.Fatalf("expected only the matching plate:\n%s", body)
	}
	if cookieNamed(res, DefaultOptions().CSRFCookie) == nil {
		t.Fatalf("expected csrf cookie to be issued")
	}
}

func TestListConfirmFollowsSelection(t *testing.T) {
	f := newFixture(t)

	_, body := f.get("/compqc")
	if !strings.Contains(body, `<button type="button" class="iqc-button iqc-confirm" disabled>입력</button>`) {
		t.Fatalf("expected disabled confirm without selection:\n%s", body)
	}

	_, body = f.get("/compqc?selected=A-200")
	if !strings.Contains(body, `<a class="iqc-button iqc-confirm" href="/compqc/A-200">입력</a>`) {
		t.Fatalf("expected confirm link for A-200:\n%s", body)
	}
	if strings.Contains(body, "disabled>입력") {
		t.Fatalf("confirm must be enabled once a row is selected")
	}

	_, body = f.get("/compqc?selected=missing")
	if !strings.Contains(body, "iqc-confirm\" disabled>") {
		t.Fatalf("stale selection must leave confirm disabled:\n%s", body)
	}
}

func TestListRendersJSON(t *testing.T) {
	f := newFixture(t)

	res, body := f.get("/compqc?format=json&selected=A-200")
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected json, got %q", ct)
	}

	var doc struct {
		Kind string `json:"kind"`
		List struct {
			Selected string `json:"selected"`
			Rows     []struct {
				AssetNo string `json:"assetNo"`
				Href    string `json:"href"`
			} `json:"rows"`
		} `json:"list"`
	}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatalf("decode: %v\n%s", err, body)
	}
	if doc.Kind != "list" || doc.List.Selected != "A-200" || len(doc.List.Rows) != 2 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.List.Rows[1].Href != "/compqc/A-200" {
		t.Fatalf("expected selected row to link to detail, got %q", doc.List.Rows[1].Href)
	}
}

func TestListFetchFailureIsBlocking(t *testing.T) {
	f := newFixture(t)
	f.backend.SetListStatus(compQCListPath, http.StatusInternalServerError)

	res, body := f.get("/compqc")
	if res.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", res.StatusCode)
	}
	if !strings.Contains(body, intakeqc.MessageFetchFailed) || strings.Contains(body, "<table") {
		t.Fatalf("expected error without table:\n%s", body)
	}
}

func TestListCacheIsScopedToToken(t *testing.T) {
	f := newFixture(t)
	f.backend.RequireToken("user-a")

	userA := signIn(t, f, "user-a")
	res, body := f.get("/compqc", userA)
	if res.StatusCode != http.StatusOK || !strings.Contains(body, "12가3456") {
		t.Fatalf("expected user A to see the list, got %d:\n%s", res.StatusCode, body)
	}

	res, body = f.get("/compqc")
	if res.StatusCode != http.StatusBadGateway {
		t.Fatalf("anonymous list: expected 502, got %d", res.StatusCode)
	}
	if strings.Contains(body, "12가3456") {
		t.Fatalf("anonymous list must not show cached rows:\n%s", body)
	}

	res, body = f.get("/compqc/A-100")
	if res.StatusCode != http.StatusBadGateway || strings.Contains(body, "KMH0001") {
		t.Fatalf("anonymous detail leaked cached record (%d):\n%s", res.StatusCode, body)
	}

	userB := signIn(t, f, "user-b")
	res, body = f.get("/compqc", userB)
	if res.StatusCode != http.StatusBadGateway || strings.Contains(body, "12가3456") {
		t.Fatalf("user B must not see user A's list (%d):\n%s", res.StatusCode, body)
	}

	if res, _ := f.get("/compqc", userA); res.StatusCode != http.StatusOK {
		t.Fatalf("expected user A's cache to survive, got %d", res.StatusCode)
	}
	if hits := f.backend.ListHits(compQCListPath); hits != 3 {
		t.Fatalf("expected one request per credential, got %d", hits)
	}
}

func TestUnknownRoutesAnswerNotFound(t *testing.T) {
	f := newFixture(t)

	for _, target := range []string{"/nope", "/compqc/missing", "/a/b/c"} {
		res, body := f.get(target)
		if res.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", target, res.StatusCode)
		}
		if !strings.Contains(body, intakeqc.MessageNotFound) {
			t.Fatalf("%s: expected not found message:\n%s", target, body)
		}
	}
}

func TestDetailRendersForm(t *testing.T) {
	f := newFixture(t)

	res, body := f.get("/compqc/A-100", csrfCookie())
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.StatusCode, body)
	}
	for _, want := range []string{
		`name="_csrf" value="` + csrfValue + `"`,
		`enctype="multipart/form-data"`,
		`name="KEYQUANT"`,
		`value="31704"`,
		`data-variant="extended"`,
		`<strong>전면, 후면, 계기판</strong>`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in detail:\n%s", want, body)
		}
	}
	if cookieNamed(res, DefaultOptions().CSRFCookie) != nil {
		t.Fatalf("existing csrf cookie must be reused")
	}
}

func TestSubmitRejectsMissingCSRF(t *testing.T) {
	f := newFixture(t)
	session := signIn(t, f, "token-1")

	req := multipartRequest(t, "/compqc/A-200", map[string]string{
		"_csrf":         "wrong",
		"MILEAGE":       "10",
		"ENTRYLOCATION": "A-1",
	}, nil)
	res := f.do(req, session, csrfCookie())
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.StatusCode)
	}
	if len(f.backend.Submissions()) != 0 {
		t.Fatalf("expected no submission")
	}
}

func TestSubmitInvalidRerendersWithErrors(t *testing.T) {
	f := newFixture(t)
	session := signIn(t, f, "token-1")

	req := multipartRequest(t, "/compqc/A-200", map[string]string{
		"_csrf":   csrfValue,
		"MILEAGE": "abc",
	}, nil)
	res := f.do(req, session, csrfCookie())
	body := readBody(res)
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", res.StatusCode)
	}
	if !strings.Contains(body, "주행 거리는 0 이상의 정수만 입력할 수 있습니다.") {
		t.Fatalf("expected mileage message:\n%s", body)
	}
	if !strings.Contains(body, `value="abc"`) {
		t.Fatalf("expected entered value to be kept:\n%s", body)
	}
	if len(f.backend.Submissions()) != 0 {
		t.Fatalf("expected no submission for invalid values")
	}
}

func TestSubmitSuccessRedirectsWithFlash(t *testing.T) {
	f := newFixture(t)
	session := signIn(t, f, "token-1")

	req := multipartRequest(t, "/compqc/A-200", map[string]string{
		"_csrf":         csrfValue,
		"MILEAGE":       "1200",
		"ENTRYLOCATION": "A-1",
		"KEYLOCATION":   "front desk",
	}, map[string]string{"front.jpg": "jpeg-bytes"})
	res := f.do(req, session, csrfCookie())
	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", res.StatusCode, readBody(res))
	}
	if loc := res.Header.Get("Location"); loc != "/compqc" {
		t.Fatalf("expected redirect to list, got %q", loc)
	}

	subs := f.backend.Submissions()
	if len(subs) != 1 {
		t.Fatalf("expected one submission, got %d", len(subs))
	}
	if subs[0].Authorization != "Bearer token-1" {
		t.Fatalf("expected session token, got %q", subs[0].Authorization)
	}
	if diff := cmp.Diff("1200", subs[0].Fields["MILEAGE"]); diff != "" {
		t.Fatalf("mileage mismatch (-want +got):\n%s", diff)
	}
	if len(subs[0].Files) != 1 || subs[0].Files[0].Name != "front.jpg" {
		t.Fatalf("expected uploaded file, got %+v", subs[0].Files)
	}

	flash := cookieNamed(res, DefaultOptions().FlashCookie)
	if flash == nil {
		t.Fatalf("expected flash cookie")
	}
	_, body := f.get("/compqc", flash)
	if !strings.Contains(body, submit.MessageSuccess) {
		t.Fatalf("expected success flash on the list:\n%s", body)
	}
}

func TestSubmitFailureKeepsValues(t *testing.T) {
	f := newFixture(t)
	f.backend.SetSubmitStatus(http.StatusInternalServerError)
	session := signIn(t, f, "token-1")

	req := multipartRequest(t, "/compqc/A-200", map[string]string{
		"_csrf":         csrfValue,
		"MILEAGE":       "1200",
		"ENTRYLOCATION": "A-1",
		"KEYLOCATION":   "locker 7",
	}, nil)
	res := f.do(req, session, csrfCookie())
	body := readBody(res)
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected backend status, got %d", res.StatusCode)
	}
	if !strings.Contains(body, submit.MessageFailure) {
		t.Fatalf("expected failure flash:\n%s", body)
	}
	if !strings.Contains(body, `value="locker 7"`) {
		t.Fatalf("expected entered values to be kept:\n%s", body)
	}
}

func TestSubmitWithoutSessionFails(t *testing.T) {
	f := newFixture(t)

	req := multipartRequest(t, "/compqc/A-200", map[string]string{
		"_csrf":         csrfValue,
		"MILEAGE":       "1200",
		"ENTRYLOCATION": "A-1",
	}, nil)
	res := f.do(req, csrfCookie())
	body := readBody(res)
	if res.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", res.StatusCode)
	}
	if !strings.Contains(body, submit.MessageFailure) {
		t.Fatalf("expected failure flash:\n%s", body)
	}
	if len(f.backend.Submissions()) != 0 {
		t.Fatalf("expected no request without credentials")
	}
}

func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t)

	res := f.do(formRequest("/session", url.Values{"_csrf": {csrfValue}, "token": {"  "}}), csrfCookie())
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty token, got %d", res.StatusCode)
	}

	session := signIn(t, f, "token-1")
	_, body := f.get("/session", session)
	if !strings.Contains(body, "로그인 되어 있습니다.") {
		t.Fatalf("expected signed-in state:\n%s", body)
	}

	res = f.do(formRequest("/session/logout", url.Values{"_csrf": {csrfValue}}), session, csrfCookie())
	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", res.StatusCode)
	}
	cleared := cookieNamed(res, DefaultOptions().SessionCookie)
	if cleared == nil || cleared.MaxAge >= 0 {
		t.Fatalf("expected session cookie to be cleared, got %+v", cleared)
	}
}

func TestSessionRedirectStaysLocal(t *testing.T) {
	f := newFixture(t)

	res := f.do(formRequest("/session", url.Values{
		"_csrf": {csrfValue},
		"token": {"token-1"},
		"next":  {"//evil.example/steal"},
	}), csrfCookie())
	if loc := res.Header.Get("Location"); loc != "/" {
		t.Fatalf("expected local redirect, got %q", loc)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)
	f.get("/compqc")

	res, body := f.get("/healthz")
	if res.StatusCode != http.StatusOK || !strings.Contains(body, `"ok"`) {
		t.Fatalf("unexpected health response %d %s", res.StatusCode, body)
	}

	res, body = f.get("/metrics")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	for _, want := range []string{"intakeqc_http_requests_total", `route="/{route}"`, "intakeqc_fetches_total"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in metrics:\n%s", want, body)
		}
	}
}

func TestAssetsAreServed(t *testing.T) {
	f := newFixture(t)

	res, body := f.get("/assets/intakeqc.css")
	if res.StatusCode != http.StatusOK || body == "" {
		t.Fatalf("expected stylesheet, got %d", res.StatusCode)
	}
}

func TestGuardRejects(t *testing.T) {
	f := newFixture(t, WithGuard(func(r *http.Request) error {
		if r.Header.Get("X-Allowed") == "" {
			return StatusError{Code: http.StatusUnauthorized, Err: errors.New("denied")}
		}
		return nil
	}))

	res, _ := f.get("/compqc")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/compqc", nil)
	req.Header.Set("X-Allowed", "1")
	if res := f.do(req); res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with guard satisfied, got %d", res.StatusCode)
	}

	if res, _ := f.get("/healthz"); res.StatusCode != http.StatusOK {
		t.Fatalf("health must bypass the guard, got %d", res.StatusCode)
	}
}

func TestNewRequiresSealer(t *testing.T) {
	cfg := config.Default()
	cfg.API.BaseURL = "http://example.test"
	app, err := intakeqc.New(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if _, err := New(app); !errors.Is(err, ErrMissingSealer) {
		t.Fatalf("expected ErrMissingSealer, got %v", err)
	}
}
