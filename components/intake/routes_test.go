package intake

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRegisterRoutesMountsUnderBasePath(t *testing.T) {
	f := newFixture(t)

	mux := http.NewServeMux()
	pattern, err := RegisterRoutes(mux, "qc/", f.handler)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if pattern != "/qc/" {
		t.Fatalf("expected /qc/, got %q", pattern)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/qc/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRegisterRoutesRequiresMux(t *testing.T) {
	if _, err := RegisterRoutes(nil, "/", http.NotFoundHandler()); err == nil {
		t.Fatalf("expected missing mux error")
	}
}

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"/compqc?selected=A-1": "/compqc?selected=A-1",
		"":                     "/",
		"https://evil.test":    "/",
		"//evil.test":          "/",
		`/\evil.test`:          "/",
	}
	for in, want := range cases {
		if got := safeNext(in); got != want {
			t.Fatalf("safeNext(%q): want %q, got %q", in, want, got)
		}
	}
}
