package pongo_test

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-intakeqc/pkg/render/template/pongo"
	"github.com/goliatone/go-intakeqc/pkg/testsupport"
)

var templates = fstest.MapFS{
	"hello.tmpl":  {Data: []byte(`Hello {{ name|trim }}!`)},
	"global.tmpl": {Data: []byte(`{{ settings.env }}/{{ page.title }}`)},
	"style.tmpl":  {Data: []byte(`<div style="{{ vars|cssvars }}"></div>`)},
	"when.tmpl":   {Data: []byte(`{{ at|datetime }}|{{ zero|datetime }}|{{ at|datetime:"15:04" }}`)},
	"shout.tmpl":  {Data: []byte(`{{ name|intakeqc_shout }}`)},
}

func newEngine(t *testing.T, opts ...pongo.Option) *pongo.Engine {
	t.Helper()
	engine, err := pongo.New(append([]pongo.Option{pongo.WithFS(templates)}, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestRenderWritesAndReturns(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.Render("hello", map[string]any{"name": "  Ada "}, w)
	})
	if result != "Hello Ada!" || written != result {
		t.Fatalf("unexpected output result=%q written=%q", result, written)
	}
}

func TestStructDataUsesJSONNames(t *testing.T) {
	type page struct {
		Title string `json:"title"`
	}
	engine := newEngine(t, pongo.WithGlobalData(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}))

	got, err := engine.Render("global.tmpl", struct {
		Page page `json:"page"`
	}{Page: page{Title: "재렌트 입고 QC"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "staging/재렌트 입고 QC" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestBuiltinFilters(t *testing.T) {
	engine := newEngine(t)

	style, err := engine.Render("style", map[string]any{
		"vars": map[string]string{"--brand": "#123456", "--accent": "#fff", "plain": "x"},
	})
	if err != nil {
		t.Fatalf("render style: %v", err)
	}
	if style != `<div style="--accent: #fff; --brand: #123456;"></div>` {
		t.Fatalf("unexpected style output %q", style)
	}

	at := time.Date(2026, 3, 4, 9, 5, 0, 0, time.FixedZone("KST", 9*3600))
	when, err := engine.Render("when", map[string]any{"at": at, "zero": time.Time{}})
	if err != nil {
		t.Fatalf("render when: %v", err)
	}
	if when != "2026-03-04 09:05:00||09:05" {
		t.Fatalf("unexpected datetime output %q", when)
	}
}

func TestRegisterFilter(t *testing.T) {
	engine := newEngine(t)
	shout := func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	}
	if err := engine.RegisterFilter("intakeqc_shout", shout); err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("intakeqc_shout", shout); err == nil {
		t.Fatalf("expected duplicate filter registration to fail")
	}

	got, err := engine.Render("shout", map[string]any{"name": "ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "ADA!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderStringAndErrors(t *testing.T) {
	engine := newEngine(t)

	got, err := engine.RenderString(`{{ a }}-{{ b }}`, map[string]any{"a": 1, "b": "x"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "1-x" {
		t.Fatalf("unexpected output %q", got)
	}

	if _, err := engine.Render("missing", nil); err == nil {
		t.Fatalf("expected missing template error")
	}
	if _, err := engine.Render("hello", []string{"not", "an", "object"}); err == nil {
		t.Fatalf("expected non-object data to fail")
	}
	if _, err := pongo.New(); err == nil {
		t.Fatalf("expected New without sources to fail")
	}
}
