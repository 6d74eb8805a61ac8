package html_test

import (
	"context"
	"strings"
	"testing"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-intakeqc/pkg/form"
	"github.com/goliatone/go-intakeqc/pkg/render"
	"github.com/goliatone/go-intakeqc/pkg/renderers/html"
)

func newRenderer(t *testing.T) *html.Renderer {
	t.Helper()
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func renderPage(t *testing.T, page render.Page, opts render.RenderOptions) string {
	t.Helper()
	out, err := newRenderer(t).Render(context.Background(), page, opts)
	if err != nil {
		t.Fatalf("render %s: %v", page.Kind, err)
	}
	return string(out)
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Fatalf("expected output to contain %q\n%s", want, body)
		}
	}
}

func TestRenderListPage(t *testing.T) {
	body := renderPage(t, render.Page{
		Kind:  render.KindList,
		Title: "상품화 완료 QC",
		List: &render.ListView{
			Resource: "CompQC",
			Action:   "/compqc",
			Query:    "12가",
			Columns:  []render.Column{{Field: "CARNO", Label: "차량번호"}, {Field: "MODEL", Label: "모델"}},
			Rows: []render.Row{
				{AssetNo: "A-100", Cells: []string{"12가3456", "Avante"}, Href: "/compqc/A-100", Selected: true},
			},
			Total:     1,
			Selected:  "A-100",
			FetchedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}, render.RenderOptions{})

	assertContains(t, body,
		"<title>상품화 완료 QC</title>",
		`value="12가"`,
		`data-asset="A-100" aria-selected="true"`,
		`<a href="/compqc/A-100">12가3456</a>`,
		"1건",
		"2026-01-02 03:04:05",
		`href="/assets/intakeqc.css"`,
	)
}

func TestRenderListErrorAndEmpty(t *testing.T) {
	body := renderPage(t, render.Page{
		Kind:  render.KindList,
		Title: "재렌트 입고 QC",
		List:  &render.ListView{Action: "/inqcold", Error: "목록을 불러오지 못했습니다."},
	}, render.RenderOptions{})
	assertContains(t, body, `role="alert">목록을 불러오지 못했습니다.`)

	body = renderPage(t, render.Page{
		Kind:  render.KindList,
		Title: "재렌트 입고 QC",
		List:  &render.ListView{Action: "/inqcold", Columns: []render.Column{{Field: "CARNO", Label: "차량번호"}}},
	}, render.RenderOptions{})
	assertContains(t, body, "검색 결과가 없습니다.")
}

func TestRenderDetailPage(t *testing.T) {
	page := render.Page{
		Kind:        render.KindDetail,
		Title:       "상품화 완료 QC 상세 조회",
		Description: `<b>주의</b><script>alert(1)</script>`,
		Detail: &render.DetailView{
			Resource: "CompQC",
			AssetNo:  "A-100",
			Variant:  "extended",
			Summary:  []render.SummaryItem{{Label: "차량번호", Value: "12가3456"}},
			Fields: []form.Binding{
				{Name: "MILEAGE", Label: "주행 거리", Kind: "integer", Value: "31704", Required: true, Metadata: map[string]string{"unit": "km"}},
				{Name: "ENTRYLOCATION", Label: "입고 위치", Kind: "string", Value: "B-2", Required: true, Options: []string{"A-1", "B-2"}},
				{Name: "IMGLIST", Label: "사진", Kind: "file", Multiple: true, Metadata: map[string]string{"accept": "image/*"}},
			},
			Action:    "/compqc/A-100",
			Back:      "/compqc",
			CanSubmit: false,
		},
	}

	body := renderPage(t, page, render.RenderOptions{
		Hidden: map[string]string{"_csrf": "tok"},
		Errors: map[string][]string{"MILEAGE": {"숫자만 입력해주세요."}},
		Flash:  []render.Flash{{Level: render.FlashError, Message: "요청에 실패하였습니다."}},
	})

	assertContains(t, body,
		`<b>주의</b>`,
		`enctype="multipart/form-data"`,
		`<input type="hidden" name="_csrf" value="tok">`,
		`name="MILEAGE" value="31704"`,
		`inputmode="numeric"`,
		`<option value="B-2" selected>`,
		`type="file" name="IMGLIST" multiple accept="image/*"`,
		"숫자만 입력해주세요.",
		`iqc-flash--error`,
		"요청에 실패하였습니다.",
		" disabled>저장</button>",
	)
	if strings.Contains(body, "<script>alert") {
		t.Fatalf("expected description to be sanitised\n%s", body)
	}
	if page.Detail.Fields[0].Errors != nil {
		t.Fatalf("render must not mutate the page bindings")
	}
}

func TestRenderAppliesTheme(t *testing.T) {
	body := renderPage(t, render.Page{Kind: render.KindMessage, Title: "오류", Message: "해당 데이터가 없습니다.", Status: 404}, render.RenderOptions{
		Theme: &theme.RendererConfig{
			Theme:   "intakeqc",
			Variant: "dark",
			CSSVars: map[string]string{"--iqc-brand": "#123456"},
			AssetURL: func(key string) string {
				if key == html.AssetStylesheet {
					return "/themes/intakeqc/dark.css"
				}
				return ""
			},
		},
	})

	assertContains(t, body,
		`class="iqc iqc--dark"`,
		`style="--iqc-brand: #123456;"`,
		`href="/themes/intakeqc/dark.css"`,
		`src="/assets/intakeqc.js"`,
		"해당 데이터가 없습니다.",
	)
}

func TestRenderRequiresKind(t *testing.T) {
	if _, err := newRenderer(t).Render(context.Background(), render.Page{}, render.RenderOptions{}); err == nil {
		t.Fatalf("expected error for page without kind")
	}
}
