package tui

import (
	"context"
	"testing"

	"github.com/goliatone/go-intakeqc/pkg/form"
	"github.com/goliatone/go-intakeqc/pkg/render"
)

func TestTextRenderer_List(t *testing.T) {
	r := New(WithTheme(Theme{ErrorPrefix: "!", SuccessPrefix: "+"}))
	out, err := r.Render(context.Background(), render.Page{
		Kind:  render.KindList,
		Title: "재렌트 입고 QC",
		List: &render.ListView{
			Columns: []render.Column{{Field: "CARNO", Label: "차량번호"}, {Field: "CNAME", Label: "고객명"}},
			Rows: []render.Row{
				{AssetNo: "A-100", Cells: []string{"12가3456", "홍길동"}, Selected: true},
				{AssetNo: "A-2", Cells: []string{"34나7890", "김"}},
			},
			Total: 2,
		},
	}, render.RenderOptions{Flash: []render.Flash{{Level: render.FlashSuccess, Message: "완료되었습니다."}}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := "재렌트 입고 QC\n" +
		"==============\n" +
		"+ 완료되었습니다.\n" +
		"   ASSETNO  차량번호  고객명\n" +
		"*  A-100    12가3456  홍길동\n" +
		"   A-2      34나7890  김\n" +
		"2건\n"
	if string(out) != want {
		t.Fatalf("unexpected output\nwant:\n%s\ngot:\n%s", want, out)
	}
}

func TestTextRenderer_DetailShowsErrors(t *testing.T) {
	r := New(WithTheme(Theme{ErrorPrefix: "!"}))
	out, err := r.Render(context.Background(), render.Page{
		Kind: render.KindDetail,
		Detail: &render.DetailView{
			Summary: []render.SummaryItem{{Label: "CARNO", Value: "12가3456"}},
			Fields: []form.Binding{
				{Name: "MILEAGE", Label: "MILEAGE", Value: "abc", Required: true},
				{Name: "ENTRYLOCATION", Label: "ENTRY", Value: "A-1", Options: []string{"A-1", "B-2"}},
			},
		},
	}, render.RenderOptions{Errors: map[string][]string{"MILEAGE": {"digits only"}}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := "CARNO  12가3456\n" +
		"\n" +
		"MILEAGE *       : abc\n" +
		"                 ! digits only\n" +
		"ENTRY           : A-1  [A-1|B-2]\n"
	if string(out) != want {
		t.Fatalf("unexpected output\nwant:\n%q\ngot:\n%q", want, out)
	}
}

func TestDisplayWidth(t *testing.T) {
	if got := displayWidth("12가3456"); got != 8 {
		t.Fatalf("expected hangul to count double, got %d", got)
	}
	if got := pad("가", 4); got != "가  " {
		t.Fatalf("unexpected padding %q", got)
	}
}
