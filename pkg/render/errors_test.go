package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intakeqc/pkg/form"
	"github.com/goliatone/go-intakeqc/pkg/render"
)

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyErrorsCopiesBindings(t *testing.T) {
	bindings := []form.Binding{
		{Name: "MILEAGE", Errors: []string{"숫자만 입력해주세요."}},
		{Name: "ENTRYLOCATION"},
	}

	got := render.ApplyErrors(bindings, map[string][]string{
		"MILEAGE":       {"숫자만 입력해주세요.", "서버 오류"},
		"ENTRYLOCATION": {" 필수 항목입니다. "},
		"UNKNOWN":       {"ignored"},
	})

	want := [][]string{
		{"숫자만 입력해주세요.", "서버 오류"},
		{"필수 항목입니다."},
	}
	for i, binding := range got {
		if diff := cmp.Diff(want[i], binding.Errors); diff != "" {
			t.Fatalf("binding %s errors mismatch (-want +got):\n%s", binding.Name, diff)
		}
	}
	if bindings[1].Errors != nil {
		t.Fatalf("expected input bindings to stay untouched")
	}
}
