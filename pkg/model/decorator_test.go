package model_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intakeqc/pkg/model"
)

func TestFieldHelp(t *testing.T) {
	form := model.FormModel{Fields: []model.Field{
		{Name: "MILEAGE"},
		{Name: "IMGLIST", Description: "kept"},
		{Name: "KEYLOCATION"},
	}}

	err := model.Decorate(&form, model.FieldHelp(map[string]string{
		"MILEAGE":     " 계기판 기준 ",
		"IMGLIST":     "  ",
		"UNKNOWN":     "ignored",
		"KEYLOCATION": "예) 키함 3번",
	}))
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}

	var got []string
	for _, field := range form.Fields {
		got = append(got, field.Description)
	}
	if diff := cmp.Diff([]string{"계기판 기준", "kept", "예) 키함 3번"}, got); diff != "" {
		t.Fatalf("descriptions mismatch (-want +got):\n%s", diff)
	}
}

func TestDecorateStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	form := model.FormModel{}

	err := model.Decorate(&form,
		model.DecoratorFunc(func(*model.FormModel) error { calls++; return boom }),
		nil,
		model.DecoratorFunc(func(*model.FormModel) error { calls++; return nil }),
	)
	if !errors.Is(err, boom) || calls != 1 {
		t.Fatalf("expected first error to stop decoration, got %v after %d calls", err, calls)
	}
}
