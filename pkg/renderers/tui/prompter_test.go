package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intakeqc/pkg/form"
	"github.com/goliatone/go-intakeqc/pkg/qcform"
	"github.com/goliatone/go-intakeqc/pkg/record"
	"github.com/goliatone/go-intakeqc/pkg/render"
	"github.com/goliatone/go-intakeqc/pkg/submit"
)

type stubDriver struct {
	inputs       []string
	passwords    []string
	selectIdx    []int
	confirm      []bool
	infoMessages []string
	prompts      []string
	selects      []SelectConfig
	inputPos     int
	passPos      int
	selectPos    int
	confirmPos   int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	if cfg.Validator != nil {
		if err := cfg.Validator(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selects = append(s.selects, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func newDraft(t *testing.T, rec record.Record) *form.Draft {
	t.Helper()
	model, err := qcform.Build(qcform.Request{
		Resource: "CompQC",
		Endpoint: "CompQC",
		Record:   rec,
		Lookups:  record.Lookups{"HR58": {"A-1", "B-2"}},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return form.NewDraft(model, qcform.Defaults(model, rec))
}

func TestFillDraft_RepromptsUntilValid(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"abc", "31704", "2층", "2", "3", "front desk", ""},
		selectIdx: []int{1},
	}
	prompter := NewPrompter(WithPromptDriver(driver))
	draft := newDraft(t, record.Record{"ASSETNO": "A-100", "GUBUN": "신차"})

	if err := prompter.FillDraft(context.Background(), draft); err != nil {
		t.Fatalf("fill draft: %v", err)
	}

	want := map[string]string{
		"MILEAGE":        "31704",
		"ENTRYLOCATION":  "B-2",
		"DETAILLOCATION": "2층",
		"KEYQUANT":       "2",
		"KEYTOTAL":       "3",
		"KEYLOCATION":    "front desk",
	}
	if diff := cmp.Diff(want, draft.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if !draft.Valid() {
		t.Fatalf("expected draft to validate, errors: %#v", draft.Errors())
	}
	if len(driver.infoMessages) != 1 || !strings.Contains(driver.infoMessages[0], "주행 거리") {
		t.Fatalf("expected one mileage validation notice, got %#v", driver.infoMessages)
	}
	if driver.prompts[0] != "주행 거리 (km) *" {
		t.Fatalf("unexpected first prompt %q", driver.prompts[0])
	}
}

func TestFillDraft_BaseVariantSkipsKeyCounts(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"100", "", "", "locker", ""},
		selectIdx: []int{0},
	}
	prompter := NewPrompter(WithPromptDriver(driver))
	draft := newDraft(t, record.Record{"ASSETNO": "A-200", "GUBUN": "재렌트", "KEYLOCATION": "front desk"})

	if err := prompter.FillDraft(context.Background(), draft); err != nil {
		t.Fatalf("fill draft: %v", err)
	}
	if draft.Value("KEYLOCATION") != "locker" {
		t.Fatalf("expected key location to be re-asked, got %q", draft.Value("KEYLOCATION"))
	}
	if !draft.Valid() {
		t.Fatalf("expected draft to validate, errors: %#v", draft.Errors())
	}
	asked := 0
	for _, prompt := range driver.prompts {
		if strings.Contains(prompt, "키 개수") {
			t.Fatalf("base variant must not ask for key counts, prompts: %#v", driver.prompts)
		}
		if strings.HasPrefix(prompt, "키 보관 위치") {
			asked++
		}
	}
	if asked != 2 {
		t.Fatalf("expected key location to be asked twice, got %d", asked)
	}
}

func TestFillDraft_FilePaths(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "front.jpg")
	if err := os.WriteFile(photo, []byte("jpeg"), 0o600); err != nil {
		t.Fatalf("write photo: %v", err)
	}

	driver := &stubDriver{
		inputs:    []string{"1", "", "x", filepath.Join(dir, "missing.jpg"), photo + " , "},
		selectIdx: []int{0},
	}
	prompter := NewPrompter(WithPromptDriver(driver))
	draft := newDraft(t, record.Record{"ASSETNO": "A-200", "GUBUN": "재렌트"})

	if err := prompter.FillDraft(context.Background(), draft); err != nil {
		t.Fatalf("fill draft: %v", err)
	}
	files := draft.Files()
	if len(files) != 1 || files[0].Name != "front.jpg" {
		t.Fatalf("unexpected files %#v", files)
	}
	if len(driver.infoMessages) != 1 {
		t.Fatalf("expected one notice for the missing file, got %#v", driver.infoMessages)
	}
}

func TestPickRecordDefaultsToSelected(t *testing.T) {
	driver := &stubDriver{selectIdx: []int{0}}
	prompter := NewPrompter(WithPromptDriver(driver))

	rows := []render.Row{
		{AssetNo: "A-100", Cells: []string{"12가3456"}},
		{AssetNo: "A-200", Cells: []string{"34나7890"}, Selected: true},
	}
	got, err := prompter.PickRecord(context.Background(), "상품화 완료 QC", rows)
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if got != "A-100" {
		t.Fatalf("expected A-100, got %q", got)
	}
	if driver.selects[0].DefaultIndex != 1 {
		t.Fatalf("expected selected row to be the default, got %d", driver.selects[0].DefaultIndex)
	}
	if driver.selects[0].Options[1] != "34나7890  [A-200]" {
		t.Fatalf("unexpected option label %q", driver.selects[0].Options[1])
	}

	if _, err := prompter.PickRecord(context.Background(), "empty", nil); !errors.Is(err, ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
}

func TestTokenAndNotify(t *testing.T) {
	driver := &stubDriver{passwords: []string{"  abc.def.ghi  ", " "}}
	prompter := NewPrompter(WithPromptDriver(driver), WithTheme(Theme{SuccessPrefix: "OK", ErrorPrefix: "ERR"}))

	token, err := prompter.Token(context.Background())
	if err != nil || token != "abc.def.ghi" {
		t.Fatalf("unexpected token %q, %v", token, err)
	}
	if _, err := prompter.Token(context.Background()); err == nil {
		t.Fatalf("expected blank token to be rejected")
	}

	prompter.Notify(context.Background(), submit.Notification{Level: submit.LevelSuccess, Message: submit.MessageSuccess})
	prompter.Notify(context.Background(), submit.Notification{Level: submit.LevelError, Message: submit.MessageFailure})
	want := []string{"OK 완료되었습니다.", "ERR 요청에 실패하였습니다."}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("notices mismatch (-want +got):\n%s", diff)
	}
}
