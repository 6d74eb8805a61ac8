package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-intakeqc/pkg/form"
	"github.com/goliatone/go-intakeqc/pkg/model"
	"github.com/goliatone/go-intakeqc/pkg/render"
	"github.com/goliatone/go-intakeqc/pkg/submit"
	"github.com/goliatone/go-intakeqc/pkg/validation"
)

// Prompter drives terminal sessions: picking a record, editing a draft and
// printing submission notices.
type Prompter struct {
	driver   PromptDriver
	theme    Theme
	pageSize int
}

var _ submit.Notifier = (*Prompter)(nil)

// NewPrompter builds a prompter backed by survey unless WithPromptDriver is
// given.
func NewPrompter(options ...Option) *Prompter {
	cfg := newConfig(options)
	driver := cfg.driver
	if driver == nil {
		driver = newSurveyDriver(cfg.out)
	}
	return &Prompter{driver: driver, theme: cfg.theme, pageSize: cfg.pageSize}
}

func newConfig(options []Option) config {
	cfg := config{out: os.Stdout, theme: DefaultTheme(), pageSize: 10}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// PickRecord lets the user choose one of rows and returns its asset number.
// The selected row, when any, is the default.
func (p *Prompter) PickRecord(ctx context.Context, title string, rows []render.Row) (string, error) {
	if len(rows) == 0 {
		return "", ErrNoRecords
	}
	options := make([]string, len(rows))
	defaultIdx := 0
	for i, row := range rows {
		options[i] = fmt.Sprintf("%s  [%s]", strings.Join(row.Cells, "  "), row.AssetNo)
		if row.Selected {
			defaultIdx = i
		}
	}

	idx, err := p.driver.Select(ctx, SelectConfig{
		Message:      title,
		Options:      options,
		DefaultIndex: defaultIdx,
		PageSize:     p.pageSize,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(rows) {
		return "", fmt.Errorf("tui: selection %d out of range", idx)
	}
	return rows[idx].AssetNo, nil
}

// FillDraft prompts for every field of draft in form order. Values are
// written through Draft.Set, and a field is asked again until it validates.
func (p *Prompter) FillDraft(ctx context.Context, draft *form.Draft) error {
	if draft == nil {
		return errors.New("tui: draft is required")
	}
	definition := draft.Form()
	for _, binding := range draft.Bindings() {
		field, _ := definition.Field(binding.Name)
		var err error
		switch {
		case binding.Kind == model.FieldTypeFile:
			err = p.promptFiles(ctx, draft, binding)
		case len(binding.Options) > 0:
			err = p.promptChoice(ctx, draft, binding)
		default:
			err = p.promptText(ctx, draft, binding, field)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Prompter) promptText(ctx context.Context, draft *form.Draft, binding form.Binding, field model.Field) error {
	current := binding.Value
	for {
		value, err := p.driver.Input(ctx, InputConfig{
			Message: label(binding),
			Default: current,
			Help:    binding.Placeholder,
			Validator: func(v string) error {
				if issues := validation.Field(field, v); len(issues) > 0 {
					return errors.New(issues[0].Message)
				}
				return nil
			},
		})
		if err != nil {
			return err
		}
		value = strings.TrimSpace(value)
		errs := draft.Set(binding.Name, value)
		if len(errs) == 0 {
			return nil
		}
		current = value
		if err := p.driver.Info(ctx, p.theme.ErrorPrefix+" "+strings.Join(errs, " ")); err != nil {
			return err
		}
	}
}

func (p *Prompter) promptChoice(ctx context.Context, draft *form.Draft, binding form.Binding) error {
	defaultIdx := indexOf(binding.Options, binding.Value)
	if defaultIdx < 0 {
		defaultIdx = 0
	}
	idx, err := p.driver.Select(ctx, SelectConfig{
		Message:      label(binding),
		Options:      binding.Options,
		DefaultIndex: defaultIdx,
		Help:         binding.Description,
		PageSize:     p.pageSize,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(binding.Options) {
		return fmt.Errorf("tui: selection %d out of range for %s", idx, binding.Name)
	}
	if errs := draft.Set(binding.Name, binding.Options[idx]); len(errs) > 0 {
		return fmt.Errorf("tui: %s: %s", binding.Name, strings.Join(errs, " "))
	}
	return nil
}

func (p *Prompter) promptFiles(ctx context.Context, draft *form.Draft, binding form.Binding) error {
	for {
		raw, err := p.driver.Input(ctx, InputConfig{
			Message: label(binding) + " (파일 경로, 쉼표로 구분)",
			Help:    "비워두면 사진 없이 저장합니다.",
		})
		if err != nil {
			return err
		}

		var (
			files  []form.File
			failed error
		)
		for _, path := range strings.Split(raw, ",") {
			path = strings.TrimSpace(path)
			if path == "" {
				continue
			}
			file, err := form.FileFromPath(path)
			if err != nil {
				failed = err
				break
			}
			files = append(files, file)
		}
		if failed == nil {
			draft.SetFiles(files)
			return nil
		}
		if err := p.driver.Info(ctx, fmt.Sprintf("%s %v", p.theme.ErrorPrefix, failed)); err != nil {
			return err
		}
	}
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(ctx context.Context, message string) (bool, error) {
	return p.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: true})
}

// Token asks for an access token without echoing it.
func (p *Prompter) Token(ctx context.Context) (string, error) {
	token, err := p.driver.Password(ctx, InputConfig{
		Message: "액세스 토큰",
		Validator: func(v string) error {
			if strings.TrimSpace(v) == "" {
				return errors.New("토큰을 입력해주세요.")
			}
			return nil
		},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// Notify prints a submission notice.
func (p *Prompter) Notify(ctx context.Context, n submit.Notification) {
	prefix := p.theme.InfoPrefix
	switch n.Level {
	case submit.LevelSuccess:
		prefix = p.theme.SuccessPrefix
	case submit.LevelError:
		prefix = p.theme.ErrorPrefix
	}
	_ = p.driver.Info(ctx, strings.TrimSpace(prefix+" "+n.Message))
}

// Info prints msg.
func (p *Prompter) Info(ctx context.Context, msg string) error {
	return p.driver.Info(ctx, msg)
}

func label(b form.Binding) string {
	out := b.Label
	if out == "" {
		out = b.Name
	}
	if unit := b.Metadata["unit"]; unit != "" {
		out += " (" + unit + ")"
	}
	if b.Required {
		out += " *"
	}
	return out
}
