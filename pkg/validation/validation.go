// Package validation evaluates the rules attached to a model.FormModel against
// submitted string values.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/goliatone/go-intakeqc/pkg/model"
)

const (
	defaultRequiredMessage = "필수 입력 항목입니다."
	defaultPatternMessage  = "입력 형식이 올바르지 않습니다."
	defaultEnumMessage     = "선택할 수 없는 값입니다."
	defaultLengthMessage   = "입력 길이가 올바르지 않습니다."
)

// Issue is a single failed rule.
type Issue struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Result captures validation outcomes for a whole form.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Errors groups issue messages by field name.
func (r Result) Errors() map[string][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string, len(r.Issues))
	for _, issue := range r.Issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}

// Validate checks every non-file field of form against values. Missing keys
// are treated as empty strings.
func Validate(form model.FormModel, values map[string]string) Result {
	result := Result{Valid: true}
	for _, field := range form.Fields {
		if field.Type == model.FieldTypeFile {
			continue
		}
		issues := Field(field, values[field.Name])
		if len(issues) > 0 {
			result.Valid = false
			result.Issues = append(result.Issues, issues...)
		}
	}
	return result
}

// Field checks a single value. An empty value only fails the required rule;
// the remaining rules run once something was entered.
func Field(field model.Field, value string) []Issue {
	if strings.TrimSpace(value) == "" {
		if !field.Required {
			return nil
		}
		rule, _ := field.Rule(model.ValidationRuleRequired)
		return []Issue{issue(field, model.ValidationRuleRequired, rule.Message, defaultRequiredMessage)}
	}

	var issues []Issue
	for _, rule := range field.Validations {
		switch rule.Kind {
		case model.ValidationRulePattern:
			re, err := compile(rule.Params["pattern"])
			if err != nil || !re.MatchString(value) {
				issues = append(issues, issue(field, rule.Kind, rule.Message, defaultPatternMessage))
			}
		case model.ValidationRuleEnum:
			if len(field.Enum) > 0 && !contains(field.Enum, value) {
				issues = append(issues, issue(field, rule.Kind, rule.Message, defaultEnumMessage))
			}
		case model.ValidationRuleMinLength:
			if limit, ok := intParam(rule); ok && utf8.RuneCountInString(value) < limit {
				issues = append(issues, issue(field, rule.Kind, rule.Message, defaultLengthMessage))
			}
		case model.ValidationRuleMaxLength:
			if limit, ok := intParam(rule); ok && utf8.RuneCountInString(value) > limit {
				issues = append(issues, issue(field, rule.Kind, rule.Message, defaultLengthMessage))
			}
		}
	}
	return issues
}

func issue(field model.Field, kind, message, fallback string) Issue {
	if strings.TrimSpace(message) == "" {
		message = fallback
	}
	return Issue{Field: field.Name, Rule: kind, Message: message}
}

func contains(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}

func intParam(rule model.ValidationRule) (int, bool) {
	raw := strings.TrimSpace(rule.Params["value"])
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

var patterns sync.Map

func compile(expr string) (*regexp.Regexp, error) {
	if cached, ok := patterns.Load(expr); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("validation: compile pattern %q: %w", expr, err)
	}
	patterns.Store(expr, re)
	return re, nil
}
