package model

import "strings"

// Decorator adjusts a built form model, for example to attach configured help
// text.
type Decorator interface {
	Decorate(*FormModel) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*FormModel) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(form *FormModel) error {
	return fn(form)
}

// Decorate applies decorators in order and stops at the first error.
func Decorate(form *FormModel, decorators ...Decorator) error {
	if form == nil {
		return nil
	}
	for _, decorator := range decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(form); err != nil {
			return err
		}
	}
	return nil
}

// FieldHelp sets Description on the fields named in help. Blank entries and
// names the form does not show are ignored.
func FieldHelp(help map[string]string) Decorator {
	return DecoratorFunc(func(form *FormModel) error {
		for i := range form.Fields {
			text := strings.TrimSpace(help[form.Fields[i].Name])
			if text != "" {
				form.Fields[i].Description = text
			}
		}
		return nil
	})
}
