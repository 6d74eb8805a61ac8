package submit

import (
	"context"

	"github.com/goliatone/go-intakeqc/pkg/fetch"
)

// User-facing notification texts.
const (
	MessageSuccess = "완료되었습니다."
	MessageFailure = "요청에 실패하였습니다."
)

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient message shown after a submission.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier shows notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	if f != nil {
		f(ctx, n)
	}
}

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(ctx context.Context, route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, route string)

func (f NavigatorFunc) Navigate(ctx context.Context, route string) {
	if f != nil {
		f(ctx, route)
	}
}

// Revalidator reloads the list a submission changed. *fetch.Fetcher
// satisfies it.
type Revalidator interface {
	Revalidate(ctx context.Context) fetch.State
}

// Hooks are the per-call side effects of Submit.
type Hooks struct {
	Notifier  Notifier
	Navigator Navigator
}

func (h Hooks) notify(ctx context.Context, level Level, message string) {
	if h.Notifier != nil {
		h.Notifier.Notify(ctx, Notification{Level: level, Message: message})
	}
}

func (h Hooks) navigate(ctx context.Context, route string) {
	if h.Navigator != nil && route != "" {
		h.Navigator.Navigate(ctx, route)
	}
}
