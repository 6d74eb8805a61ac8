package tui

import "io"

// Theme captures optional message prefixes the prompter applies when printing
// notices. Keep minimal to avoid coupling prompt logic to ANSI specifics.
type Theme struct {
	InfoPrefix    string
	SuccessPrefix string
	ErrorPrefix   string
}

// DefaultTheme returns the prefixes used when none are configured.
func DefaultTheme() Theme {
	return Theme{InfoPrefix: "·", SuccessPrefix: "✔", ErrorPrefix: "✘"}
}

// Option configures the prompter and text renderer.
type Option func(*config)

type config struct {
	driver   PromptDriver
	out      io.Writer
	theme    Theme
	pageSize int
}

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(cfg *config) {
		if driver != nil {
			cfg.driver = driver
		}
	}
}

// WithOutput sets where the default driver prints notices.
func WithOutput(w io.Writer) Option {
	return func(cfg *config) {
		if w != nil {
			cfg.out = w
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(cfg *config) {
		cfg.theme = theme
	}
}

// WithPageSize sets how many rows the record picker shows at once.
func WithPageSize(size int) Option {
	return func(cfg *config) {
		if size > 0 {
			cfg.pageSize = size
		}
	}
}
