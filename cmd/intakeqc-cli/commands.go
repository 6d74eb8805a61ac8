package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goliatone/go-intakeqc"
	"github.com/goliatone/go-intakeqc/internal/config"
	"github.com/goliatone/go-intakeqc/pkg/credentials"
	"github.com/goliatone/go-intakeqc/pkg/render"
	jsonrenderer "github.com/goliatone/go-intakeqc/pkg/renderers/json"
	"github.com/goliatone/go-intakeqc/pkg/renderers/tui"
	"github.com/goliatone/go-intakeqc/pkg/submit"
)

var errUsage = errors.New("usage")

var now = time.Now

type cli struct {
	stdout io.Writer
	stderr io.Writer

	// Overridable in tests.
	keyring interface {
		credentials.Provider
		Store(token string) error
		Clear() error
	}
	prompter *tui.Prompter
}

type globals struct {
	configPath string
	apiURL     string
	logLevel   string
}

func (c *cli) run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("intakeqc-cli", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() { usage(c.stderr) }

	var g globals
	fs.StringVar(&g.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&g.apiURL, "api", "", "intake API base URL")
	fs.StringVar(&g.logLevel, "log-level", "", "log level")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		usage(c.stderr)
		return errUsage
	}

	if c.keyring == nil {
		c.keyring = credentials.NewKeyring(credentials.DefaultService, credentials.DefaultKey)
	}
	if c.prompter == nil {
		c.prompter = tui.NewPrompter(tui.WithOutput(c.stdout))
	}

	command, rest := fs.Arg(0), fs.Args()[1:]
	switch command {
	case "login":
		return c.login(ctx, rest)
	case "logout":
		return c.logout()
	case "list":
		return c.list(ctx, g, rest)
	case "inspect":
		return c.inspect(ctx, g, rest)
	default:
		fmt.Fprintf(c.stderr, "unknown command %q\n", command)
		usage(c.stderr)
		return errUsage
	}
}

func (c *cli) app(g globals) (*intakeqc.App, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.apiURL != "" {
		cfg.API.BaseURL = g.apiURL
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	return intakeqc.New(cfg,
		intakeqc.WithLogger(cfg.Log.Logger(c.stderr)),
		intakeqc.WithCredentials(c.keyring),
	)
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	token := fs.String("token", "", "access token (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	value := strings.TrimSpace(*token)
	if value == "" {
		prompted, err := c.prompter.Token(ctx)
		if err != nil {
			return err
		}
		value = prompted
	}
	if err := credentials.CheckExpiry(value, now()); err != nil {
		return err
	}
	if err := c.keyring.Store(value); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "토큰이 저장되었습니다.")
	return nil
}

func (c *cli) logout() error {
	if err := c.keyring.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "토큰이 삭제되었습니다.")
	return nil
}

func (c *cli) list(ctx context.Context, g globals, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	resourceName := fs.String("resource", "", "resource name or route")
	query := fs.String("q", "", "plate number filter")
	format := fs.String("format", tui.Name, "output format: tui or json")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	app, err := c.app(g)
	if err != nil {
		return err
	}
	res, err := app.Lookup(*resourceName)
	if err != nil {
		return err
	}

	state := res.Load(ctx)
	page := res.ListPage(state, *query, "")
	if err := c.print(ctx, *format, page, render.RenderOptions{}); err != nil {
		return err
	}
	return state.Err
}

func (c *cli) inspect(ctx context.Context, g globals, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	resourceName := fs.String("resource", "", "resource name or route")
	assetNo := fs.String("asset", "", "asset number (picked interactively when empty)")
	query := fs.String("q", "", "plate number filter for the picker")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	app, err := c.app(g)
	if err != nil {
		return err
	}
	res, err := app.Lookup(*resourceName)
	if err != nil {
		return err
	}

	asset := strings.TrimSpace(*assetNo)
	if asset == "" {
		state := res.Load(ctx)
		if state.Err != nil {
			return fmt.Errorf("%s: %w", intakeqc.MessageFetchFailed, state.Err)
		}
		page := res.ListPage(state, *query, "")
		asset, err = c.prompter.PickRecord(ctx, res.Title(), page.List.Rows)
		if err != nil {
			return err
		}
	}

	detail, err := res.Open(ctx, asset)
	if err != nil {
		return err
	}
	if err := c.print(ctx, tui.Name, detail.Page(), render.RenderOptions{}); err != nil {
		return err
	}
	if err := c.prompter.FillDraft(ctx, detail.Draft); err != nil {
		return err
	}

	ok, err := c.prompter.Confirm(ctx, "저장하시겠습니까?")
	if err != nil || !ok {
		return err
	}
	return detail.Submit(ctx, nil, submit.Hooks{Notifier: c.prompter})
}

func (c *cli) print(ctx context.Context, format string, page render.Page, options render.RenderOptions) error {
	registry := render.NewRegistry()
	registry.MustRegister(tui.New())
	registry.MustRegister(jsonrenderer.New(jsonrenderer.WithIndent("  ")))

	renderer, err := registry.Resolve(format, tui.Name)
	if err != nil {
		return err
	}
	out, err := renderer.Render(ctx, page, options)
	if err != nil {
		return err
	}
	_, err = c.stdout.Write(out)
	return err
}
